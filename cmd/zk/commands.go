package zk

import (
	"fmt"
	"time"

	"github.com/ValentinKolb/zkwire/cmd/util"
	"github.com/ValentinKolb/zkwire/lib/proto"
	"github.com/spf13/cobra"
)

var (
	createCmd = &cobra.Command{
		Use:   "create [path]",
		Short: "Creates a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			aclStr, _ := cmd.Flags().GetString("acl")
			modeStr, _ := cmd.Flags().GetString("mode")

			acl, err := util.ParseACLs(aclStr)
			if err != nil {
				return err
			}
			mode, ok := proto.ParseCreateMode(modeStr)
			if !ok {
				return fmt.Errorf("invalid create mode %q", modeStr)
			}

			path, err := zkClient.Create(args[0], util.GetData(cmd), acl, mode)
			if err != nil {
				return err
			}
			fmt.Printf("created %s\n", path)
			return nil
		},
	}
	deleteCmd = &cobra.Command{
		Use:   "delete [path]",
		Short: "Deletes a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, _ := cmd.Flags().GetInt32("version")
			if err := zkClient.Delete(args[0], version); err != nil {
				return err
			}
			fmt.Println("deleted successfully")
			return nil
		},
	}
	setCmd = &cobra.Command{
		Use:   "set [path] [data]",
		Short: "Sets the data of a node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, _ := cmd.Flags().GetInt32("version")
			stat, err := zkClient.SetData(args[0], []byte(args[1]), version)
			if err != nil {
				return err
			}
			fmt.Printf("set successfully, version=%d\n", stat.Version)
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [path]",
		Short: "Reads the data of a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, stat, err := zkClient.GetData(args[0], false)
			if err != nil {
				return err
			}
			fmt.Printf("path=%s, data=%s, version=%d, mzxid=0x%x\n", args[0], data, stat.Version, stat.Mzxid)
			return nil
		},
	}
	existsCmd = &cobra.Command{
		Use:   "exists [path]",
		Short: "Checks if a node exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, stat, err := zkClient.Exists(args[0], false)
			if err != nil {
				return err
			}
			fmt.Printf("path=%s, found=%t, children=%d\n", args[0], found, stat.NumChildren)
			return nil
		},
	}
	lsCmd = &cobra.Command{
		Use:   "ls [path]",
		Short: "Lists the children of a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			children, err := zkClient.GetChildren(args[0], false)
			if err != nil {
				return err
			}
			for _, child := range children {
				fmt.Println(child)
			}
			return nil
		},
	}
	syncCmd = &cobra.Command{
		Use:   "sync [path]",
		Short: "Waits until the server caught up with the leader",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := zkClient.Sync(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("synced %s\n", path)
			return nil
		},
	}
	getACLCmd = &cobra.Command{
		Use:   "getacl [path]",
		Short: "Reads the ACL of a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			acl, stat, err := zkClient.GetACL(args[0])
			if err != nil {
				return err
			}
			for _, a := range acl {
				fmt.Println(a)
			}
			fmt.Printf("aversion=%d\n", stat.Aversion)
			return nil
		},
	}
	setACLCmd = &cobra.Command{
		Use:   "setacl [path] [acl]",
		Short: "Replaces the ACL of a node (acl as scheme:id:perms,...)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, _ := cmd.Flags().GetInt32("version")
			acl, err := util.ParseACLs(args[1])
			if err != nil {
				return err
			}
			stat, err := zkClient.SetACL(args[0], acl, version)
			if err != nil {
				return err
			}
			fmt.Printf("setacl successfully, aversion=%d\n", stat.Aversion)
			return nil
		},
	}
	watchCmd = &cobra.Command{
		Use:   "watch [path]",
		Short: "Waits for the next change of a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wait, _ := cmd.Flags().GetDuration("wait")
			if _, _, err := zkClient.Exists(args[0], true); err != nil {
				return err
			}

			select {
			case ev, ok := <-zkClient.Events():
				if !ok {
					return fmt.Errorf("connection closed")
				}
				fmt.Printf("event=%s, path=%s\n", ev.Type, ev.Path)
			case <-time.After(wait):
				fmt.Println("no change")
			}
			return nil
		},
	}
	pingCmd = &cobra.Command{
		Use:   "ping",
		Short: "Measures the round trip time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rtt, err := zkClient.Ping()
			if err != nil {
				return err
			}
			fmt.Printf("pong in %s\n", rtt)
			return nil
		},
	}
)

func init() {
	createCmd.Flags().String("data", "", util.WrapString("The node data. Without this flag the data is absent, which differs from --data \"\""))
	createCmd.Flags().String("acl", "world:anyone:cdrwa", util.WrapString("Comma separated ACLs as scheme:id:perms"))
	createCmd.Flags().String("mode", "persistent", util.WrapString("persistent, ephemeral, persistent-sequential, ephemeral-sequential or container"))

	for _, c := range []*cobra.Command{deleteCmd, setCmd, setACLCmd} {
		c.Flags().Int32("version", proto.AnyVersion, util.WrapString("The expected version, -1 matches any version"))
	}

	watchCmd.Flags().Duration("wait", time.Minute, util.WrapString("How long to wait for a change"))
}
