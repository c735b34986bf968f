package encode

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ValentinKolb/zkwire/cmd/util"
	"github.com/ValentinKolb/zkwire/lib/proto"
	"github.com/spf13/cobra"
)

var (
	connectCmd = &cobra.Command{
		Use:   "connect",
		Short: "Encodes the connect handshake (sent without header)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout, _ := cmd.Flags().GetUint32("session-timeout")
			readOnly, _ := cmd.Flags().GetBool("read-only")
			sessionID, _ := cmd.Flags().GetInt64("session-id")
			lastZxid, _ := cmd.Flags().GetInt64("last-zxid")
			passwdHex, _ := cmd.Flags().GetString("passwd")

			req := proto.NewConnectRequest(timeout)
			req.ReadOnly = readOnly
			if sessionID != 0 || passwdHex != "" {
				passwd, err := hex.DecodeString(passwdHex)
				if err != nil {
					return fmt.Errorf("passwd must be hex: %w", err)
				}
				req = proto.NewReconnectRequest(timeout, sessionID, passwd, lastZxid, readOnly)
			}

			printFrame(cmd, proto.NewHandshake(req))
			return nil
		},
	}
	createCmd = &cobra.Command{
		Use:   "create [path]",
		Short: "Encodes a create request",
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

			op := proto.OpCreate
			if mode == proto.CreateContainer {
				op = proto.OpCreateContainer
			}
			body := proto.NewCreateRequestFull(args[0], util.GetData(cmd), acl, mode)
			printFrame(cmd, proto.NewRequest(xid(cmd), op, body))
			return nil
		},
	}
	deleteCmd = &cobra.Command{
		Use:   "delete [path]",
		Short: "Encodes a delete request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, _ := cmd.Flags().GetInt32("version")
			printFrame(cmd, proto.NewRequest(xid(cmd), proto.OpDelete, proto.NewDeleteRequest(args[0], version)))
			return nil
		},
	}
	setCmd = &cobra.Command{
		Use:   "set [path] [data]",
		Short: "Encodes a set-data request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, _ := cmd.Flags().GetInt32("version")
			body := proto.NewSetDataRequest(args[0], []byte(args[1]), version)
			printFrame(cmd, proto.NewRequest(xid(cmd), proto.OpSetData, body))
			return nil
		},
	}
	existsCmd   = newPathAndWatchCmd("exists", proto.OpExists)
	getCmd      = newPathAndWatchCmd("get", proto.OpGetData)
	childrenCmd = newPathAndWatchCmd("children", proto.OpGetChildren)
	syncCmd     = newPathCmd("sync", proto.OpSync)
	getACLCmd   = newPathCmd("getacl", proto.OpGetACL)
	setACLCmd   = &cobra.Command{
		Use:   "setacl [path] [acl]",
		Short: "Encodes a set-acl request (acl as scheme:id:perms,...)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, _ := cmd.Flags().GetInt32("version")
			acl, err := util.ParseACLs(args[1])
			if err != nil {
				return err
			}
			printFrame(cmd, proto.NewRequest(xid(cmd), proto.OpSetACL, proto.NewSetACLRequest(args[0], acl, version)))
			return nil
		},
	}
	checkCmd = &cobra.Command{
		Use:   "check [path]",
		Short: "Encodes a version check (used inside multi requests)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, _ := cmd.Flags().GetInt32("version")
			printFrame(cmd, proto.NewRequest(xid(cmd), proto.OpCheck, proto.NewCheckVersionRequest(args[0], version)))
			return nil
		},
	}
	authCmd = &cobra.Command{
		Use:   "auth [scheme] [credentials]",
		Short: "Encodes an auth request (always uses the reserved auth xid)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := proto.NewAuthRequest(args[0], []byte(args[1]))
			printFrame(cmd, proto.NewRequest(proto.XidAuth, proto.OpSetAuth, body))
			return nil
		},
	}
	setWatchesCmd = &cobra.Command{
		Use:   "setwatches [relative-zxid]",
		Short: "Encodes a set-watches request (always uses the reserved xid)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var zxid int64
			if _, err := fmt.Sscan(args[0], &zxid); err != nil {
				return fmt.Errorf("relative-zxid must be a number: %w", err)
			}
			data, _ := cmd.Flags().GetString("data-watches")
			exist, _ := cmd.Flags().GetString("exist-watches")
			child, _ := cmd.Flags().GetString("child-watches")

			body := proto.NewSetWatchesRequest(zxid, splitPaths(data), splitPaths(exist), splitPaths(child))
			printFrame(cmd, proto.NewRequest(proto.XidSetWatches, proto.OpSetWatches, body))
			return nil
		},
	}
	pingCmd = &cobra.Command{
		Use:   "ping",
		Short: "Encodes a ping (header only, reserved xid)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printFrame(cmd, proto.NewHeaderOnlyRequest(proto.XidPing, proto.OpPing))
			return nil
		},
	}
	closeCmd = &cobra.Command{
		Use:   "close",
		Short: "Encodes a close-session request (header only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printFrame(cmd, proto.NewHeaderOnlyRequest(xid(cmd), proto.OpClose))
			return nil
		},
	}
)

func init() {
	connectCmd.Flags().Uint32("session-timeout", 10000, util.WrapString("The requested session timeout in milliseconds"))
	connectCmd.Flags().Bool("read-only", false, util.WrapString("Allow a read-only server"))
	connectCmd.Flags().Int64("session-id", 0, util.WrapString("Resume this session instead of creating a new one"))
	connectCmd.Flags().Int64("last-zxid", 0, util.WrapString("The last zxid seen by the resumed session"))
	connectCmd.Flags().String("passwd", "", util.WrapString("The password of the resumed session (hex)"))

	createCmd.Flags().String("data", "", util.WrapString("The node data. Without this flag the data is absent, which differs from --data \"\""))
	createCmd.Flags().String("acl", "world:anyone:cdrwa", util.WrapString("Comma separated ACLs as scheme:id:perms"))
	createCmd.Flags().String("mode", "persistent", util.WrapString("persistent, ephemeral, persistent-sequential, ephemeral-sequential or container"))

	for _, c := range []*cobra.Command{deleteCmd, setCmd, setACLCmd, checkCmd} {
		c.Flags().Int32("version", proto.AnyVersion, util.WrapString("The expected version, -1 matches any version"))
	}

	setWatchesCmd.Flags().String("data-watches", "", util.WrapString("Comma separated paths with data watches"))
	setWatchesCmd.Flags().String("exist-watches", "", util.WrapString("Comma separated paths with exist watches"))
	setWatchesCmd.Flags().String("child-watches", "", util.WrapString("Comma separated paths with child watches"))
}

func newPathAndWatchCmd(name string, op proto.OpCode) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name + " [path]",
		Short: fmt.Sprintf("Encodes a %s request", op),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			watch, _ := cmd.Flags().GetBool("watch")
			printFrame(cmd, proto.NewRequest(xid(cmd), op, proto.NewPathAndWatchRequest(args[0], watch)))
			return nil
		},
	}
	cmd.Flags().Bool("watch", false, util.WrapString("Leave a watch on the node"))
	return cmd
}

func newPathCmd(name string, op proto.OpCode) *cobra.Command {
	return &cobra.Command{
		Use:   name + " [path]",
		Short: fmt.Sprintf("Encodes a %s request", op),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printFrame(cmd, proto.NewRequest(xid(cmd), op, proto.NewPathRequest(args[0])))
			return nil
		},
	}
}

// splitPaths splits a comma separated list, an empty string yields an empty list
func splitPaths(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
