package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/zkwire/cmd/decode"
	"github.com/ValentinKolb/zkwire/cmd/encode"
	"github.com/ValentinKolb/zkwire/cmd/util"
	"github.com/ValentinKolb/zkwire/cmd/zk"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "zkwire",
		Short: "ZooKeeper wire protocol client",
		Long: fmt.Sprintf(`zkwire (v%s)

A client for the ZooKeeper wire protocol written in Go. It encodes requests
into the jute binary format, writes them through an ordered packet queue and
can be used offline to inspect frames.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of zkwire",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("zkwire v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(zk.ZkCommands)
	RootCmd.AddCommand(encode.EncodeCommands)
	RootCmd.AddCommand(decode.DecodeCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (tcp, unix)"))
	key = "log-level"
	RootCmd.PersistentFlags().String(key, "warn", util.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
