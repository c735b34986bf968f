package encode

import (
	"encoding/hex"
	"fmt"

	"github.com/ValentinKolb/zkwire/cmd/util"
	"github.com/ValentinKolb/zkwire/lib/proto"
	"github.com/spf13/cobra"
)

var (
	// EncodeCommands represents the encode command group
	EncodeCommands = &cobra.Command{
		Use:   "encode",
		Short: "Encode a request frame without connecting",
		Long: `Encode a request exactly as it is written to the server and print the
frame (length, header and payload) as hex. No connection is made.`,
	}
)

func init() {
	EncodeCommands.PersistentFlags().Int32("xid", 1, util.WrapString("The transaction id written to the request header"))

	EncodeCommands.AddCommand(connectCmd)
	EncodeCommands.AddCommand(createCmd)
	EncodeCommands.AddCommand(deleteCmd)
	EncodeCommands.AddCommand(setCmd)
	EncodeCommands.AddCommand(existsCmd)
	EncodeCommands.AddCommand(getCmd)
	EncodeCommands.AddCommand(childrenCmd)
	EncodeCommands.AddCommand(syncCmd)
	EncodeCommands.AddCommand(getACLCmd)
	EncodeCommands.AddCommand(setACLCmd)
	EncodeCommands.AddCommand(checkCmd)
	EncodeCommands.AddCommand(authCmd)
	EncodeCommands.AddCommand(setWatchesCmd)
	EncodeCommands.AddCommand(pingCmd)
	EncodeCommands.AddCommand(closeCmd)
}

// printFrame prints the complete frame of the request as hex
func printFrame(cmd *cobra.Command, req *proto.Request) {
	fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(req.AppendFrame(nil)))
}

// xid returns the --xid flag
func xid(cmd *cobra.Command) int32 {
	v, _ := cmd.Flags().GetInt32("xid")
	return v
}
