package decode

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/ValentinKolb/zkwire/cmd/util"
	"github.com/ValentinKolb/zkwire/lib/proto"
	"github.com/spf13/cobra"
)

var (
	// DecodeCmd parses a captured request frame
	DecodeCmd = &cobra.Command{
		Use:   "decode [hex]",
		Short: "Decode a request frame",
		Long: `Decode a request frame as printed by "zkwire encode" or captured from
the network. The frame must start with the 4 byte length. Whitespace in the
hex string is ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handshake, _ := cmd.Flags().GetBool("handshake")
			return decodeFrame(cmd.OutOrStdout(), args[0], handshake)
		},
	}
)

func init() {
	DecodeCmd.Flags().Bool("handshake", false, util.WrapString("Decode the frame as connect request (the first frame of a connection has no header)"))
}

// decodeFrame checks the length prefix and prints header and payload
func decodeFrame(out io.Writer, hexStr string, handshake bool) error {
	raw, err := hex.DecodeString(strings.Join(strings.Fields(hexStr), ""))
	if err != nil {
		return fmt.Errorf("invalid hex: %w", err)
	}
	if len(raw) < 4 {
		return fmt.Errorf("frame too short: %d bytes", len(raw))
	}

	length := int(binary.BigEndian.Uint32(raw[:4]))
	if length != len(raw)-4 {
		return fmt.Errorf("length prefix is %d but %d bytes follow", length, len(raw)-4)
	}

	header, body, err := proto.DecodeFrame(raw[4:], handshake)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "length:  %d\n", length)
	if header != nil {
		fmt.Fprintf(out, "xid:     %d\n", header.Xid)
		fmt.Fprintf(out, "op:      %s (%d)\n", header.OpCode, int32(header.OpCode))
	} else {
		fmt.Fprintln(out, "op:      connect (handshake)")
	}

	switch b := body.(type) {
	case nil:
		if header != nil && length > 8 {
			fmt.Fprintf(out, "payload: %d bytes (unknown layout)\n", length-8)
		}
	case *proto.CreateRequest:
		fmt.Fprintf(out, "path:    %s\ndata:    %s\nacl:     %v\nmode:    %s\n", b.Path, b.Data, b.ACL, b.Flags)
	default:
		fmt.Fprintf(out, "payload: %+v\n", b)
	}
	return nil
}
