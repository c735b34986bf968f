package util

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/ValentinKolb/zkwire/lib/jute"
	"github.com/ValentinKolb/zkwire/lib/proto"
	"github.com/ValentinKolb/zkwire/rpc/common"
	"github.com/ValentinKolb/zkwire/rpc/transport"
	"github.com/ValentinKolb/zkwire/rpc/transport/tcp"
	"github.com/ValentinKolb/zkwire/rpc/transport/unix"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// --------------------------------------------------------------------------
// Client configuration
// --------------------------------------------------------------------------

// SetupClientFlags adds the connection flags to a command
func SetupClientFlags(cmd *cobra.Command) {
	key := "timeout"
	cmd.PersistentFlags().Int(key, common.DefaultTimeoutSecond, WrapString("The timeout in seconds for connecting and for every request"))

	key = "session-timeout"
	cmd.PersistentFlags().Uint32(key, common.DefaultSessionTimeoutMs, WrapString("The session timeout in milliseconds requested in the handshake"))

	key = "read-only"
	cmd.PersistentFlags().Bool(key, false, WrapString("Allow the session to be served by a read-only server"))

	key = "transport-endpoints"
	cmd.PersistentFlags().String(key, "localhost:2181", WrapString("The address of the server. Multiple endpoints can be specified as a comma-separated list, they are tried in order"))

	key = "transport-retries"
	cmd.PersistentFlags().Int(key, 3, WrapString("How many times to try all endpoints before giving up"))

	key = "transport-write-buffer"
	cmd.PersistentFlags().Int(key, 0, WrapString("The size of the socket write buffer (in KB, 0 keeps the OS default)"))

	key = "transport-read-buffer"
	cmd.PersistentFlags().Int(key, 0, WrapString("The size of the socket read buffer (in KB, 0 keeps the OS default)"))

	key = "transport-tcp-nodelay"
	cmd.PersistentFlags().Bool(key, true, WrapString("Whether to enable TCP_NODELAY (only for tcp)"))

	key = "transport-tcp-keepalive"
	cmd.PersistentFlags().Int(key, 0, WrapString("The keepalive interval (in seconds, only for tcp)"))

	key = "transport-tcp-linger"
	cmd.PersistentFlags().Int(key, -1, WrapString("The linger time (in seconds, only for tcp, negative keeps the OS default)"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("zkwire")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() *common.ClientConfig {
	conf := &common.ClientConfig{
		TimeoutSecond:    viper.GetInt("timeout"),
		SessionTimeoutMs: viper.GetUint32("session-timeout"),
		ReadOnly:         viper.GetBool("read-only"),
		LogLevel:         viper.GetString("log-level"),
		Transport: common.ClientTransportConfig{
			RetryCount: viper.GetInt("transport-retries"),
			Endpoints:  strings.Split(viper.GetString("transport-endpoints"), ","),
			SocketConf: common.SocketConf{
				WriteBufferSize: viper.GetInt("transport-write-buffer") * 1024,
				ReadBufferSize:  viper.GetInt("transport-read-buffer") * 1024,
			},
			TCPConf: common.TCPConf{
				TCPKeepAliveSec: viper.GetInt("transport-tcp-keepalive"),
				TCPLingerSec:    viper.GetInt("transport-tcp-linger"),
				TCPNoDelay:      viper.GetBool("transport-tcp-nodelay"),
			},
		},
	}

	return conf
}

// GetTransport creates transport based on configuration
func GetTransport() (transport.IPacketTransport, error) {
	switch viper.GetString("transport") {
	case "tcp":
		return tcp.NewTCPClientTransport(), nil
	case "unix":
		return unix.NewUnixClientTransport(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// --------------------------------------------------------------------------
// Argument parsing
// --------------------------------------------------------------------------

// ParseACL parses scheme:id:perms, e.g. world:anyone:cdrwa, ip:10.0.0.1:r,
// digest:user:hash:rwa or super:hash:cdrwa
func ParseACL(s string) (proto.ACL, error) {
	first := strings.Index(s, ":")
	last := strings.LastIndex(s, ":")
	if first < 0 || first == last {
		return proto.ACL{}, fmt.Errorf("invalid acl %q, expected scheme:id:perms", s)
	}
	schemeName, id, permStr := s[:first], s[first+1:last], s[last+1:]

	perms, err := proto.ParsePerms(permStr)
	if err != nil {
		return proto.ACL{}, fmt.Errorf("invalid acl %q: %w", s, err)
	}

	var scheme proto.Scheme
	switch schemeName {
	case proto.SchemeWorld:
		scheme = proto.World{}
	case proto.SchemeIP:
		addr, err := netip.ParseAddr(id)
		if err != nil {
			return proto.ACL{}, fmt.Errorf("invalid acl %q: %w", s, err)
		}
		scheme = proto.IP{Addr: addr}
	case proto.SchemeDigest:
		if !strings.Contains(id, ":") {
			return proto.ACL{}, fmt.Errorf("invalid acl %q, digest id must be user:hash", s)
		}
		scheme = proto.Digest{Credential: id}
	case proto.SchemeSuper:
		scheme = proto.SuperDigest(id)
	default:
		return proto.ACL{}, fmt.Errorf("invalid acl %q, unknown scheme %q", s, schemeName)
	}

	return proto.NewACL(perms, scheme), nil
}

// ParseACLs parses a comma-separated list of ACLs, an empty string yields nil
func ParseACLs(s string) ([]proto.ACL, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var acl []proto.ACL
	for _, part := range strings.Split(s, ",") {
		a, err := ParseACL(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		acl = append(acl, a)
	}
	return acl, nil
}

// GetData returns the --data flag as optional bytes. An unset flag is absent
// data, --data "" is present but empty.
func GetData(cmd *cobra.Command) jute.OptBytes {
	flag := cmd.Flags().Lookup("data")
	if flag == nil || !flag.Changed {
		return jute.NoBytes()
	}
	return jute.SomeBytes([]byte(flag.Value.String()))
}
