package tcp

import (
	"net"
	"time"

	"github.com/ValentinKolb/zkwire/rpc/common"
	"github.com/ValentinKolb/zkwire/rpc/transport"
	"github.com/ValentinKolb/zkwire/rpc/transport/base"
)

// clientConnector implements the IClientConnector interface for TCP sockets
type clientConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "tcp"
}

func (c *clientConnector) Connect(endpoint string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("tcp", endpoint, timeout)
}

// UpgradeConnection applies the TCPConf and SocketConf options to a TCP connection
func (c *clientConnector) UpgradeConnection(conn net.Conn, config common.ClientConfig) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil // Not a TCP connection, nothing to upgrade
	}

	// Disable Nagle's algorithm if configured
	if err := tcpConn.SetNoDelay(config.Transport.TCPConf.TCPNoDelay); err != nil {
		return err
	}

	if size := config.Transport.SocketConf.WriteBufferSize; size > 0 {
		if err := tcpConn.SetWriteBuffer(size); err != nil {
			return err
		}
	}

	if size := config.Transport.SocketConf.ReadBufferSize; size > 0 {
		if err := tcpConn.SetReadBuffer(size); err != nil {
			return err
		}
	}

	if sec := config.Transport.TCPConf.TCPKeepAliveSec; sec > 0 {
		if err := tcpConn.SetKeepAlive(true); err != nil {
			return err
		}
		if err := tcpConn.SetKeepAlivePeriod(time.Duration(sec) * time.Second); err != nil {
			return err
		}
	}

	// a negative value keeps the OS default
	if sec := config.Transport.TCPConf.TCPLingerSec; sec >= 0 {
		if err := tcpConn.SetLinger(sec); err != nil {
			return err
		}
	}

	return nil
}

// --------------------------------------------------------------------------
// Client Transport Factory Method
// --------------------------------------------------------------------------

// NewTCPClientTransport creates a new TCP client transport
func NewTCPClientTransport() transport.IPacketTransport {
	return base.NewBaseClientTransport(&clientConnector{})
}
