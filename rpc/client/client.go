package client

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/zkwire/lib/jute"
	"github.com/ValentinKolb/zkwire/lib/proto"
	"github.com/ValentinKolb/zkwire/rpc/common"
	"github.com/ValentinKolb/zkwire/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("client")
)

// ErrTimeout is returned if no reply arrives within the configured timeout
var ErrTimeout = errors.New("request timed out")

// eventBuffer is the number of watch events kept until dropped
const eventBuffer = 64

// Session describes the session negotiated in the handshake
type Session struct {
	ID        int64
	Passwd    []byte
	TimeoutMs int32
	ReadOnly  bool
}

// Client sends requests through a packet transport. It is safe for
// concurrent use.
type Client struct {
	config    common.ClientConfig
	transport transport.IPacketTransport
	session   Session

	nextXid  atomic.Int32
	lastZxid atomic.Int64

	// pings and auth share fixed xids, only one of each may be in flight
	pingMu sync.Mutex
	authMu sync.Mutex

	events     chan proto.WatcherEvent
	eventsDone chan struct{}
	closeOnce  sync.Once
}

// NewClient connects the transport and performs the session handshake
func NewClient(config common.ClientConfig, transport transport.IPacketTransport) (*Client, error) {
	// Connect the transport
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	c := &Client{
		config:     config,
		transport:  transport,
		events:     make(chan proto.WatcherEvent, eventBuffer),
		eventsDone: make(chan struct{}),
	}

	if err := c.handshake(); err != nil {
		transport.Close()
		return nil, err
	}

	go c.dispatchUnsolicited()

	Logger.Infof("Session 0x%x established (timeout %d ms, read-only %t)",
		c.session.ID, c.session.TimeoutMs, c.session.ReadOnly)
	return c, nil
}

// Session returns the negotiated session
func (c *Client) Session() Session {
	return c.session
}

// LastZxid returns the highest zxid seen in any reply
func (c *Client) LastZxid() int64 {
	return c.lastZxid.Load()
}

// Events returns fired watches. The channel is closed after Close.
func (c *Client) Events() <-chan proto.WatcherEvent {
	return c.events
}

// Close ends the session and shuts the transport down. Requests sent before
// Close are still written.
func (c *Client) Close() (err error) {
	c.closeOnce.Do(func() {
		if _, cerr := c.invoke(c.xid(), proto.OpClose, nil); cerr != nil {
			Logger.Warningf("Failed to close session 0x%x: %v", c.session.ID, cerr)
		}
		err = c.transport.Close()
		<-c.eventsDone
	})
	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// xid returns the next transaction id. Ids stay positive, the negative range
// is reserved for pings, auth and watch events.
func (c *Client) xid() int32 {
	for {
		xid := c.nextXid.Add(1)
		if xid > 0 {
			return xid
		}
		c.nextXid.CompareAndSwap(xid, 0)
	}
}

// handshake sends the connect request and stores the negotiated session
func (c *Client) handshake() error {
	req := proto.NewConnectRequest(c.config.SessionTimeoutMs)
	req.ReadOnly = c.config.ReadOnly

	respCh, err := c.transport.Send(proto.NewHandshake(req))
	if err != nil {
		return fmt.Errorf("failed to send handshake: %w", err)
	}

	reply, err := c.wait(respCh)
	if err != nil {
		return fmt.Errorf("handshake failed: %w", err)
	}

	var resp proto.ConnectResponse
	if err := jute.Unmarshal(reply.Body, &resp); err != nil {
		return fmt.Errorf("invalid connect response: %w", err)
	}
	if resp.TimeOut <= 0 {
		return fmt.Errorf("handshake failed: %w", proto.ErrSessionExpired)
	}

	c.session = Session{
		ID:        resp.SessionID,
		Passwd:    resp.Passwd,
		TimeoutMs: resp.TimeOut,
		ReadOnly:  resp.ReadOnly,
	}
	return nil
}

// invoke sends a request and waits for its reply. A non-zero error code in
// the reply header is returned as proto.ErrCode.
func (c *Client) invoke(xid int32, op proto.OpCode, body jute.Encoder) (transport.Reply, error) {
	var req *proto.Request
	if body == nil {
		req = proto.NewHeaderOnlyRequest(xid, op)
	} else {
		req = proto.NewRequest(xid, op, body)
	}

	respCh, err := c.transport.Send(req)
	if err != nil {
		return transport.Reply{}, fmt.Errorf("%s: %w", op, err)
	}

	reply, err := c.wait(respCh)
	if errors.Is(err, ErrTimeout) {
		c.transport.Cancel(xid)
	}
	if err != nil {
		return transport.Reply{}, fmt.Errorf("%s: %w", op, err)
	}

	if zxid := reply.Header.Zxid; zxid > 0 {
		for {
			seen := c.lastZxid.Load()
			if zxid <= seen || c.lastZxid.CompareAndSwap(seen, zxid) {
				break
			}
		}
	}

	if err := reply.Header.Err.AsError(); err != nil {
		return reply, err
	}
	return reply, nil
}

// call invokes the operation and decodes the reply body into resp (if any)
func (c *Client) call(op proto.OpCode, body jute.Encoder, resp jute.Decoder) error {
	reply, err := c.invoke(c.xid(), op, body)
	if err != nil {
		return err
	}
	if resp == nil {
		return nil
	}
	if err := jute.Unmarshal(reply.Body, resp); err != nil {
		return fmt.Errorf("%s: invalid reply: %w", op, err)
	}
	return nil
}

// wait blocks until the reply arrives or the timeout expires
func (c *Client) wait(respCh <-chan transport.Reply) (transport.Reply, error) {
	var timeoutCh <-chan time.Time
	if timeout := c.config.Timeout(); timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case reply := <-respCh:
		if reply.Err != nil {
			return reply, reply.Err
		}
		return reply, nil
	case <-timeoutCh:
		return transport.Reply{}, ErrTimeout
	}
}

// dispatchUnsolicited forwards watch events until the transport is closed
func (c *Client) dispatchUnsolicited() {
	defer close(c.eventsDone)
	defer close(c.events)

	for reply := range c.transport.Unsolicited() {
		if reply.Header == nil || reply.Header.Xid != proto.XidWatcherEvent {
			Logger.Debugf("Ignoring unsolicited reply %+v", reply.Header)
			continue
		}

		var ev proto.WatcherEvent
		if err := jute.Unmarshal(reply.Body, &ev); err != nil {
			Logger.Errorf("Invalid watch event: %v", err)
			continue
		}

		select {
		case c.events <- ev:
		default:
			Logger.Warningf("Dropping %s event for %s, nobody is reading", ev.Type, ev.Path)
		}
	}
}
