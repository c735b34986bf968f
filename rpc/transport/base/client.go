package base

import (
	"fmt"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/zkwire/lib/jute"
	"github.com/ValentinKolb/zkwire/lib/proto"
	"github.com/ValentinKolb/zkwire/lib/queue"
	"github.com/ValentinKolb/zkwire/rpc/common"
	"github.com/ValentinKolb/zkwire/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("transport")

// unsolicitedBuffer is the number of unmatched replies kept until dropped
const unsolicitedBuffer = 64

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to the endpoint
	Connect(endpoint string, timeout time.Duration) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// transportMetrics holds the counters of one transport type
type transportMetrics struct {
	packetsWritten *metrics.Counter
	bytesWritten   *metrics.Counter
	writeErrors    *metrics.Counter
	repliesRead    *metrics.Counter
	unsolicited    *metrics.Counter
	dropped        *metrics.Counter
	shutdowns      *metrics.Counter
	lost           *metrics.Counter
	frameSize      *metrics.Histogram
}

func newTransportMetrics(name string) transportMetrics {
	counter := func(metric string) *metrics.Counter {
		return metrics.GetOrCreateCounter(fmt.Sprintf(`zkwire_transport_%s{transport=%q}`, metric, name))
	}
	return transportMetrics{
		packetsWritten: counter("packets_written_total"),
		bytesWritten:   counter("bytes_written_total"),
		writeErrors:    counter("write_errors_total"),
		repliesRead:    counter("replies_read_total"),
		unsolicited:    counter("unsolicited_replies_total"),
		dropped:        counter("unsolicited_dropped_total"),
		shutdowns:      counter("shutdowns_total"),
		lost:           counter("connections_lost_total"),
		frameSize:      metrics.GetOrCreateHistogram(fmt.Sprintf(`zkwire_transport_frame_bytes{transport=%q}`, name)),
	}
}

// clientTransport implements the core client transport functionality
// independent of the specific transport medium (unix, tcp, etc.)
type clientTransport struct {
	connector IClientConnector
	config    common.ClientConfig
	metrics   transportMetrics

	conn     net.Conn
	endpoint string

	// all outgoing packets, the writer goroutine is the only consumer
	packets *queue.MPSC[proto.Packet]

	// waiters by xid and the waiter for the next handshake reply
	pending   *xsync.MapOf[int32, chan transport.Reply]
	handshake atomic.Pointer[chan transport.Reply]

	unsolicited chan transport.Reply

	// stateMu orders Send against Close: once closed is set no request can
	// be enqueued behind the death packet
	stateMu sync.RWMutex
	closed  bool

	// set before the close session request is written, the server drops the
	// connection after answering it
	sessionClosed atomic.Bool

	writerDone chan struct{}
	readerDone chan struct{}
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IPacketTransport {
	return &clientTransport{
		connector:   connector,
		metrics:     newTransportMetrics(connector.GetName()),
		pending:     xsync.NewMapOf[int32, chan transport.Reply](),
		unsolicited: make(chan transport.Reply, unsolicitedBuffer),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IPacketTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	t.stateMu.Lock()
	defer t.stateMu.Unlock()

	if t.conn != nil {
		return fmt.Errorf("transport is already connected to %s", t.endpoint)
	}
	if t.closed {
		return transport.ErrClosed
	}

	t.config = config

	// We always try at least once, and up to RetryCount passes over all endpoints
	passes := config.Transport.RetryCount
	if passes < 1 {
		passes = 1
	}

	// Initial backoff duration in milliseconds
	backoffMs := 50

	var lastErr error
	for i := 0; i < passes; i++ {
		for _, endpoint := range config.Transport.Endpoints {
			conn, err := t.dial(endpoint)
			if err != nil {
				lastErr = err
				Logger.Debugf("Connect attempt to %s (pass %d/%d) failed: %v", endpoint, i+1, passes, err)
				continue
			}

			t.start(conn, endpoint)
			Logger.Infof("Connected to %s using %s transport", endpoint, t.connector.GetName())
			return nil
		}

		if i < passes-1 {
			// Exponential backoff with a small random jitter (+-10%)
			jitter := float64(backoffMs) * (0.9 + 0.2*rand.Float64())
			time.Sleep(time.Duration(jitter) * time.Millisecond)
			backoffMs *= 2
		}
	}

	return fmt.Errorf("failed to connect to any of %d endpoints after %d attempts: %w",
		len(config.Transport.Endpoints), passes, lastErr)
}

func (t *clientTransport) Send(req *proto.Request) (<-chan transport.Reply, error) {
	if req == nil {
		return nil, fmt.Errorf("request is nil")
	}

	t.stateMu.RLock()
	defer t.stateMu.RUnlock()

	if t.closed || t.conn == nil {
		return nil, transport.ErrClosed
	}
	select {
	case <-t.readerDone:
		return nil, fmt.Errorf("%w: connection to %s lost", transport.ErrClosed, t.endpoint)
	default:
	}

	respCh := make(chan transport.Reply, 1)
	if req.IsHandshake() {
		if !t.handshake.CompareAndSwap(nil, &respCh) {
			return nil, fmt.Errorf("handshake already in progress")
		}
	} else if _, loaded := t.pending.LoadOrStore(req.Header.Xid, respCh); loaded {
		return nil, fmt.Errorf("xid %d is already pending", req.Header.Xid)
	}

	if !t.packets.Push(req) {
		t.forget(req)
		return nil, transport.ErrClosed
	}
	return respCh, nil
}

func (t *clientTransport) Cancel(xid int32) {
	if _, found := t.pending.LoadAndDelete(xid); found {
		Logger.Debugf("Cancelled request with xid %d", xid)
	}
}

func (t *clientTransport) Unsolicited() <-chan transport.Reply {
	return t.unsolicited
}

func (t *clientTransport) Close() error {
	t.stateMu.Lock()
	if t.closed {
		t.stateMu.Unlock()
		return nil
	}
	t.closed = true
	if t.conn == nil {
		close(t.unsolicited)
		t.stateMu.Unlock()
		return nil
	}

	// every request pushed before this point is written, nothing after it
	t.packets.Push(proto.DeathPacket())
	t.stateMu.Unlock()

	<-t.writerDone
	err := t.conn.Close()
	<-t.readerDone

	t.failAll(transport.ErrClosed)
	close(t.unsolicited)

	Logger.Infof("Closed connection to %s", t.endpoint)
	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// dial establishes and upgrades a connection to the endpoint
func (t *clientTransport) dial(endpoint string) (net.Conn, error) {
	conn, err := t.connector.Connect(endpoint, t.config.Timeout())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", endpoint, err)
	}

	// Upgrade the connection with protocol-specific settings
	if err := t.connector.UpgradeConnection(conn, t.config); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to upgrade connection to %s: %w", endpoint, err)
	}
	return conn, nil
}

// start takes over the connection and starts the writer and reader goroutines
func (t *clientTransport) start(conn net.Conn, endpoint string) {
	t.conn = conn
	t.endpoint = endpoint
	t.packets = queue.NewMPSC[proto.Packet]()
	t.writerDone = make(chan struct{})
	t.readerDone = make(chan struct{})

	go t.writePackets()
	go t.readReplies()
}

// writePackets drains the queue and writes every request until the death
// packet is received
func (t *clientTransport) writePackets() {
	defer close(t.writerDone)

	prefix := make([]byte, 0, 16)
	for packet := range t.packets.Recv() {
		switch p := packet.(type) {
		case proto.Shutdown:
			t.metrics.shutdowns.Inc()
			Logger.Debugf("Writer for %s received death packet", t.endpoint)
			t.discardRemaining()
			return

		case *proto.Request:
			if timeout := t.config.Timeout(); timeout > 0 {
				t.conn.SetWriteDeadline(time.Now().Add(timeout))
			}

			if p.Header != nil && p.Header.OpCode == proto.OpClose {
				t.sessionClosed.Store(true)
			}

			var n int64
			var err error
			prefix, n, err = writeFrame(t.conn, prefix, p)
			if err != nil {
				t.metrics.writeErrors.Inc()
				Logger.Warningf("Failed to write %s to %s: %v", p, t.endpoint, err)
				t.fail(p, fmt.Errorf("%w: %v", transport.ErrClosed, err))
				continue
			}

			t.metrics.packetsWritten.Inc()
			t.metrics.bytesWritten.Add(int(n))
			t.metrics.frameSize.Update(float64(n))
			Logger.Debugf("Wrote %s", p)
		}
	}
}

// discardRemaining closes the queue and fails whatever is still in it. Close
// sets the closed flag before pushing the death packet, so this only sees
// packets that raced with it.
func (t *clientTransport) discardRemaining() {
	t.packets.Close()
	for packet := range t.packets.Recv() {
		if req, ok := packet.(*proto.Request); ok {
			t.fail(req, transport.ErrClosed)
		}
	}
}

// readReplies reads frames until the connection fails and distributes them
// to the waiting requests
func (t *clientTransport) readReplies() {
	defer close(t.readerDone)

	lenBuf := make([]byte, 4)
	for {
		frame, err := readFrame(t.conn, lenBuf)
		if err != nil {
			t.stateMu.RLock()
			closing := t.closed
			t.stateMu.RUnlock()
			switch {
			case closing:
			case t.sessionClosed.Load():
				Logger.Debugf("Connection to %s closed after session end: %v", t.endpoint, err)
				t.failAll(fmt.Errorf("%w: %v", transport.ErrClosed, err))
			default:
				t.metrics.lost.Inc()
				Logger.Warningf("Connection to %s lost: %v", t.endpoint, err)
				t.failAll(fmt.Errorf("%w: %v", transport.ErrClosed, err))
			}
			return
		}
		t.metrics.repliesRead.Inc()

		// the connect response has no reply header
		if hs := t.handshake.Swap(nil); hs != nil {
			*hs <- transport.Reply{Body: frame}
			continue
		}

		r := jute.NewReader(frame)
		header := &proto.ReplyHeader{}
		if err := header.Decode(r); err != nil {
			Logger.Errorf("Dropping malformed reply from %s: %v", t.endpoint, err)
			continue
		}
		reply := transport.Reply{Header: header, Body: frame[r.Offset():]}

		if respCh, found := t.pending.LoadAndDelete(header.Xid); found {
			respCh <- reply
			continue
		}

		t.metrics.unsolicited.Inc()
		select {
		case t.unsolicited <- reply:
		default:
			t.metrics.dropped.Inc()
			Logger.Warningf("Dropping unsolicited reply with xid %d, nobody is reading", header.Xid)
		}
	}
}

// fail delivers err to the waiter of the request, if it is still waiting
func (t *clientTransport) fail(req *proto.Request, err error) {
	if req.IsHandshake() {
		if hs := t.handshake.Swap(nil); hs != nil {
			*hs <- transport.Reply{Err: err}
		}
		return
	}
	if respCh, found := t.pending.LoadAndDelete(req.Header.Xid); found {
		respCh <- transport.Reply{Header: &proto.ReplyHeader{Xid: req.Header.Xid}, Err: err}
	}
}

// forget removes the waiter of a request that was never enqueued
func (t *clientTransport) forget(req *proto.Request) {
	if req.IsHandshake() {
		t.handshake.Store(nil)
		return
	}
	t.pending.Delete(req.Header.Xid)
}

// failAll delivers err to every waiting request
func (t *clientTransport) failAll(err error) {
	if hs := t.handshake.Swap(nil); hs != nil {
		*hs <- transport.Reply{Err: err}
	}
	t.pending.Range(func(xid int32, respCh chan transport.Reply) bool {
		if _, found := t.pending.LoadAndDelete(xid); found {
			respCh <- transport.Reply{Header: &proto.ReplyHeader{Xid: xid}, Err: err}
		}
		return true
	})
}
