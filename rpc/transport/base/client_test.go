package base

import (
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/zkwire/lib/jute"
	"github.com/ValentinKolb/zkwire/lib/proto"
	"github.com/ValentinKolb/zkwire/rpc/common"
	"github.com/ValentinKolb/zkwire/rpc/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --------------------------------------------------------------------------
// Test helpers
// --------------------------------------------------------------------------

// pipeConnector hands out one end of an in-memory pipe
type pipeConnector struct {
	conn     net.Conn
	upgraded bool
}

func (c *pipeConnector) GetName() string { return "pipe" }

func (c *pipeConnector) Connect(endpoint string, timeout time.Duration) (net.Conn, error) {
	if c.conn == nil {
		return nil, errors.New("connection refused")
	}
	return c.conn, nil
}

func (c *pipeConnector) UpgradeConnection(conn net.Conn, config common.ClientConfig) error {
	c.upgraded = true
	return nil
}

func testConfig() common.ClientConfig {
	return common.ClientConfig{
		TimeoutSecond:    2,
		SessionTimeoutMs: common.DefaultSessionTimeoutMs,
		Transport: common.ClientTransportConfig{
			Endpoints: []string{"pipe"},
		},
	}
}

// connectPipe returns a connected transport and the server end of the pipe
func connectPipe(t *testing.T) (*clientTransport, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	connector := &pipeConnector{conn: client}

	tr := NewBaseClientTransport(connector).(*clientTransport)
	require.NoError(t, tr.Connect(testConfig()))
	require.True(t, connector.upgraded)

	t.Cleanup(func() {
		server.Close()
		tr.Close()
	})
	return tr, server
}

// readRequestFrame reads one frame including its length prefix
func readRequestFrame(conn net.Conn) ([]byte, error) {
	lenBuf := make([]byte, 4)
	if _, err := io.ReadFull(conn, lenBuf); err != nil {
		return nil, err
	}
	frame := make([]byte, binary.BigEndian.Uint32(lenBuf))
	if _, err := io.ReadFull(conn, frame); err != nil {
		return nil, err
	}
	return append(lenBuf, frame...), nil
}

// frameXid extracts the xid of a framed request with a header
func frameXid(frame []byte) int32 {
	return int32(binary.BigEndian.Uint32(frame[4:8]))
}

func writeReply(t *testing.T, conn net.Conn, header proto.ReplyHeader, body []byte) {
	t.Helper()
	payload := append(jute.Marshal(header), body...)
	frame := binary.BigEndian.AppendUint32(nil, uint32(len(payload)))
	_, err := conn.Write(append(frame, payload...))
	require.NoError(t, err)
}

func receive(t *testing.T, ch <-chan transport.Reply) transport.Reply {
	t.Helper()
	select {
	case reply := <-ch:
		return reply
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reply")
		return transport.Reply{}
	}
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

func TestSendAndReceiveReply(t *testing.T) {
	tr, server := connectPipe(t)

	req := proto.NewRequest(1, proto.OpGetData, proto.NewPathAndWatchRequest("/a", false))
	respCh, err := tr.Send(req)
	require.NoError(t, err)

	frame, err := readRequestFrame(server)
	require.NoError(t, err)
	assert.Equal(t, req.AppendFrame(nil), frame)

	writeReply(t, server, proto.ReplyHeader{Xid: 1, Zxid: 42}, []byte("data"))

	reply := receive(t, respCh)
	require.NoError(t, reply.Err)
	require.NotNil(t, reply.Header)
	assert.Equal(t, int32(1), reply.Header.Xid)
	assert.Equal(t, int64(42), reply.Header.Zxid)
	assert.Equal(t, proto.ErrOk, reply.Header.Err)
	assert.Equal(t, []byte("data"), reply.Body)
}

func TestHandshake(t *testing.T) {
	tr, server := connectPipe(t)

	respCh, err := tr.Send(proto.NewHandshake(proto.NewConnectRequest(10000)))
	require.NoError(t, err)

	frame, err := readRequestFrame(server)
	require.NoError(t, err)
	assert.Len(t, frame, 4+29)

	resp := proto.ConnectResponse{TimeOut: 8000, SessionID: 0x1234, Passwd: make([]byte, 16)}
	body := jute.Marshal(resp)
	_, err = server.Write(append(binary.BigEndian.AppendUint32(nil, uint32(len(body))), body...))
	require.NoError(t, err)

	reply := receive(t, respCh)
	require.NoError(t, reply.Err)
	assert.Nil(t, reply.Header)

	var decoded proto.ConnectResponse
	require.NoError(t, jute.Unmarshal(reply.Body, &decoded))
	assert.Equal(t, int64(0x1234), decoded.SessionID)
	assert.Equal(t, int32(8000), decoded.TimeOut)
}

func TestCloseWritesEverythingBeforeDeathPacket(t *testing.T) {
	tr, server := connectPipe(t)

	const producers = 4
	const perProducer = 50

	written := tr.metrics.packetsWritten.Get()

	// the server collects frames until the client closes the pipe
	var frames [][]byte
	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		for {
			frame, err := readRequestFrame(server)
			if err != nil {
				return
			}
			frames = append(frames, frame)
		}
	}()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				xid := int32(p*perProducer + i + 1)
				_, err := tr.Send(proto.NewHeaderOnlyRequest(xid, proto.OpPing))
				assert.NoError(t, err)
			}
		}(p)
	}
	wg.Wait()

	require.NoError(t, tr.Close())
	<-serverDone

	require.Len(t, frames, producers*perProducer)
	assert.Equal(t, uint64(producers*perProducer), tr.metrics.packetsWritten.Get()-written)

	// each producer's requests arrive in the order they were sent
	last := make([]int32, producers)
	for _, frame := range frames {
		xid := frameXid(frame)
		p := (xid - 1) / perProducer
		assert.Greater(t, xid, last[p])
		last[p] = xid
	}

	// nothing is accepted after the death packet
	_, err := tr.Send(proto.NewHeaderOnlyRequest(1000, proto.OpPing))
	assert.ErrorIs(t, err, transport.ErrClosed)
	assert.NoError(t, tr.Close())
}

func TestCloseFailsPendingRequests(t *testing.T) {
	tr, server := connectPipe(t)

	go func() {
		for {
			if _, err := readRequestFrame(server); err != nil {
				return
			}
		}
	}()

	respCh, err := tr.Send(proto.NewRequest(5, proto.OpExists, proto.NewPathAndWatchRequest("/x", true)))
	require.NoError(t, err)
	require.NoError(t, tr.Close())

	reply := receive(t, respCh)
	assert.ErrorIs(t, reply.Err, transport.ErrClosed)
	assert.Equal(t, int32(5), reply.Header.Xid)

	// the unsolicited channel is closed with the transport
	_, ok := <-tr.Unsolicited()
	assert.False(t, ok)
}

func TestConnectionLost(t *testing.T) {
	tr, server := connectPipe(t)
	lost := tr.metrics.lost.Get()

	respCh, err := tr.Send(proto.NewRequest(3, proto.OpSync, proto.NewPathRequest("/")))
	require.NoError(t, err)

	_, err = readRequestFrame(server)
	require.NoError(t, err)
	server.Close()

	reply := receive(t, respCh)
	assert.ErrorIs(t, reply.Err, transport.ErrClosed)

	<-tr.readerDone
	assert.Equal(t, uint64(1), tr.metrics.lost.Get()-lost)
	_, err = tr.Send(proto.NewHeaderOnlyRequest(4, proto.OpPing))
	assert.ErrorIs(t, err, transport.ErrClosed)
}

func TestServerDropsConnectionAfterSessionClose(t *testing.T) {
	tr, server := connectPipe(t)
	lost := tr.metrics.lost.Get()

	respCh, err := tr.Send(proto.NewHeaderOnlyRequest(2, proto.OpClose))
	require.NoError(t, err)
	_, err = readRequestFrame(server)
	require.NoError(t, err)

	writeReply(t, server, proto.ReplyHeader{Xid: 2, Zxid: 10}, nil)
	server.Close()

	reply := receive(t, respCh)
	require.NoError(t, reply.Err)

	<-tr.readerDone
	assert.Equal(t, uint64(0), tr.metrics.lost.Get()-lost)
	assert.NoError(t, tr.Close())
}

func TestCancelReleasesXid(t *testing.T) {
	tr, server := connectPipe(t)

	_, err := tr.Send(proto.NewHeaderOnlyRequest(proto.XidPing, proto.OpPing))
	require.NoError(t, err)
	_, err = readRequestFrame(server)
	require.NoError(t, err)

	// a second ping collides until the first one is cancelled
	_, err = tr.Send(proto.NewHeaderOnlyRequest(proto.XidPing, proto.OpPing))
	assert.Error(t, err)
	tr.Cancel(proto.XidPing)

	// the late reply has no waiter anymore
	writeReply(t, server, proto.ReplyHeader{Xid: proto.XidPing, Zxid: 1}, nil)
	reply := receive(t, tr.Unsolicited())
	assert.Equal(t, proto.XidPing, reply.Header.Xid)

	respCh, err := tr.Send(proto.NewHeaderOnlyRequest(proto.XidPing, proto.OpPing))
	require.NoError(t, err)
	_, err = readRequestFrame(server)
	require.NoError(t, err)
	writeReply(t, server, proto.ReplyHeader{Xid: proto.XidPing, Zxid: 2}, nil)

	reply = receive(t, respCh)
	require.NoError(t, reply.Err)
	assert.Equal(t, int64(2), reply.Header.Zxid)

	// cancelling an unknown xid is a no-op
	tr.Cancel(12345)
}

func TestUnsolicitedReply(t *testing.T) {
	tr, server := connectPipe(t)

	writeReply(t, server, proto.ReplyHeader{Xid: proto.XidWatcherEvent, Zxid: -1}, []byte{1, 2, 3})

	reply := receive(t, tr.Unsolicited())
	require.NotNil(t, reply.Header)
	assert.Equal(t, proto.XidWatcherEvent, reply.Header.Xid)
	assert.Equal(t, []byte{1, 2, 3}, reply.Body)
}

func TestServerErrorCode(t *testing.T) {
	tr, server := connectPipe(t)

	respCh, err := tr.Send(proto.NewRequest(9, proto.OpDelete, proto.NewDeleteRequest("/missing", proto.AnyVersion)))
	require.NoError(t, err)
	_, err = readRequestFrame(server)
	require.NoError(t, err)

	writeReply(t, server, proto.ReplyHeader{Xid: 9, Zxid: 1, Err: proto.ErrNoNode}, nil)

	reply := receive(t, respCh)
	require.NoError(t, reply.Err)
	assert.Equal(t, proto.ErrNoNode, reply.Header.Err)
	assert.Empty(t, reply.Body)
}

func TestDuplicateXid(t *testing.T) {
	tr, server := connectPipe(t)
	go func() {
		for {
			if _, err := readRequestFrame(server); err != nil {
				return
			}
		}
	}()

	_, err := tr.Send(proto.NewHeaderOnlyRequest(7, proto.OpPing))
	require.NoError(t, err)
	_, err = tr.Send(proto.NewHeaderOnlyRequest(7, proto.OpPing))
	assert.Error(t, err)
}

func TestConnectErrors(t *testing.T) {
	tr := NewBaseClientTransport(&pipeConnector{})

	cfg := testConfig()
	cfg.Transport.Endpoints = nil
	assert.Error(t, tr.Connect(cfg))

	cfg = testConfig()
	cfg.Transport.RetryCount = 2
	assert.Error(t, tr.Connect(cfg))

	_, err := tr.Send(proto.NewHeaderOnlyRequest(1, proto.OpPing))
	assert.ErrorIs(t, err, transport.ErrClosed)
	assert.NoError(t, tr.Close())
}

func TestReadFrameRejectsInvalidLength(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go server.Write([]byte{0xff, 0xff, 0xff, 0xff})

	_, err := readFrame(client, make([]byte, 4))
	assert.Error(t, err)
}
