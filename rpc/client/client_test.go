package client

import (
	"errors"
	"sync"
	"testing"

	"github.com/ValentinKolb/zkwire/lib/jute"
	"github.com/ValentinKolb/zkwire/lib/proto"
	"github.com/ValentinKolb/zkwire/rpc/common"
	"github.com/ValentinKolb/zkwire/rpc/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --------------------------------------------------------------------------
// Fake transport
// --------------------------------------------------------------------------

// handlerFunc answers a request. Returning false leaves the request unanswered.
type handlerFunc func(req *proto.Request) (transport.Reply, bool)

type fakeTransport struct {
	mu          sync.Mutex
	requests    []*proto.Request
	cancelled   []int32
	handler     handlerFunc
	unsolicited chan transport.Reply
	closeOnce   sync.Once
	closed      bool
}

func newFakeTransport(handler handlerFunc) *fakeTransport {
	return &fakeTransport{handler: handler, unsolicited: make(chan transport.Reply, 8)}
}

func (f *fakeTransport) Connect(config common.ClientConfig) error {
	return config.Validate()
}

func (f *fakeTransport) Send(req *proto.Request) (<-chan transport.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, transport.ErrClosed
	}
	f.requests = append(f.requests, req)

	respCh := make(chan transport.Reply, 1)
	if reply, ok := f.handler(req); ok {
		respCh <- reply
	}
	return respCh, nil
}

func (f *fakeTransport) Cancel(xid int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, xid)
}

func (f *fakeTransport) Unsolicited() <-chan transport.Reply {
	return f.unsolicited
}

func (f *fakeTransport) Close() error {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		f.closed = true
		f.mu.Unlock()
		close(f.unsolicited)
	})
	return nil
}

func (f *fakeTransport) sent() []*proto.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*proto.Request(nil), f.requests...)
}

// --------------------------------------------------------------------------
// Test helpers
// --------------------------------------------------------------------------

func testConfig() common.ClientConfig {
	return common.ClientConfig{
		TimeoutSecond:    1,
		SessionTimeoutMs: 10000,
		ReadOnly:         true,
		Transport: common.ClientTransportConfig{
			Endpoints: []string{"localhost:2181"},
		},
	}
}

func replyTo(req *proto.Request, zxid int64, code proto.ErrCode, body jute.Encoder) transport.Reply {
	reply := transport.Reply{Header: &proto.ReplyHeader{Xid: req.Header.Xid, Zxid: zxid, Err: code}}
	if body != nil {
		reply.Body = jute.Marshal(body)
	}
	return reply
}

// server answers the handshake and delegates everything else to ops
func server(ops handlerFunc) handlerFunc {
	return func(req *proto.Request) (transport.Reply, bool) {
		if req.IsHandshake() {
			resp := proto.ConnectResponse{TimeOut: 8000, SessionID: 0xabc, Passwd: []byte("secret"), ReadOnly: true}
			return transport.Reply{Body: jute.Marshal(resp)}, true
		}
		if req.Header.OpCode == proto.OpClose {
			return replyTo(req, 0, proto.ErrOk, nil), true
		}
		return ops(req)
	}
}

func newTestClient(t *testing.T, ops handlerFunc) (*Client, *fakeTransport) {
	t.Helper()
	tr := newFakeTransport(server(ops))
	c, err := NewClient(testConfig(), tr)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, tr
}

// decodeBody decodes the payload of a sent request
func decodeBody(t *testing.T, req *proto.Request) jute.Decoder {
	t.Helper()
	_, body, err := proto.DecodeFrame(req.AppendFrame(nil)[4:], req.IsHandshake())
	require.NoError(t, err)
	return body
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

func TestHandshake(t *testing.T) {
	c, tr := newTestClient(t, nil)

	session := c.Session()
	assert.Equal(t, int64(0xabc), session.ID)
	assert.Equal(t, int32(8000), session.TimeoutMs)
	assert.Equal(t, []byte("secret"), session.Passwd)
	assert.True(t, session.ReadOnly)

	sent := tr.sent()
	require.Len(t, sent, 1)
	require.True(t, sent[0].IsHandshake())

	req := decodeBody(t, sent[0]).(*proto.ConnectRequest)
	assert.Equal(t, uint32(10000), req.TimeOut)
	assert.True(t, req.ReadOnly)
	assert.False(t, req.Passwd.Valid)
}

func TestHandshakeExpiredSession(t *testing.T) {
	tr := newFakeTransport(func(req *proto.Request) (transport.Reply, bool) {
		return transport.Reply{Body: jute.Marshal(proto.ConnectResponse{})}, true
	})
	_, err := NewClient(testConfig(), tr)
	assert.ErrorIs(t, err, proto.ErrSessionExpired)
	assert.True(t, tr.closed)
}

func TestCreate(t *testing.T) {
	c, tr := newTestClient(t, func(req *proto.Request) (transport.Reply, bool) {
		return replyTo(req, 10, proto.ErrOk, proto.PathResponse{Path: "/app/seq-0000000001"}), true
	})

	path, err := c.Create("/app/seq-", jute.SomeBytes([]byte("v")), nil, proto.CreateEphemeralSequential)
	require.NoError(t, err)
	assert.Equal(t, "/app/seq-0000000001", path)
	assert.Equal(t, int64(10), c.LastZxid())

	sent := tr.sent()
	req := sent[len(sent)-1]
	assert.Equal(t, proto.OpCreate, req.Header.OpCode)

	body := decodeBody(t, req).(*proto.CreateRequest)
	assert.Equal(t, "/app/seq-", body.Path)
	assert.Equal(t, proto.CreateEphemeralSequential, body.Flags)
	require.Len(t, body.ACL, 1)
	assert.Equal(t, proto.PermAll, body.ACL[0].Perms)
}

func TestCreateModes(t *testing.T) {
	c, tr := newTestClient(t, func(req *proto.Request) (transport.Reply, bool) {
		if req.Header.OpCode == proto.OpCreateContainer {
			return replyTo(req, 1, proto.ErrOk, proto.Create2Response{Path: "/c", Stat: proto.Stat{Czxid: 1}}), true
		}
		return replyTo(req, 1, proto.ErrOk, proto.PathResponse{Path: "/p"}), true
	})

	path, err := c.Create("/c", jute.NoBytes(), proto.WorldACL(), proto.CreateContainer)
	require.NoError(t, err)
	assert.Equal(t, "/c", path)
	sent := tr.sent()
	assert.Equal(t, proto.OpCreateContainer, sent[len(sent)-1].Header.OpCode)

	_, err = c.Create("/ttl", jute.NoBytes(), nil, proto.CreatePersistentWithTTL)
	assert.Error(t, err)
	assert.Len(t, tr.sent(), len(sent))
}

func TestErrorCodes(t *testing.T) {
	c, _ := newTestClient(t, func(req *proto.Request) (transport.Reply, bool) {
		switch req.Header.OpCode {
		case proto.OpDelete:
			return replyTo(req, 0, proto.ErrBadVersion, nil), true
		case proto.OpExists:
			return replyTo(req, 0, proto.ErrNoNode, nil), true
		}
		return replyTo(req, 0, proto.ErrUnimplemented, nil), true
	})

	err := c.Delete("/a", 3)
	assert.ErrorIs(t, err, proto.ErrBadVersion)

	var code proto.ErrCode
	require.True(t, errors.As(err, &code))
	assert.Equal(t, proto.ErrBadVersion, code)

	exists, _, err := c.Exists("/missing", true)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestReadOperations(t *testing.T) {
	stat := proto.Stat{Version: 4, NumChildren: 2, DataLength: 5}
	c, _ := newTestClient(t, func(req *proto.Request) (transport.Reply, bool) {
		switch req.Header.OpCode {
		case proto.OpGetData:
			return replyTo(req, 1, proto.ErrOk, proto.GetDataResponse{Data: jute.SomeBytes([]byte("hello")), Stat: stat}), true
		case proto.OpGetChildren:
			return replyTo(req, 1, proto.ErrOk, proto.GetChildrenResponse{Children: []string{"a", "b"}}), true
		case proto.OpExists, proto.OpSetData, proto.OpSetACL:
			return replyTo(req, 1, proto.ErrOk, proto.StatResponse{Stat: stat}), true
		case proto.OpGetACL:
			return replyTo(req, 1, proto.ErrOk, proto.GetACLResponse{ACL: proto.WorldACL(), Stat: stat}), true
		case proto.OpSync:
			return replyTo(req, 1, proto.ErrOk, proto.PathResponse{Path: "/"}), true
		}
		return transport.Reply{}, false
	})

	data, gotStat, err := c.GetData("/a", false)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data.Data)
	assert.Equal(t, stat, gotStat)

	children, err := c.GetChildren("/a", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, children)

	exists, gotStat, err := c.Exists("/a", false)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, int32(4), gotStat.Version)

	gotStat, err = c.SetData("/a", []byte("x"), 4)
	require.NoError(t, err)
	assert.Equal(t, stat, gotStat)

	acl, _, err := c.GetACL("/a")
	require.NoError(t, err)
	assert.Equal(t, "world:anyone:cdrwa", acl[0].String())

	_, err = c.SetACL("/a", proto.WorldACL(), proto.AnyVersion)
	require.NoError(t, err)

	path, err := c.Sync("/")
	require.NoError(t, err)
	assert.Equal(t, "/", path)
}

func TestXids(t *testing.T) {
	c, tr := newTestClient(t, func(req *proto.Request) (transport.Reply, bool) {
		return replyTo(req, 0, proto.ErrOk, nil), true
	})

	require.NoError(t, c.Delete("/a", proto.AnyVersion))
	require.NoError(t, c.Delete("/b", proto.AnyVersion))
	_, err := c.Ping()
	require.NoError(t, err)
	require.NoError(t, c.AddAuth("digest", []byte("user:pw")))

	sent := tr.sent()[1:]
	require.Len(t, sent, 4)
	assert.Equal(t, int32(1), sent[0].Header.Xid)
	assert.Equal(t, int32(2), sent[1].Header.Xid)
	assert.Equal(t, proto.XidPing, sent[2].Header.Xid)
	assert.Equal(t, proto.OpPing, sent[2].Header.OpCode)
	assert.Empty(t, sent[2].Payload)
	assert.Equal(t, proto.XidAuth, sent[3].Header.Xid)

	auth := decodeBody(t, sent[3]).(*proto.AuthRequest)
	assert.Equal(t, "digest", auth.Scheme)
	assert.Equal(t, []byte("user:pw"), auth.Auth)
}

func TestXidWrapsToPositive(t *testing.T) {
	c := &Client{}
	c.nextXid.Store(1<<31 - 1)
	assert.Equal(t, int32(1), c.xid())
}

func TestTimeout(t *testing.T) {
	c, tr := newTestClient(t, func(req *proto.Request) (transport.Reply, bool) {
		if req.Header.OpCode == proto.OpGetData {
			return transport.Reply{}, false
		}
		return replyTo(req, 0, proto.ErrOk, nil), true
	})

	_, _, err := c.GetData("/slow", false)
	assert.ErrorIs(t, err, ErrTimeout)

	// the waiter of the timed out request is released
	sent := tr.sent()
	tr.mu.Lock()
	assert.Equal(t, []int32{sent[len(sent)-1].Header.Xid}, tr.cancelled)
	tr.mu.Unlock()
}

func TestTransportError(t *testing.T) {
	c, _ := newTestClient(t, func(req *proto.Request) (transport.Reply, bool) {
		return transport.Reply{Header: &proto.ReplyHeader{Xid: req.Header.Xid}, Err: transport.ErrClosed}, true
	})

	_, err := c.GetChildren("/", false)
	assert.ErrorIs(t, err, transport.ErrClosed)
}

func TestEvents(t *testing.T) {
	c, tr := newTestClient(t, nil)

	tr.unsolicited <- transport.Reply{Header: &proto.ReplyHeader{Xid: proto.XidPing}}
	tr.unsolicited <- transport.Reply{
		Header: &proto.ReplyHeader{Xid: proto.XidWatcherEvent, Zxid: -1},
		Body:   jute.Marshal(proto.WatcherEvent{Type: proto.EventNodeDeleted, State: 3, Path: "/gone"}),
	}

	ev := <-c.Events()
	assert.Equal(t, proto.EventNodeDeleted, ev.Type)
	assert.Equal(t, "/gone", ev.Path)
}

func TestClose(t *testing.T) {
	c, tr := newTestClient(t, nil)
	require.NoError(t, c.Close())

	sent := tr.sent()
	assert.Equal(t, proto.OpClose, sent[len(sent)-1].Header.OpCode)
	assert.True(t, tr.closed)

	_, ok := <-c.Events()
	assert.False(t, ok)

	// closing twice is a no-op
	require.NoError(t, c.Close())
	assert.Len(t, tr.sent(), len(sent))

	_, err := c.Ping()
	assert.ErrorIs(t, err, transport.ErrClosed)
}
