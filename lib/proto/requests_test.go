package proto

import (
	"net/netip"
	"testing"

	"github.com/ValentinKolb/zkwire/lib/jute"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectRequestDefault(t *testing.T) {
	b := jute.Marshal(NewConnectRequest(10000))
	require.Len(t, b, 4+8+4+8+4+1)

	want := wire{}.i32(0).i64(0).u32(10000).i64(0).i32(-1).boolean(false)
	assert.Equal(t, []byte(want), b)
	// password length segment
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, b[24:28])
}

func TestReconnectRequest(t *testing.T) {
	req := NewReconnectRequest(30000, 0x1234, []byte("0123456789abcdef"), 77, true)
	want := wire{}.i32(0).i64(77).u32(30000).i64(0x1234).str("0123456789abcdef").boolean(true)
	assert.Equal(t, []byte(want), jute.Marshal(req))

	var out ConnectRequest
	roundTrip(t, req, &out)
	assert.Equal(t, *req, out)
}

func TestConnectRequestWithoutReadOnlyFlag(t *testing.T) {
	b := wire{}.i32(0).i64(0).u32(5000).i64(0).i32(-1)
	var out ConnectRequest
	require.NoError(t, jute.Unmarshal(b, &out))
	assert.Equal(t, uint32(5000), out.TimeOut)
	assert.False(t, out.Passwd.Valid)
	assert.False(t, out.ReadOnly)
}

func TestCreateRequestMinimal(t *testing.T) {
	req := NewCreateRequest("/node")
	want := wire{}.str("/node").i32(-1).
		i32(1).u32(31).str("world").str("anyone").
		i32(int32(CreatePersistent))
	assert.Equal(t, []byte(want), jute.Marshal(req))
}

func TestCreateRequestFull(t *testing.T) {
	acl := []ACL{
		NewACL(PermRead, IP{Addr: netip.MustParseAddr("127.0.0.1")}),
		NewACL(PermAll, Digest{Credential: "admin:x"}),
	}
	req := NewCreateRequestFull("/app/seq-", jute.SomeBytes([]byte("v")), acl, CreateEphemeralSequential)

	want := wire{}.str("/app/seq-").str("v").
		i32(2).
		u32(1).str("ip").str("127.0.0.1").
		u32(31).str("digest").str("admin:x").
		i32(3)
	assert.Equal(t, []byte(want), jute.Marshal(req))
}

func TestCreateRequestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		req  *CreateRequest
	}{
		{"default", NewCreateRequest("/a")},
		{"empty data", NewCreateRequestFull("/b", jute.SomeBytes([]byte{}), WorldACL(), CreateEphemeral)},
		{"no acl", NewCreateRequestFull("/c", jute.SomeBytes([]byte("data")), []ACL{}, CreateContainer)},
		{"mixed acl", NewCreateRequestFull("/d", jute.NoBytes(), []ACL{
			NewACL(PermRead, IP{Addr: netip.MustParseAddr("fe80::1")}),
			DefaultACL(),
		}, CreatePersistentSequentialWithTTL)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out CreateRequest
			roundTrip(t, tt.req, &out)
			assert.Equal(t, tt.req.Path, out.Path)
			assert.Equal(t, tt.req.Data.Valid, out.Data.Valid)
			assert.Equal(t, string(tt.req.Data.Data), string(out.Data.Data))
			assert.Equal(t, tt.req.ACL, out.ACL)
			assert.Equal(t, tt.req.Flags, out.Flags)
		})
	}
}

func TestCreateRequestDataNullVsEmpty(t *testing.T) {
	absent := jute.Marshal(NewCreateRequestFull("/x", jute.NoBytes(), nil, CreatePersistent))
	empty := jute.Marshal(NewCreateRequestFull("/x", jute.SomeBytes(nil), nil, CreatePersistent))
	assert.NotEqual(t, absent, empty)
	assert.Equal(t, len(absent), len(empty))
}

func TestSetDataRequest(t *testing.T) {
	req := NewSetDataRequest("/a", []byte("hello"), 3)
	want := wire{}.str("/a").i32(5).raw([]byte("hello")).i32(3)
	assert.Equal(t, []byte(want), jute.Marshal(req))

	// data is required, nil is written as empty and never as null
	req = NewSetDataRequest("/a", nil, AnyVersion)
	want = wire{}.str("/a").i32(0).i32(-1)
	assert.Equal(t, []byte(want), jute.Marshal(req))
}

func TestSimpleRequests(t *testing.T) {
	tests := []struct {
		name string
		req  jute.Encoder
		want wire
	}{
		{"delete", NewDeleteRequest("/a/b", 7), wire{}.str("/a/b").i32(7)},
		{"delete any version", NewDeleteRequest("/a", AnyVersion), wire{}.str("/a").i32(-1)},
		{"exists with watch", NewPathAndWatchRequest("/w", true), wire{}.str("/w").boolean(true)},
		{"get without watch", NewPathAndWatchRequest("/w", false), wire{}.str("/w").boolean(false)},
		{"sync", NewPathRequest("/s"), wire{}.str("/s")},
		{"check", NewCheckVersionRequest("/c", 2), wire{}.str("/c").i32(2)},
		{"set acl", NewSetACLRequest("/p", WorldACL(), 1),
			wire{}.str("/p").i32(1).u32(31).str("world").str("anyone").i32(1)},
		{"set watches", NewSetWatchesRequest(9, []string{"/d"}, nil, []string{"/c1", "/c2"}),
			wire{}.i64(9).i32(1).str("/d").i32(0).i32(2).str("/c1").str("/c2")},
		{"auth", NewAuthRequest("digest", []byte("u:p")), wire{}.i32(0).str("digest").str("u:p")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []byte(tt.want), jute.Marshal(tt.req))
		})
	}
}

func TestRequestRoundTrips(t *testing.T) {
	del := NewDeleteRequest("/a", 4)
	var delOut DeleteRequest
	roundTrip(t, del, &delOut)
	assert.Equal(t, *del, delOut)

	set := NewSetDataRequest("/a", []byte("v"), 1)
	var setOut SetDataRequest
	roundTrip(t, set, &setOut)
	assert.Equal(t, *set, setOut)

	pw := NewPathAndWatchRequest("/a", true)
	var pwOut PathAndWatchRequest
	roundTrip(t, pw, &pwOut)
	assert.Equal(t, *pw, pwOut)

	sw := NewSetWatchesRequest(1, []string{"/a"}, []string{}, []string{"/b"})
	var swOut SetWatchesRequest
	roundTrip(t, sw, &swOut)
	assert.Equal(t, *sw, swOut)

	sa := NewSetACLRequest("/a", []ACL{NewACL(PermRead, Digest{Credential: "x:y"})}, 2)
	var saOut SetACLRequest
	roundTrip(t, sa, &saOut)
	assert.Equal(t, *sa, saOut)
}

func TestRequestsAreSafeToShare(t *testing.T) {
	req := NewCreateRequestFull("/shared", jute.SomeBytes([]byte("x")), WorldACL(), CreateEphemeral)
	want := jute.Marshal(req)

	done := make(chan []byte)
	for i := 0; i < 8; i++ {
		go func() {
			done <- jute.Marshal(req)
		}()
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, want, <-done)
	}
}
