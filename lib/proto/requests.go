package proto

import (
	"github.com/ValentinKolb/zkwire/lib/jute"
)

// Request records are built once, encoded once and then dropped or forwarded.
// They are never modified after construction, so a record may be encoded by
// several goroutines at the same time. Byte slices passed to the constructors
// are not copied and must not be modified by the caller afterwards.

// --------------------------------------------------------------------------
// Connect
// --------------------------------------------------------------------------

// ConnectRequest is the session handshake. It is sent without a request
// header as the first frame of every connection.
type ConnectRequest struct {
	ProtocolVersion int32
	LastZxidSeen    int64
	TimeOut         uint32
	SessionID       int64
	Passwd          jute.OptBytes
	ReadOnly        bool
}

// NewConnectRequest creates the handshake of a fresh session
func NewConnectRequest(sessionTimeout uint32) *ConnectRequest {
	return &ConnectRequest{
		ProtocolVersion: ProtocolVersion,
		TimeOut:         sessionTimeout,
	}
}

// NewReconnectRequest creates the handshake that resumes an existing session
func NewReconnectRequest(sessionTimeout uint32, sessionID int64, passwd []byte, lastZxidSeen int64, readOnly bool) *ConnectRequest {
	return &ConnectRequest{
		ProtocolVersion: ProtocolVersion,
		LastZxidSeen:    lastZxidSeen,
		TimeOut:         sessionTimeout,
		SessionID:       sessionID,
		Passwd:          jute.SomeBytes(passwd),
		ReadOnly:        readOnly,
	}
}

func (r ConnectRequest) Encode(w *jute.Writer) {
	w.WriteInt32(r.ProtocolVersion)
	w.WriteInt64(r.LastZxidSeen)
	w.WriteUint32(r.TimeOut)
	w.WriteInt64(r.SessionID)
	w.WriteOptBuffer(r.Passwd)
	w.WriteBool(r.ReadOnly)
}

// Decode reads the handshake. Old clients do not send the read-only flag.
func (r *ConnectRequest) Decode(rd *jute.Reader) (err error) {
	if r.ProtocolVersion, err = rd.ReadInt32(); err != nil {
		return err
	}
	if r.LastZxidSeen, err = rd.ReadInt64(); err != nil {
		return err
	}
	if r.TimeOut, err = rd.ReadUint32(); err != nil {
		return err
	}
	if r.SessionID, err = rd.ReadInt64(); err != nil {
		return err
	}
	if r.Passwd, err = rd.ReadOptBuffer(); err != nil {
		return err
	}
	if rd.Remaining() > 0 {
		r.ReadOnly, err = rd.ReadBool()
	}
	return err
}

// --------------------------------------------------------------------------
// Create
// --------------------------------------------------------------------------

// CreateRequest creates a node
type CreateRequest struct {
	Path  string
	Data  jute.OptBytes
	ACL   []ACL
	Flags CreateMode
}

// NewCreateRequest creates a persistent node without data that is open to everyone
func NewCreateRequest(path string) *CreateRequest {
	return &CreateRequest{
		Path:  path,
		Data:  jute.NoBytes(),
		ACL:   WorldACL(),
		Flags: CreatePersistent,
	}
}

// NewCreateRequestFull creates a node with explicit data, ACL and mode
func NewCreateRequestFull(path string, data jute.OptBytes, acl []ACL, mode CreateMode) *CreateRequest {
	return &CreateRequest{
		Path:  path,
		Data:  data,
		ACL:   acl,
		Flags: mode,
	}
}

func (r CreateRequest) Encode(w *jute.Writer) {
	w.WriteString(r.Path)
	w.WriteOptBuffer(r.Data)
	jute.WriteVector(w, r.ACL)
	w.WriteInt32(int32(r.Flags))
}

func (r *CreateRequest) Decode(rd *jute.Reader) (err error) {
	if r.Path, err = rd.ReadString(); err != nil {
		return err
	}
	if r.Data, err = rd.ReadOptBuffer(); err != nil {
		return err
	}
	if r.ACL, err = decodeACLs(rd); err != nil {
		return err
	}
	flags, err := rd.ReadInt32()
	r.Flags = CreateMode(flags)
	return err
}

// --------------------------------------------------------------------------
// Delete
// --------------------------------------------------------------------------

// DeleteRequest deletes a node if its version matches, AnyVersion skips the check
type DeleteRequest struct {
	Path    string
	Version int32
}

func NewDeleteRequest(path string, version int32) *DeleteRequest {
	return &DeleteRequest{Path: path, Version: version}
}

func (r DeleteRequest) Encode(w *jute.Writer) {
	w.WriteString(r.Path)
	w.WriteInt32(r.Version)
}

func (r *DeleteRequest) Decode(rd *jute.Reader) (err error) {
	if r.Path, err = rd.ReadString(); err != nil {
		return err
	}
	r.Version, err = rd.ReadInt32()
	return err
}

// --------------------------------------------------------------------------
// Set Data
// --------------------------------------------------------------------------

// SetDataRequest replaces the data of a node. Unlike create, the data is
// required and never encoded as null.
type SetDataRequest struct {
	Path    string
	Data    []byte
	Version int32
}

func NewSetDataRequest(path string, data []byte, version int32) *SetDataRequest {
	return &SetDataRequest{Path: path, Data: data, Version: version}
}

func (r SetDataRequest) Encode(w *jute.Writer) {
	w.WriteString(r.Path)
	w.WriteBuffer(r.Data)
	w.WriteInt32(r.Version)
}

func (r *SetDataRequest) Decode(rd *jute.Reader) (err error) {
	if r.Path, err = rd.ReadString(); err != nil {
		return err
	}
	if r.Data, err = rd.ReadBuffer(); err != nil {
		return err
	}
	r.Version, err = rd.ReadInt32()
	return err
}

// --------------------------------------------------------------------------
// Path Requests
// --------------------------------------------------------------------------

// PathAndWatchRequest is used by exists, get-data and get-children, which
// may register a watch on the path
type PathAndWatchRequest struct {
	Path  string
	Watch bool
}

func NewPathAndWatchRequest(path string, watch bool) *PathAndWatchRequest {
	return &PathAndWatchRequest{Path: path, Watch: watch}
}

func (r PathAndWatchRequest) Encode(w *jute.Writer) {
	w.WriteString(r.Path)
	w.WriteBool(r.Watch)
}

func (r *PathAndWatchRequest) Decode(rd *jute.Reader) (err error) {
	if r.Path, err = rd.ReadString(); err != nil {
		return err
	}
	r.Watch, err = rd.ReadBool()
	return err
}

// PathRequest is used by operations that only need a target path (sync, get-acl)
type PathRequest struct {
	Path string
}

func NewPathRequest(path string) *PathRequest {
	return &PathRequest{Path: path}
}

func (r PathRequest) Encode(w *jute.Writer) {
	w.WriteString(r.Path)
}

func (r *PathRequest) Decode(rd *jute.Reader) (err error) {
	r.Path, err = rd.ReadString()
	return err
}

// --------------------------------------------------------------------------
// ACL, Check, Watches and Auth
// --------------------------------------------------------------------------

// SetACLRequest replaces the ACL of a node
type SetACLRequest struct {
	Path    string
	ACL     []ACL
	Version int32
}

func NewSetACLRequest(path string, acl []ACL, version int32) *SetACLRequest {
	return &SetACLRequest{Path: path, ACL: acl, Version: version}
}

func (r SetACLRequest) Encode(w *jute.Writer) {
	w.WriteString(r.Path)
	jute.WriteVector(w, r.ACL)
	w.WriteInt32(r.Version)
}

func (r *SetACLRequest) Decode(rd *jute.Reader) (err error) {
	if r.Path, err = rd.ReadString(); err != nil {
		return err
	}
	if r.ACL, err = decodeACLs(rd); err != nil {
		return err
	}
	r.Version, err = rd.ReadInt32()
	return err
}

// CheckVersionRequest asserts the version of a node inside a multi request
type CheckVersionRequest struct {
	Path    string
	Version int32
}

func NewCheckVersionRequest(path string, version int32) *CheckVersionRequest {
	return &CheckVersionRequest{Path: path, Version: version}
}

func (r CheckVersionRequest) Encode(w *jute.Writer) {
	w.WriteString(r.Path)
	w.WriteInt32(r.Version)
}

func (r *CheckVersionRequest) Decode(rd *jute.Reader) (err error) {
	if r.Path, err = rd.ReadString(); err != nil {
		return err
	}
	r.Version, err = rd.ReadInt32()
	return err
}

// SetWatchesRequest re-registers watches after a reconnect
type SetWatchesRequest struct {
	RelativeZxid int64
	DataWatches  []string
	ExistWatches []string
	ChildWatches []string
}

func NewSetWatchesRequest(relativeZxid int64, data, exist, child []string) *SetWatchesRequest {
	return &SetWatchesRequest{
		RelativeZxid: relativeZxid,
		DataWatches:  data,
		ExistWatches: exist,
		ChildWatches: child,
	}
}

func (r SetWatchesRequest) Encode(w *jute.Writer) {
	w.WriteInt64(r.RelativeZxid)
	w.WriteStrings(r.DataWatches)
	w.WriteStrings(r.ExistWatches)
	w.WriteStrings(r.ChildWatches)
}

func (r *SetWatchesRequest) Decode(rd *jute.Reader) (err error) {
	if r.RelativeZxid, err = rd.ReadInt64(); err != nil {
		return err
	}
	if r.DataWatches, err = rd.ReadStrings(); err != nil {
		return err
	}
	if r.ExistWatches, err = rd.ReadStrings(); err != nil {
		return err
	}
	r.ChildWatches, err = rd.ReadStrings()
	return err
}

// AuthRequest adds credentials to the session. The credential bytes are sent
// as given, e.g. "user:password" for the digest scheme.
type AuthRequest struct {
	Type   int32
	Scheme string
	Auth   []byte
}

func NewAuthRequest(scheme string, auth []byte) *AuthRequest {
	return &AuthRequest{Scheme: scheme, Auth: auth}
}

func (r AuthRequest) Encode(w *jute.Writer) {
	w.WriteInt32(r.Type)
	w.WriteString(r.Scheme)
	w.WriteBuffer(r.Auth)
}

func (r *AuthRequest) Decode(rd *jute.Reader) (err error) {
	if r.Type, err = rd.ReadInt32(); err != nil {
		return err
	}
	if r.Scheme, err = rd.ReadString(); err != nil {
		return err
	}
	r.Auth, err = rd.ReadBuffer()
	return err
}
