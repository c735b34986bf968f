package proto

import "github.com/ValentinKolb/zkwire/lib/jute"

// ConnectResponse is the server's answer to the handshake. It is the first
// frame the server sends and carries no reply header.
type ConnectResponse struct {
	ProtocolVersion int32
	TimeOut         int32
	SessionID       int64
	Passwd          []byte
	ReadOnly        bool
}

func (r ConnectResponse) Encode(w *jute.Writer) {
	w.WriteInt32(r.ProtocolVersion)
	w.WriteInt32(r.TimeOut)
	w.WriteInt64(r.SessionID)
	w.WriteBuffer(r.Passwd)
	w.WriteBool(r.ReadOnly)
}

// Decode reads the connect response, servers before 3.4 omit the read-only flag
func (r *ConnectResponse) Decode(rd *jute.Reader) (err error) {
	if r.ProtocolVersion, err = rd.ReadInt32(); err != nil {
		return err
	}
	if r.TimeOut, err = rd.ReadInt32(); err != nil {
		return err
	}
	if r.SessionID, err = rd.ReadInt64(); err != nil {
		return err
	}
	if r.Passwd, err = rd.ReadBuffer(); err != nil {
		return err
	}
	if rd.Remaining() > 0 {
		r.ReadOnly, err = rd.ReadBool()
	}
	return err
}

// --------------------------------------------------------------------------
// Operation replies
// --------------------------------------------------------------------------

// Stat is the metadata of a node
type Stat struct {
	Czxid          int64
	Mzxid          int64
	Ctime          int64
	Mtime          int64
	Version        int32
	Cversion       int32
	Aversion       int32
	EphemeralOwner int64
	DataLength     int32
	NumChildren    int32
	Pzxid          int64
}

func (s Stat) Encode(w *jute.Writer) {
	w.WriteInt64(s.Czxid)
	w.WriteInt64(s.Mzxid)
	w.WriteInt64(s.Ctime)
	w.WriteInt64(s.Mtime)
	w.WriteInt32(s.Version)
	w.WriteInt32(s.Cversion)
	w.WriteInt32(s.Aversion)
	w.WriteInt64(s.EphemeralOwner)
	w.WriteInt32(s.DataLength)
	w.WriteInt32(s.NumChildren)
	w.WriteInt64(s.Pzxid)
}

func (s *Stat) Decode(r *jute.Reader) (err error) {
	for _, f := range []*int64{&s.Czxid, &s.Mzxid, &s.Ctime, &s.Mtime} {
		if *f, err = r.ReadInt64(); err != nil {
			return err
		}
	}
	for _, f := range []*int32{&s.Version, &s.Cversion, &s.Aversion} {
		if *f, err = r.ReadInt32(); err != nil {
			return err
		}
	}
	if s.EphemeralOwner, err = r.ReadInt64(); err != nil {
		return err
	}
	if s.DataLength, err = r.ReadInt32(); err != nil {
		return err
	}
	if s.NumChildren, err = r.ReadInt32(); err != nil {
		return err
	}
	s.Pzxid, err = r.ReadInt64()
	return err
}

// PathResponse is the reply to create and sync, it carries the actual path
// (including the sequence suffix of sequential nodes)
type PathResponse struct {
	Path string
}

func (r PathResponse) Encode(w *jute.Writer) {
	w.WriteString(r.Path)
}

func (r *PathResponse) Decode(rd *jute.Reader) (err error) {
	r.Path, err = rd.ReadString()
	return err
}

// Create2Response is the reply to create2, createContainer and createTTL
type Create2Response struct {
	Path string
	Stat Stat
}

func (r Create2Response) Encode(w *jute.Writer) {
	w.WriteString(r.Path)
	r.Stat.Encode(w)
}

func (r *Create2Response) Decode(rd *jute.Reader) (err error) {
	if r.Path, err = rd.ReadString(); err != nil {
		return err
	}
	return r.Stat.Decode(rd)
}

// StatResponse is the reply to exists, setData and setACL
type StatResponse struct {
	Stat Stat
}

func (r StatResponse) Encode(w *jute.Writer) {
	r.Stat.Encode(w)
}

func (r *StatResponse) Decode(rd *jute.Reader) error {
	return r.Stat.Decode(rd)
}

// GetDataResponse is the reply to getData. Data is absent for nodes created
// without data.
type GetDataResponse struct {
	Data jute.OptBytes
	Stat Stat
}

func (r GetDataResponse) Encode(w *jute.Writer) {
	w.WriteOptBuffer(r.Data)
	r.Stat.Encode(w)
}

func (r *GetDataResponse) Decode(rd *jute.Reader) (err error) {
	if r.Data, err = rd.ReadOptBuffer(); err != nil {
		return err
	}
	return r.Stat.Decode(rd)
}

// GetChildrenResponse is the reply to getChildren
type GetChildrenResponse struct {
	Children []string
}

func (r GetChildrenResponse) Encode(w *jute.Writer) {
	w.WriteStrings(r.Children)
}

func (r *GetChildrenResponse) Decode(rd *jute.Reader) (err error) {
	r.Children, err = rd.ReadStrings()
	return err
}

// GetACLResponse is the reply to getACL
type GetACLResponse struct {
	ACL  []ACL
	Stat Stat
}

func (r GetACLResponse) Encode(w *jute.Writer) {
	jute.WriteVector(w, r.ACL)
	r.Stat.Encode(w)
}

func (r *GetACLResponse) Decode(rd *jute.Reader) (err error) {
	if r.ACL, err = decodeACLs(rd); err != nil {
		return err
	}
	return r.Stat.Decode(rd)
}

// WatcherEvent is delivered with xid XidWatcherEvent when a watch fires
type WatcherEvent struct {
	Type  EventType
	State int32
	Path  string
}

func (e WatcherEvent) Encode(w *jute.Writer) {
	w.WriteInt32(int32(e.Type))
	w.WriteInt32(e.State)
	w.WriteString(e.Path)
}

func (e *WatcherEvent) Decode(rd *jute.Reader) (err error) {
	var t int32
	if t, err = rd.ReadInt32(); err != nil {
		return err
	}
	e.Type = EventType(t)
	if e.State, err = rd.ReadInt32(); err != nil {
		return err
	}
	e.Path, err = rd.ReadString()
	return err
}
