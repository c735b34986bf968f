// Package proto defines the request records of the ZooKeeper client protocol
// and the envelope that carries an encoded request to the network writer.
//
// The package focuses on:
//   - One record type per operation with a fixed field order on the wire
//   - A closed set of ACL schemes, so scheme names and identities always match
//   - The request header and the outer frame (4-byte length, header, payload)
//   - A shutdown packet that flows through the same queue as real requests
//
// Key Components:
//
//   - ConnectRequest: The session handshake. It is the first frame of every
//     connection and the only request sent without a RequestHeader.
//
//   - CreateRequest, DeleteRequest, SetDataRequest, PathAndWatchRequest,
//     PathRequest: The payloads of the node operations. SetACLRequest,
//     CheckVersionRequest, SetWatchesRequest and AuthRequest complete the set.
//
//   - ACL / Scheme: An ACL entry is a permission mask plus one of the schemes
//     World, IP or Digest. The wire representation is always the scheme token
//     followed by the identity; World always writes "world"/"anyone".
//
//   - RequestHeader / ReplyHeader: The operation independent prefix of every
//     request and reply. ReplyHeader and ConnectResponse are only decoded as
//     far as the transport needs them to correlate replies.
//
//   - Packet: Either a *Request (optional header plus encoded payload) or the
//     Shutdown signal (type DeathPacketType, -1). The writer draining the
//     outgoing queue writes requests as single frames and terminates on
//     Shutdown without writing anything.
//
//   - ErrCode: The error codes a server returns in the reply header.
//
// Usage:
//
//	req := proto.NewCreateRequestFull("/app/lock", jute.SomeBytes(data),
//		[]proto.ACL{proto.NewACL(proto.PermAll, proto.Digest{Credential: cred})},
//		proto.CreateEphemeralSequential)
//	pkt := proto.NewRequest(xid, proto.OpCreate, req)
//	frame := pkt.AppendFrame(nil)
//
// Thread Safety:
//
//	Records and packets are not modified after construction and can be shared
//	between goroutines. Encoding writes only to the caller's buffer.
package proto
