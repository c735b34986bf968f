// Package client implements the request pipeline on top of a packet
// transport. It owns the session handshake and the transaction ids, builds
// the payload of every operation and decodes the replies.
//
// The package focuses on:
//   - Typed node operations (create, delete, get/set data, children, ACLs)
//   - Session handling (handshake, ping, authentication, close)
//   - Conversion of reply error codes into proto.ErrCode errors
//
// Key Components:
//
//   - NewClient: Connects the transport and sends the connect request. The
//     negotiated session is available through Session().
//
//   - Client: Assigns positive, increasing xids to regular requests and the
//     reserved xids to pings and auth requests. Every operation waits at most
//     ClientConfig.TimeoutSecond for its reply and returns ErrTimeout after.
//
//   - Events: Watch notifications that arrive without a waiting request are
//     decoded and delivered on the Events() channel.
//
// Usage Example:
//
//	config := common.ClientConfig{
//		TimeoutSecond:    5,
//		SessionTimeoutMs: 10000,
//		Transport: common.ClientTransportConfig{
//			Endpoints: []string{"localhost:2181"},
//		},
//	}
//
//	c, _ := client.NewClient(config, tcp.NewTCPClientTransport())
//	defer c.Close()
//
//	path, _ := c.Create("/app", jute.SomeBytes([]byte("v1")), nil, proto.CreatePersistent)
//	data, stat, _ := c.GetData(path, false)
//	_, err := c.SetData(path, []byte("v2"), stat.Version)
//	if errors.Is(err, proto.ErrBadVersion) {
//		// concurrent modification
//	}
//
// Thread Safety:
//
//	All methods are thread-safe. Close writes every request sent before it
//	and then shuts the transport down.
package client
