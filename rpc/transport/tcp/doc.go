// Package tcp connects the packet transport to servers over TCP. It provides
// the TCP implementation of base.IClientConnector, everything else (queueing,
// framing, reply correlation) is inherited from the base package.
//
// UpgradeConnection applies the options from ClientConfig.Transport:
//
//   - TCPNoDelay disables Nagle's algorithm, recommended since requests are
//     small and latency bound
//   - WriteBufferSize / ReadBufferSize set the socket buffers (0 keeps the default)
//   - TCPKeepAliveSec enables keep-alive probes
//   - TCPLingerSec sets SO_LINGER, a negative value keeps the OS default
package tcp
