// Package unix connects the packet transport to a server through a Unix
// domain socket, typically a local proxy or a test server. Only the socket
// buffer sizes from SocketConf apply; all other behaviour is inherited from
// the base package.
package unix
