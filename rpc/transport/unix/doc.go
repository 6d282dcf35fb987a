// Package unix implements the Unix domain socket transport of hKV. The server
// endpoint is the path of the socket file; a stale file of an earlier run is
// removed before listening.
//
// Unix sockets avoid the TCP stack entirely and are the fastest option when
// client and server run on the same host. See the base package for the frame
// format and worker model.
package unix
