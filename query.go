// SPDX-License-Identifier: GPL-3.0-or-later

package mdnsnss

import "context"

// IPv4Callback receives one discovered IPv4 address.
//
// Callbacks fire synchronously, zero or more times, before the query
// operation returns; implementations must not retain them afterwards.
type IPv4Callback func(addr [4]byte)

// IPv6Callback receives one discovered IPv6 address.
type IPv6Callback func(addr [16]byte)

// NameCallback receives one discovered host name.
type NameCallback func(name string)

// QueryEngine opens query transports.
//
// [*Engine] is the multicast implementation.
type QueryEngine interface {
	// OpenConn opens a transport for a single lookup call.
	OpenConn(ctx context.Context) (QueryConn, error)
}

// QueryConn is a query transport owned by a single lookup call.
type QueryConn interface {
	// QueryName resolves a host name, invoking each non-nil callback
	// once per discovered address of the corresponding family.
	QueryName(ctx context.Context, name string, ipv4 IPv4Callback, ipv6 IPv6Callback) error

	// QueryAddrIPv4 resolves an IPv4 address to host names, invoking
	// the callback once per discovered name.
	QueryAddrIPv4(ctx context.Context, addr [4]byte, name NameCallback) error

	// QueryAddrIPv6 resolves an IPv6 address to host names.
	QueryAddrIPv6(ctx context.Context, addr [16]byte, name NameCallback) error

	// Close releases the transport. Lookups close their transport on
	// every exit path, success or failure.
	Close() error
}
