// SPDX-License-Identifier: GPL-3.0-or-later

package mdnsnss

import (
	"context"
	"fmt"
	"net"
)

// Client performs host lookups against a [QueryEngine] and serializes
// the results into caller-provided buffers.
//
// Construct using [NewClient].
//
// A Client is safe for concurrent use: each lookup owns its own
// transport and its own result accumulation, and the caller buffer
// belongs exclusively to the single in-flight call that received it.
type Client struct {
	// engine opens the query transports.
	engine QueryEngine

	// families restricts the served address families.
	families FamilySet
}

// NewClient creates a new [*Client].
func NewClient(engine QueryEngine, families FamilySet) *Client {
	return &Client{engine: engine, families: families}
}

// LookupHost resolves name using the default family of the configured
// [FamilySet] and serializes the record into buf.
//
// It is the gethostbyname analog of [Client.LookupName].
func (c *Client) LookupHost(ctx context.Context, name string, buf []byte) (*Hostent, error) {
	return c.LookupName(ctx, name, c.families.DefaultFamily(), buf)
}

// LookupName resolves name to addresses of the given family and
// serializes the record into buf.
//
// On success the returned [*Hostent] references regions of buf. On
// failure buf has not been written to; [Recoverable] reports whether
// retrying the whole call with a larger buffer can succeed.
func (c *Client) LookupName(ctx context.Context, name string, family Family, buf []byte) (*Hostent, error) {
	addrLen, ok := family.AddrLen()
	if !ok || !c.families.Contains(family) {
		return nil, ErrUnsupportedFamily
	}

	// Fail fast, before opening any transport, when the buffer cannot
	// hold even the fixed overhead.
	if len(buf) < ptrSize+len(name)+1 {
		return nil, ErrBufferTooSmall
	}

	conn, err := c.engine.OpenConn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer conn.Close()

	sink := &resultSink{}
	var ipv4 IPv4Callback
	var ipv6 IPv6Callback
	switch family {
	case FamilyIPv4:
		ipv4 = sink.acceptIPv4
	case FamilyIPv6:
		ipv6 = sink.acceptIPv6
	}
	if err := conn.QueryName(ctx, name, ipv4, ipv6); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	// A query may legitimately complete with zero addresses; the
	// record then carries an empty address list.
	if len(buf) < planForward(len(name), sink.byteTotal, sink.count()) {
		return nil, ErrBufferTooSmall
	}

	hostent, _ := serializeForward(buf, name, family, addrLen, sink.addrs)
	return hostent, nil
}

// LookupAddr resolves addr to host names and serializes the record
// into buf. The record's canonical name is the first discovered name
// and its address list echoes addr.
//
// The address must be in the exact width of its family: 4 bytes for
// [FamilyIPv4], 16 bytes for [FamilyIPv6].
func (c *Client) LookupAddr(ctx context.Context, addr net.IP, family Family, buf []byte) (*Hostent, error) {
	addrLen, ok := family.AddrLen()
	if !ok || !c.families.Contains(family) {
		return nil, ErrUnsupportedFamily
	}
	if len(addr) != addrLen {
		return nil, ErrAddressLength
	}

	if len(buf) < ptrSize+addrLen {
		return nil, ErrBufferTooSmall
	}

	conn, err := c.engine.OpenConn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer conn.Close()

	sink := &resultSink{}
	switch family {
	case FamilyIPv4:
		err = conn.QueryAddrIPv4(ctx, [4]byte(addr), sink.acceptName)
	case FamilyIPv6:
		err = conn.QueryAddrIPv6(ctx, [16]byte(addr), sink.acceptName)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	// Unlike forward lookups, a reverse record needs at least one
	// name to serve as the canonical name.
	if sink.count() == 0 {
		return nil, ErrNotFound
	}

	if len(buf) < planReverse(len(sink.names[0]), addrLen) {
		return nil, ErrBufferTooSmall
	}

	hostent, _ := serializeReverse(buf, sink.names[0], family, addrLen, addr)
	return hostent, nil
}
