// SPDX-License-Identifier: GPL-3.0-or-later

package mdnsnss_test

import (
	"context"
	"fmt"
	"net"

	"github.com/bassosimone/mdnsnss"
	"github.com/bassosimone/runtimex"
)

// staticEngine implements [mdnsnss.QueryEngine] with canned results,
// standing in for the multicast network.
type staticEngine struct {
	addrs [][4]byte
	names []string
}

// OpenConn implements [mdnsnss.QueryEngine].
func (e *staticEngine) OpenConn(ctx context.Context) (mdnsnss.QueryConn, error) {
	return &staticConn{engine: e}, nil
}

// staticConn implements [mdnsnss.QueryConn] for [staticEngine].
type staticConn struct {
	engine *staticEngine
}

// QueryName implements [mdnsnss.QueryConn].
func (c *staticConn) QueryName(ctx context.Context, name string, ipv4 mdnsnss.IPv4Callback, ipv6 mdnsnss.IPv6Callback) error {
	if ipv4 != nil {
		for _, addr := range c.engine.addrs {
			ipv4(addr)
		}
	}
	return nil
}

// QueryAddrIPv4 implements [mdnsnss.QueryConn].
func (c *staticConn) QueryAddrIPv4(ctx context.Context, addr [4]byte, name mdnsnss.NameCallback) error {
	for _, entry := range c.engine.names {
		name(entry)
	}
	return nil
}

// QueryAddrIPv6 implements [mdnsnss.QueryConn].
func (c *staticConn) QueryAddrIPv6(ctx context.Context, addr [16]byte, name mdnsnss.NameCallback) error {
	for _, entry := range c.engine.names {
		name(entry)
	}
	return nil
}

// Close implements [mdnsnss.QueryConn].
func (c *staticConn) Close() error {
	return nil
}

func Example_forwardLookup() {
	// 1. Create the lookup client over a canned engine; production
	// code would construct the engine with mdnsnss.NewEngine.
	engine := &staticEngine{addrs: [][4]byte{{10, 0, 0, 5}, {10, 0, 0, 6}}}
	client := mdnsnss.NewClient(engine, mdnsnss.FamiliesDual)

	// 2. Resolve into a caller-owned buffer.
	buf := make([]byte, 512)
	ctx := context.Background()
	hostent := runtimex.PanicOnError1(client.LookupName(ctx, "printer.local", mdnsnss.FamilyIPv4, buf))

	// 3. Decode the record regions from the buffer.
	fmt.Printf("%s\n", hostent.CanonicalName(buf))
	for _, addr := range hostent.Addresses(buf) {
		fmt.Printf("%s\n", net.IP(addr))
	}

	// Output:
	// printer.local
	// 10.0.0.5
	// 10.0.0.6
}

func Example_reverseLookup() {
	engine := &staticEngine{names: []string{"printer.local"}}
	client := mdnsnss.NewClient(engine, mdnsnss.FamiliesDual)

	buf := make([]byte, 512)
	ctx := context.Background()
	hostent := runtimex.PanicOnError1(client.LookupAddr(ctx, net.IP{10, 0, 0, 5}, mdnsnss.FamilyIPv4, buf))

	// The canonical name comes from the query; the address list
	// echoes the queried address.
	fmt.Printf("%s\n", hostent.CanonicalName(buf))
	for _, addr := range hostent.Addresses(buf) {
		fmt.Printf("%s\n", net.IP(addr))
	}

	// Output:
	// printer.local
	// 10.0.0.5
}

func Example_retryWithLargerBuffer() {
	engine := &staticEngine{addrs: [][4]byte{{10, 0, 0, 5}}}
	client := mdnsnss.NewClient(engine, mdnsnss.FamiliesDual)

	// The first buffer is too small for the full record; the lookup
	// fails without writing and the caller retries with a larger one.
	ctx := context.Background()
	buf := make([]byte, 24)
	_, err := client.LookupName(ctx, "printer.local", mdnsnss.FamilyIPv4, buf)
	fmt.Printf("%v %v\n", mdnsnss.StatusOf(err) == mdnsnss.StatusTryAgain, mdnsnss.Recoverable(err))

	buf = make([]byte, 512)
	hostent := runtimex.PanicOnError1(client.LookupName(ctx, "printer.local", mdnsnss.FamilyIPv4, buf))
	fmt.Printf("%s\n", hostent.CanonicalName(buf))

	// Output:
	// true true
	// printer.local
}
