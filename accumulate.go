// SPDX-License-Identifier: GPL-3.0-or-later

package mdnsnss

// maxEntries bounds the number of results kept per lookup.
//
// Results beyond the bound are silently dropped: the response is
// truncated, not rejected.
const maxEntries = 16

// resultSink accumulates query results for a single lookup call.
//
// Exactly one record kind is accumulated per lookup: addresses for
// forward lookups, names for reverse lookups. Insertion order equals
// callback order and is the order of the serialized list.
//
// A sink lives for one lookup call; the zero value is ready to use.
type resultSink struct {
	// addrs holds the accumulated addresses, forward lookups only.
	addrs [][]byte

	// names holds the accumulated names, reverse lookups only.
	names []string

	// byteTotal is the running sum of the serialized payload sizes:
	// the fixed address width per address, length plus NUL per name.
	byteTotal int
}

// count returns the number of accumulated records.
func (s *resultSink) count() int {
	return len(s.addrs) + len(s.names)
}

// acceptIPv4 accumulates an IPv4 address.
func (s *resultSink) acceptIPv4(addr [4]byte) {
	s.acceptAddr(addr[:])
}

// acceptIPv6 accumulates an IPv6 address.
func (s *resultSink) acceptIPv6(addr [16]byte) {
	s.acceptAddr(addr[:])
}

// acceptAddr accumulates a copy of the given address bytes.
func (s *resultSink) acceptAddr(addr []byte) {
	if s.count() >= maxEntries {
		return
	}
	s.addrs = append(s.addrs, append([]byte(nil), addr...))
	s.byteTotal += len(addr)
}

// acceptName accumulates a host name.
func (s *resultSink) acceptName(name string) {
	if s.count() >= maxEntries {
		return
	}
	s.names = append(s.names, name)
	s.byteTotal += len(name) + 1
}
