// SPDX-License-Identifier: GPL-3.0-or-later

package mdnsnss

import "github.com/bassosimone/runtimex"

// planForward returns the exact byte count required to serialize a
// forward record with the given canonical-name length, accumulated
// payload size, and record count.
//
// Planning is always completed and checked against the caller buffer
// before the serializer writes the first byte, so a too-small buffer
// is never mutated.
func planForward(nameLen, payloadLen, count int) int {
	return ptrSize + // alias list: terminator only
		nameLen + 1 + // canonical name incl. NUL
		payloadLen + // address slots
		ptrSize*(count+1) // address list incl. terminator
}

// planReverse returns the exact byte count required to serialize a
// reverse record echoing one address of the given width.
func planReverse(nameLen, addrLen int) int {
	return ptrSize + // alias list: terminator only
		nameLen + 1 + // canonical name incl. NUL
		addrLen + // echoed address slot
		ptrSize*2 // address list incl. terminator
}

// serializeForward writes a forward record into buf and returns the
// populated [*Hostent] together with the number of bytes written.
//
// The caller must have confirmed capacity with [planForward]; the
// serializer itself cannot fail. Every offset derives from the bytes
// written so far, keeping the list entries and the payload slots in
// exact correspondence.
func serializeForward(buf []byte, name string, family Family, addrLen int, addrs [][]byte) (*Hostent, int) {
	runtimex.Assert(len(buf) >= planForward(len(name), addrLen*len(addrs), len(addrs)))

	// Alias list: a single terminator.
	putOffset(buf, 0, 0)
	index := ptrSize

	// Canonical name.
	nameOff := index
	copy(buf[index:], name)
	buf[index+len(name)] = 0
	index += len(name) + 1

	// Address slots.
	astart := index
	for _, addr := range addrs {
		runtimex.Assert(len(addr) == addrLen)
		copy(buf[index:], addr)
		index += addrLen
	}

	// Address list.
	listOff := index
	for i := range addrs {
		putOffset(buf, index, astart+i*addrLen)
		index += ptrSize
	}
	putOffset(buf, index, 0)
	index += ptrSize

	hostent := &Hostent{
		NameOff:     nameOff,
		AliasesOff:  0,
		Family:      family,
		AddrLen:     addrLen,
		AddrListOff: listOff,
	}
	return hostent, index
}

// serializeReverse writes a reverse record into buf and returns the
// populated [*Hostent] together with the number of bytes written.
//
// The canonical name is the first accumulated name and the single
// address slot echoes the queried address, not any query result.
func serializeReverse(buf []byte, name string, family Family, addrLen int, addr []byte) (*Hostent, int) {
	runtimex.Assert(len(addr) == addrLen)
	runtimex.Assert(len(buf) >= planReverse(len(name), addrLen))

	// Alias list: a single terminator.
	putOffset(buf, 0, 0)
	index := ptrSize

	// Canonical name.
	nameOff := index
	copy(buf[index:], name)
	buf[index+len(name)] = 0
	index += len(name) + 1

	// Echoed address slot.
	astart := index
	copy(buf[index:], addr)
	index += addrLen

	// Address list.
	listOff := index
	putOffset(buf, index, astart)
	index += ptrSize
	putOffset(buf, index, 0)
	index += ptrSize

	hostent := &Hostent{
		NameOff:     nameOff,
		AliasesOff:  0,
		Family:      family,
		AddrLen:     addrLen,
		AddrListOff: listOff,
	}
	return hostent, index
}
