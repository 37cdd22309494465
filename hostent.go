// SPDX-License-Identifier: GPL-3.0-or-later

package mdnsnss

import (
	"bytes"
	"encoding/binary"

	"github.com/bassosimone/runtimex"
)

// Family identifies an address family.
type Family int

// Family values.
const (
	FamilyIPv4 Family = iota + 1
	FamilyIPv6
)

// AddrLen returns the serialized width in bytes of an address of this
// family and false when the family is not supported.
func (f Family) AddrLen() (int, bool) {
	switch f {
	case FamilyIPv4:
		return 4, true
	case FamilyIPv6:
		return 16, true
	default:
		return 0, false
	}
}

// FamilySet restricts the address families a [*Client] serves.
//
// It replaces the IPv4-only and IPv6-only build variants of classic
// NSS modules with a value resolved at construction time.
type FamilySet int

// FamilySet values.
const (
	// FamiliesDual serves both IPv4 and IPv6 lookups.
	FamiliesDual FamilySet = iota

	// FamiliesIPv4Only serves IPv4 lookups only.
	FamiliesIPv4Only

	// FamiliesIPv6Only serves IPv6 lookups only.
	FamiliesIPv6Only
)

// Contains reports whether the set serves the given family.
func (fs FamilySet) Contains(f Family) bool {
	switch fs {
	case FamiliesIPv4Only:
		return f == FamilyIPv4
	case FamiliesIPv6Only:
		return f == FamilyIPv6
	default:
		return f == FamilyIPv4 || f == FamilyIPv6
	}
}

// DefaultFamily returns the family used by [*Client.LookupHost].
func (fs FamilySet) DefaultFamily() Family {
	if fs == FamiliesIPv6Only {
		return FamilyIPv6
	}
	return FamilyIPv4
}

// ptrSize is the width of a list entry inside the caller buffer.
//
// List entries are big-endian byte offsets into the buffer rather than
// machine pointers. Zero terminates a list, which is unambiguous
// because offset zero always holds the alias-list terminator and never
// a payload slot.
const ptrSize = 8

// putOffset writes the list entry at buf[index:].
func putOffset(buf []byte, index, offset int) {
	binary.BigEndian.PutUint64(buf[index:], uint64(offset))
}

// getOffset reads the list entry at buf[index:].
func getOffset(buf []byte, index int) int {
	return int(binary.BigEndian.Uint64(buf[index:]))
}

// Hostent describes a host record serialized into a caller buffer.
//
// The fields are offsets into the buffer passed to the lookup call
// that produced the record; the accessors decode the referenced
// regions. The package keeps no reference to the buffer after the
// lookup returns, so the Hostent is only meaningful together with the
// buffer the caller still owns.
type Hostent struct {
	// NameOff is the offset of the NUL-terminated canonical name.
	NameOff int

	// AliasesOff is the offset of the alias list, which is
	// always empty in this package.
	AliasesOff int

	// Family is the address family of the record.
	Family Family

	// AddrLen is the width in bytes of each address entry.
	AddrLen int

	// AddrListOff is the offset of the zero-terminated address list.
	AddrListOff int
}

// CanonicalName returns the canonical host name from buf.
func (h *Hostent) CanonicalName(buf []byte) string {
	return cstring(buf, h.NameOff)
}

// Aliases returns the alias names from buf.
func (h *Hostent) Aliases(buf []byte) []string {
	var aliases []string
	for index := h.AliasesOff; getOffset(buf, index) != 0; index += ptrSize {
		aliases = append(aliases, cstring(buf, getOffset(buf, index)))
	}
	return aliases
}

// Addresses returns the address entries from buf.
//
// The returned slices alias the buffer; they are not copies.
func (h *Hostent) Addresses(buf []byte) [][]byte {
	var addrs [][]byte
	for index := h.AddrListOff; getOffset(buf, index) != 0; index += ptrSize {
		offset := getOffset(buf, index)
		addrs = append(addrs, buf[offset:offset+h.AddrLen])
	}
	return addrs
}

// cstring returns the NUL-terminated string at buf[offset:].
func cstring(buf []byte, offset int) string {
	end := bytes.IndexByte(buf[offset:], 0)
	runtimex.Assert(end >= 0)
	return string(buf[offset : offset+end])
}
