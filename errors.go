// SPDX-License-Identifier: GPL-3.0-or-later

package mdnsnss

import "errors"

// Predefined lookup errors.
var (
	// ErrUnsupportedFamily means the requested address family is
	// not served by the [*Client].
	ErrUnsupportedFamily = errors.New("mdnsnss: unsupported address family")

	// ErrAddressLength means the address length does not match the
	// requested family.
	ErrAddressLength = errors.New("mdnsnss: address length does not match family")

	// ErrBufferTooSmall means the caller buffer cannot hold the
	// serialized record.
	//
	// The buffer has not been written to: retrying the whole lookup
	// with a larger buffer is the expected recovery.
	ErrBufferTooSmall = errors.New("mdnsnss: buffer too small")

	// ErrNotFound means the query completed without a usable result.
	ErrNotFound = errors.New("mdnsnss: host not found")

	// ErrUnavailable means the query transport could not be opened.
	ErrUnavailable = errors.New("mdnsnss: service unavailable")
)

// Status is the coarse lookup status of the host-lookup convention.
type Status int

// Status values.
const (
	// StatusSuccess means the record was serialized into the buffer.
	StatusSuccess Status = iota

	// StatusTryAgain means the caller should retry the lookup with
	// a larger buffer.
	StatusTryAgain

	// StatusNotFound means the host does not resolve; do not retry.
	StatusNotFound

	// StatusUnavailable means the lookup could not run; do not retry.
	StatusUnavailable
)

// StatusOf maps a lookup error to its [Status].
//
// Invalid-input and transport failures both map to
// [StatusUnavailable]; callers only see the coarse status.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrBufferTooSmall):
		return StatusTryAgain
	case errors.Is(err, ErrNotFound):
		return StatusNotFound
	default:
		return StatusUnavailable
	}
}

// Recoverable reports whether retrying the lookup with a larger
// buffer can succeed.
func Recoverable(err error) bool {
	return errors.Is(err, ErrBufferTooSmall)
}
