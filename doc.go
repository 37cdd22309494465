// SPDX-License-Identifier: GPL-3.0-or-later

// Package mdnsnss resolves host names and addresses over multicast DNS
// and serializes the results in the fixed-buffer hostent convention.
//
// The API is intentionally small and designed to back a name-service
// switch style host lookup.
//
// Each lookup writes its result into a caller-provided buffer and
// returns a [Hostent] describing the regions written into that buffer;
// a too-small buffer fails without being written to, so the caller can
// retry the whole call with a larger one.
package mdnsnss
