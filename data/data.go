// SPDX-License-Identifier: Unlicense OR MIT

/*
Package data contains selection payloads for clipboard and primary
selection transfers.

A source advertises the MIME types it can produce and opens a reader
for one of them on demand. Sources stay valid until the owning seat
replaces them; a transfer in flight keeps its reader alive
independently of the source being replaced.
*/
package data

import (
	"bytes"
	"fmt"
	"io"
)

// Common MIME types for selection payloads.
const (
	MimeText    = "text/plain"
	MimeTextUTF = "text/plain;charset=utf-8"
	MimeURIList = "text/uri-list"
)

// A Source produces selection data in one or more MIME types.
type Source interface {
	// Mimes returns the types the source offers, preferred first.
	Mimes() []string
	// Open starts a transfer in the given MIME type. The caller
	// closes the reader when the transfer completes or fails.
	Open(mime string) (io.ReadCloser, error)
}

// Bytes is a Source backed by an in-memory payload.
type Bytes struct {
	mimes   []string
	payload []byte
}

// NewBytes returns a source offering payload under the given MIME
// types, or MimeTextUTF if none are given.
func NewBytes(payload []byte, mimes ...string) *Bytes {
	if len(mimes) == 0 {
		mimes = []string{MimeTextUTF}
	}
	return &Bytes{mimes: mimes, payload: payload}
}

// Mimes implements Source.
func (b *Bytes) Mimes() []string {
	return b.mimes
}

// Open implements Source.
func (b *Bytes) Open(mime string) (io.ReadCloser, error) {
	for _, m := range b.mimes {
		if m == mime {
			return io.NopCloser(bytes.NewReader(b.payload)), nil
		}
	}
	return nil, fmt.Errorf("data: source does not offer %q", mime)
}

// Func is a Source that produces its payload when opened, deferring
// the read until a client asks.
type Func struct {
	mimes []string
	open  func(mime string) (io.ReadCloser, error)
}

// NewFunc returns a source that calls open for each transfer.
func NewFunc(open func(mime string) (io.ReadCloser, error), mimes ...string) *Func {
	if len(mimes) == 0 {
		mimes = []string{MimeTextUTF}
	}
	return &Func{mimes: mimes, open: open}
}

// Mimes implements Source.
func (f *Func) Mimes() []string {
	return f.mimes
}

// Open implements Source.
func (f *Func) Open(mime string) (io.ReadCloser, error) {
	for _, m := range f.mimes {
		if m == mime {
			return f.open(mime)
		}
	}
	return nil, fmt.Errorf("data: source does not offer %q", mime)
}
