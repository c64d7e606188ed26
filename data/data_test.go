// SPDX-License-Identifier: Unlicense OR MIT

package data

import (
	"io"
	"strings"
	"testing"
)

func TestBytesSource(t *testing.T) {
	src := NewBytes([]byte("hello"), MimeTextUTF, MimeText)
	if got := src.Mimes(); len(got) != 2 || got[0] != MimeTextUTF {
		t.Fatalf("mimes = %v", got)
	}
	r, err := src.Open(MimeText)
	if err != nil {
		t.Fatal(err)
	}
	payload, err := io.ReadAll(r)
	r.Close()
	if err != nil || string(payload) != "hello" {
		t.Fatalf("payload = %q, err %v", payload, err)
	}
	if _, err := src.Open(MimeURIList); err == nil {
		t.Error("open of an unoffered type succeeded")
	}
}

func TestBytesDefaultMime(t *testing.T) {
	src := NewBytes([]byte("x"))
	if got := src.Mimes(); len(got) != 1 || got[0] != MimeTextUTF {
		t.Fatalf("mimes = %v", got)
	}
}

func TestFuncDefersOpen(t *testing.T) {
	opened := 0
	src := NewFunc(func(mime string) (io.ReadCloser, error) {
		opened++
		return io.NopCloser(strings.NewReader(mime)), nil
	}, MimeText)
	if opened != 0 {
		t.Fatal("source opened before a transfer started")
	}
	r, err := src.Open(MimeText)
	if err != nil {
		t.Fatal(err)
	}
	payload, _ := io.ReadAll(r)
	r.Close()
	if opened != 1 || string(payload) != MimeText {
		t.Fatalf("opened %d times, payload %q", opened, payload)
	}
	if _, err := src.Open(MimeTextUTF); err == nil {
		t.Error("open of an unoffered type succeeded")
	}
	if opened != 1 {
		t.Error("rejecting an unoffered type still invoked the open func")
	}
}
