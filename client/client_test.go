// SPDX-License-Identifier: Unlicense OR MIT

package client

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type recordConn struct {
	flushed chan struct{}
	err     error
}

func (c *recordConn) Flush() error {
	c.flushed <- struct{}{}
	return c.err
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestScheduleFlushReachesConn(t *testing.T) {
	conn := &recordConn{flushed: make(chan struct{}, 4)}
	c := New(1, "test", conn, testLogger())
	defer c.Close()
	c.ScheduleFlush()
	select {
	case <-conn.flushed:
	case <-time.After(time.Second):
		t.Fatal("flush never reached the connection")
	}
}

func TestFlushErrorDoesNotStopWriter(t *testing.T) {
	conn := &recordConn{flushed: make(chan struct{}, 4), err: errors.New("broken pipe")}
	c := New(2, "test", conn, testLogger())
	defer c.Close()
	c.ScheduleFlush()
	select {
	case <-conn.flushed:
	case <-time.After(time.Second):
		t.Fatal("first flush never happened")
	}
	conn.err = nil
	c.ScheduleFlush()
	select {
	case <-conn.flushed:
	case <-time.After(time.Second):
		t.Fatal("writer stopped after a flush error")
	}
}

func TestNilConn(t *testing.T) {
	c := New(3, "windowless", nil, testLogger())
	c.ScheduleFlush()
	c.Close()
	c.Close()
}

func TestCloseIdempotent(t *testing.T) {
	conn := &recordConn{flushed: make(chan struct{}, 4)}
	c := New(4, "test", conn, testLogger())
	c.Close()
	c.Close()
	c.ScheduleFlush()
}
