// SPDX-License-Identifier: Unlicense OR MIT

/*
Package client tracks the identity of connected clients and the
asynchronous flush boundary between the compositor core and each
client connection.

The core never performs I/O. Protocol bindings buffer outgoing events
on their connection and call ScheduleFlush; one writer goroutine per
client performs the actual flush. Flush failures are logged and do not
feed back into compositor state.
*/
package client

import (
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
)

// An ID identifies a client for the lifetime of its connection.
type ID uint64

// A Conn is the outbound half of a client connection. Flush writes
// buffered protocol data and may block on I/O.
type Conn interface {
	Flush() error
}

// A Client is one connected client: identity, logging scope and flush
// machinery.
type Client struct {
	id   ID
	name string
	conn Conn
	log  *logrus.Entry

	flush chan struct{}
	done  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

// New returns a Client flushing to conn. A nil conn discards flushes;
// tests and demo clients use that.
func New(id ID, name string, conn Conn, log *logrus.Logger) *Client {
	c := &Client{
		id:   id,
		name: name,
		conn: conn,
		log:  log.WithFields(logrus.Fields{"client": id, "name": name}),
		done: make(chan struct{}),
	}
	if conn != nil {
		c.flush = make(chan struct{}, 1)
		c.wg.Add(1)
		go c.flusher()
	}
	return c
}

// ID returns the client's identity.
func (c *Client) ID() ID {
	return c.id
}

// Name returns the client's display name.
func (c *Client) Name() string {
	return c.name
}

func (c *Client) String() string {
	return c.name + "#" + strconv.FormatUint(uint64(c.id), 10)
}

// ScheduleFlush requests an asynchronous flush of the connection. It
// never blocks; a request made while one is pending coalesces into it.
func (c *Client) ScheduleFlush() {
	if c.flush == nil {
		return
	}
	select {
	case c.flush <- struct{}{}:
	default:
	}
}

func (c *Client) flusher() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			// One final flush for anything scheduled before Close.
			select {
			case <-c.flush:
				c.doFlush()
			default:
			}
			return
		case <-c.flush:
			c.doFlush()
		}
	}
}

func (c *Client) doFlush() {
	if err := c.conn.Flush(); err != nil {
		c.log.WithError(err).Warn("client flush failed")
	}
}

// Close stops the flush machinery. It is idempotent and waits for the
// writer to finish.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
	})
	c.wg.Wait()
}
