/* Copyright 2019 Castlelore Studios, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package link provides text connections to game servers.
//
// A Conn wraps a Transport, which carries chunks of text with no
// framing, no retry, and no reconnection.  TCP is the primary carrier;
// WebSocket and MQTT carriers speak the same contract.
//
// A Conn is for single-owner, single-goroutine use.  Receive has
// last-available-chunk semantics: it drains everything the peer has
// delivered so far and returns the final chunk, which is what a
// polling script loop wants.
package link

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

var (
	// ErrClosed is returned when operating on a closed (or nil)
	// connection.
	ErrClosed = errors.New("connection closed")

	// ErrNoPending is returned by Receive when the peer has
	// delivered nothing.
	ErrNoPending = errors.New("no pending data")
)

// Transport carries text between a Conn and a peer.
type Transport interface {
	// Send writes one chunk of text.  No framing is added.
	Send(ctx context.Context, text string) error

	// Poll returns a chunk of text the peer has already
	// delivered, without blocking.  The second result is false
	// when nothing is pending.
	Poll() (string, bool, error)

	Close() error
}

// Conn is an opaque handle wrapping a Transport.
type Conn struct {
	transport Transport
	remote    string

	// pending holds polled chunks that HasPending consumed from
	// the transport but that Receive hasn't returned yet.
	pending []string

	closed bool
}

// Dial connects to the given address.
//
// An address with a scheme ("tcp://", "ws://", "wss://", "mqtt://")
// selects the carrier; a bare "host:port" is TCP.  Dialing is a
// one-shot blocking attempt with no retry.
func Dial(ctx context.Context, address string) (*Conn, error) {
	scheme := "tcp"
	if i := strings.Index(address, "://"); 0 <= i {
		scheme = address[:i]
	}

	var (
		t   Transport
		err error
	)
	switch scheme {
	case "tcp":
		t, err = dialTCP(ctx, strings.TrimPrefix(address, "tcp://"))
	case "ws", "wss":
		t, err = dialWebSocket(ctx, address)
	case "mqtt":
		t, err = dialMQTT(ctx, address)
	default:
		err = fmt.Errorf("unknown scheme %q", scheme)
	}

	if err != nil {
		log.Printf("link.Dial: %s: %s", address, err)
		return nil, err
	}

	return &Conn{
		transport: t,
		remote:    address,
	}, nil
}

// DialHostPort is Dial for a TCP host and port given separately.
func DialHostPort(ctx context.Context, host string, port int) (*Conn, error) {
	return Dial(ctx, fmt.Sprintf("%s:%d", host, port))
}

// Remote reports the address the Conn was dialed with.
func (c *Conn) Remote() string {
	if c == nil {
		return ""
	}
	return c.remote
}

func (c *Conn) usable() bool {
	return c != nil && !c.closed
}

// Send writes one chunk of text to the peer.
func (c *Conn) Send(ctx context.Context, text string) error {
	if !c.usable() {
		log.Printf("link.Send: connection closed")
		return ErrClosed
	}
	if err := c.transport.Send(ctx, text); err != nil {
		log.Printf("link.Send: %s: %s", c.remote, err)
		return err
	}
	return nil
}

// Receive drains everything the peer has delivered so far and returns
// the final chunk.  Returns ErrNoPending when nothing has arrived.
//
// There is no stream reassembly: a chunk is whatever one transport
// read produced.
func (c *Conn) Receive(ctx context.Context) (string, error) {
	if !c.usable() {
		log.Printf("link.Receive: connection closed")
		return "", ErrClosed
	}

	var (
		last string
		n    int
	)

	if 0 < len(c.pending) {
		last = c.pending[len(c.pending)-1]
		n = len(c.pending)
		c.pending = c.pending[:0]
	}

	for {
		chunk, have, err := c.transport.Poll()
		if err != nil {
			if n == 0 {
				log.Printf("link.Receive: %s: %s", c.remote, err)
				return "", err
			}
			break
		}
		if !have {
			break
		}
		last = chunk
		n++
	}

	if n == 0 {
		log.Printf("link.Receive: %s: no data to read", c.remote)
		return "", ErrNoPending
	}

	return last, nil
}

// HasPending reports whether the peer has delivered data.  Polled
// text is buffered for the next Receive, never dropped.
func (c *Conn) HasPending() bool {
	if !c.usable() {
		log.Printf("link.HasPending: connection closed")
		return false
	}
	if 0 < len(c.pending) {
		return true
	}
	chunk, have, err := c.transport.Poll()
	if err != nil || !have {
		return false
	}
	c.pending = append(c.pending, chunk)
	return true
}

// Close closes the connection.  A second Close returns ErrClosed.
func (c *Conn) Close() error {
	if !c.usable() {
		log.Printf("link.Close: connection closed")
		return ErrClosed
	}
	c.closed = true
	return c.transport.Close()
}
