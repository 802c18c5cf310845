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

package link

import (
	"context"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// wsTransport carries text messages over a WebSocket.  A reader
// goroutine queues in-bound messages so that Poll never blocks.
type wsTransport struct {
	c  *websocket.Conn
	in chan string

	mu  sync.Mutex
	err error
}

func dialWebSocket(ctx context.Context, address string) (Transport, error) {
	u, err := url.Parse(address)
	if err != nil {
		return nil, err
	}

	c, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}

	t := &wsTransport{
		c:  c,
		in: make(chan string, 64),
	}

	go func() {
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				t.mu.Lock()
				t.err = err
				t.mu.Unlock()
				close(t.in)
				return
			}
			t.in <- string(message)
		}
	}()

	return t, nil
}

func (t *wsTransport) failure() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err == nil {
		return ErrClosed
	}
	return t.err
}

func (t *wsTransport) Send(ctx context.Context, text string) error {
	if deadline, have := ctx.Deadline(); have {
		t.c.SetWriteDeadline(deadline)
	}
	return t.c.WriteMessage(websocket.TextMessage, []byte(text))
}

func (t *wsTransport) Poll() (string, bool, error) {
	select {
	case message, open := <-t.in:
		if !open {
			return "", false, t.failure()
		}
		return message, true, nil
	default:
		return "", false, nil
	}
}

func (t *wsTransport) Close() error {
	return t.c.Close()
}
