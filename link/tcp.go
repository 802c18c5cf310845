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
	"net"
	"os"
	"time"
)

// PollWindow is how long a TCP poll waits for data already in flight.
// Zero makes polls strictly non-blocking.
var PollWindow = 10 * time.Millisecond

// readLimit is the most text one Poll will return.
const readLimit = 64 * 1024

type tcpTransport struct {
	conn net.Conn
	buf  []byte
}

func dialTCP(ctx context.Context, address string) (Transport, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, err
	}
	return &tcpTransport{
		conn: conn,
		buf:  make([]byte, readLimit),
	}, nil
}

func (t *tcpTransport) Send(ctx context.Context, text string) error {
	if deadline, have := ctx.Deadline(); have {
		t.conn.SetWriteDeadline(deadline)
		defer t.conn.SetWriteDeadline(time.Time{})
	}
	_, err := t.conn.Write([]byte(text))
	return err
}

func (t *tcpTransport) Poll() (string, bool, error) {
	t.conn.SetReadDeadline(time.Now().Add(PollWindow))
	n, err := t.conn.Read(t.buf)
	t.conn.SetReadDeadline(time.Time{})

	if 0 < n {
		// If err is also set, the next Poll will see it again.
		return string(t.buf[:n]), true, nil
	}
	if err != nil {
		if netErr, is := err.(net.Error); is && netErr.Timeout() {
			return "", false, nil
		}
		if os.IsTimeout(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return "", false, nil
}

func (t *tcpTransport) Close() error {
	return t.conn.Close()
}
