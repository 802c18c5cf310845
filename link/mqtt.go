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
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/castlelore/mudlink/util"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTQuiesce is the disconnection quiescence in milliseconds.
var MQTTQuiesce uint = 100

// mqttTransport carries text over a broker.
//
// An address "mqtt://host:port/some/topic" publishes out-bound text
// to "some/topic/up" and subscribes to "some/topic/down".
type mqttTransport struct {
	client mqtt.Client
	up     string
	in     chan string
}

func dialMQTT(ctx context.Context, address string) (Transport, error) {
	u, err := url.Parse(address)
	if err != nil {
		return nil, err
	}
	topic := strings.Trim(u.Path, "/")
	if topic == "" {
		return nil, fmt.Errorf("no topic in %q", address)
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker("tcp://" + u.Host)
	opts.SetClientID("mudlink-" + util.Gensym(8))
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	t := &mqttTransport{
		client: client,
		up:     topic + "/up",
		in:     make(chan string, 64),
	}

	handler := func(_ mqtt.Client, m mqtt.Message) {
		select {
		case t.in <- string(m.Payload()):
		case <-time.After(time.Second):
			// A stalled owner loses brokered messages rather
			// than wedging the broker callback.
		}
	}

	if token := t.client.Subscribe(topic+"/down", 0, handler); token.Wait() && token.Error() != nil {
		client.Disconnect(MQTTQuiesce)
		return nil, token.Error()
	}

	return t, nil
}

func (t *mqttTransport) Send(ctx context.Context, text string) error {
	token := t.client.Publish(t.up, 0, false, text)
	if deadline, have := ctx.Deadline(); have {
		if !token.WaitTimeout(time.Until(deadline)) {
			return context.DeadlineExceeded
		}
	} else {
		token.Wait()
	}
	return token.Error()
}

func (t *mqttTransport) Poll() (string, bool, error) {
	if !t.client.IsConnected() {
		select {
		case message := <-t.in:
			return message, true, nil
		default:
			return "", false, ErrClosed
		}
	}
	select {
	case message := <-t.in:
		return message, true, nil
	default:
		return "", false, nil
	}
}

func (t *mqttTransport) Close() error {
	t.client.Disconnect(MQTTQuiesce)
	return nil
}
