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

// Package shell is a line-oriented driver for links, scripts, and
// transcripts.
//
// Input lines are JSON Ops (or a few bare keywords); results render
// back as JSON, pretty JSON, or YAML.
package shell

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/castlelore/mudlink/history"
	"github.com/castlelore/mudlink/link"
	"github.com/castlelore/mudlink/script"
	"github.com/castlelore/mudlink/util"
)

// Service owns a table of live connections plus optional facilities.
type Service struct {
	sync.RWMutex

	conns map[string]*link.Conn

	// Runtime backs the eval op.  Optional.
	Runtime *script.Runtime

	// History, if not nil, records link traffic.
	History *history.Store
}

func NewService() *Service {
	return &Service{
		conns: make(map[string]*link.Conn),
	}
}

func (s *Service) add(c *link.Conn) string {
	s.Lock()
	id := util.Gensym(8)
	s.conns[id] = c
	s.Unlock()
	return id
}

func (s *Service) get(id string) (*link.Conn, error) {
	s.RLock()
	c, have := s.conns[id]
	s.RUnlock()
	if !have {
		return nil, fmt.Errorf(`unknown connection "%s"`, id)
	}
	return c, nil
}

func (s *Service) remove(id string) {
	s.Lock()
	delete(s.conns, id)
	s.Unlock()
}

// CloseAll closes every live connection.  For shutdown.
func (s *Service) CloseAll() {
	s.Lock()
	for id, c := range s.conns {
		if err := c.Close(); err != nil && err != link.ErrClosed {
			log.Printf("Service.CloseAll %s: %s", id, err)
		}
		delete(s.conns, id)
	}
	s.Unlock()
}

func (s *Service) record(ctx context.Context, id string, direction history.Direction, text string) {
	if s.History == nil {
		return
	}
	entry := &history.Entry{
		Direction: direction,
		Text:      text,
	}
	if err := s.History.Append(ctx, id, entry); err != nil {
		log.Printf("Service.record %s: %s", id, err)
	}
}

// Op is a service operation.
//
// Only one of the operation fields should have value.
type Op struct {
	Connect    *ConnectOp    `json:"connect,omitempty" yaml:"connect,omitempty"`
	Send       *SendOp       `json:"send,omitempty" yaml:"send,omitempty"`
	Recv       *RecvOp       `json:"recv,omitempty" yaml:"recv,omitempty"`
	Pending    *PendingOp    `json:"pending,omitempty" yaml:"pending,omitempty"`
	Close      *CloseOp      `json:"close,omitempty" yaml:"close,omitempty"`
	Eval       *EvalOp       `json:"eval,omitempty" yaml:"eval,omitempty"`
	Transcript *TranscriptOp `json:"transcript,omitempty" yaml:"transcript,omitempty"`

	// Error will hold an error (if any) that results from
	// processing this operation.
	Error error `json:"-" yaml:"-"`

	// Err will hold a string representation of an error (if any)
	// that results from processing this operation.
	Err string `json:"err,omitempty" yaml:",omitempty"`
}

// erred is a utility function to return values to assign to operation
// Error and Err fields.
func erred(err error) (error, string) {
	if err == nil {
		return nil, ""
	}
	return err, err.Error()
}

// Do executes the operation, writing results back into the
// operation's fields.
func (op *Op) Do(ctx context.Context, s *Service) error {
	switch {
	case op.Connect != nil:
		op.Error, op.Err = erred(op.Connect.do(ctx, s))
	case op.Send != nil:
		op.Error, op.Err = erred(op.Send.do(ctx, s))
	case op.Recv != nil:
		op.Error, op.Err = erred(op.Recv.do(ctx, s))
	case op.Pending != nil:
		op.Error, op.Err = erred(op.Pending.do(ctx, s))
	case op.Close != nil:
		op.Error, op.Err = erred(op.Close.do(ctx, s))
	case op.Eval != nil:
		op.Error, op.Err = erred(op.Eval.do(ctx, s))
	case op.Transcript != nil:
		op.Error, op.Err = erred(op.Transcript.do(ctx, s))
	default:
		op.Error, op.Err = erred(fmt.Errorf("empty op"))
	}
	return op.Error
}

// ConnectOp dials a server and files the connection under a generated
// id.
type ConnectOp struct {
	// Address is "host:port" or a ws://, wss://, or mqtt:// URL.
	Address string `json:"address,omitempty" yaml:"address,omitempty"`

	// IP and Port are an alternative to Address.
	IP   string `json:"ip,omitempty" yaml:"ip,omitempty"`
	Port int    `json:"port,omitempty" yaml:"port,omitempty"`

	// Id is the generated connection id (a result).
	Id string `json:"id,omitempty" yaml:"id,omitempty"`

	OK bool `json:"ok" yaml:"ok"`
}

func (op *ConnectOp) do(ctx context.Context, s *Service) error {
	address := op.Address
	if address == "" {
		if op.IP == "" {
			return fmt.Errorf("connect needs an address")
		}
		address = fmt.Sprintf("%s:%d", op.IP, op.Port)
	}

	c, err := link.Dial(ctx, address)
	if err != nil {
		return err
	}

	op.Id = s.add(c)
	op.OK = true
	return nil
}

// SendOp writes one chunk of text.
type SendOp struct {
	Id   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`

	OK bool `json:"ok" yaml:"ok"`
}

func (op *SendOp) do(ctx context.Context, s *Service) error {
	c, err := s.get(op.Id)
	if err != nil {
		return err
	}
	if err := c.Send(ctx, op.Text); err != nil {
		return err
	}
	s.record(ctx, op.Id, history.Sent, op.Text)
	op.OK = true
	return nil
}

// RecvOp drains delivered text and reports the last chunk.  OK is
// false (with no error) when nothing was pending.
type RecvOp struct {
	Id string `json:"id" yaml:"id"`

	Text string `json:"text,omitempty" yaml:"text,omitempty"`
	OK   bool   `json:"ok" yaml:"ok"`
}

func (op *RecvOp) do(ctx context.Context, s *Service) error {
	c, err := s.get(op.Id)
	if err != nil {
		return err
	}
	text, err := c.Receive(ctx)
	if err == link.ErrNoPending {
		return nil
	}
	if err != nil {
		return err
	}
	s.record(ctx, op.Id, history.Received, text)
	op.Text = text
	op.OK = true
	return nil
}

// PendingOp polls for delivered data without consuming it.
type PendingOp struct {
	Id string `json:"id" yaml:"id"`

	Pending bool `json:"pending" yaml:"pending"`
}

func (op *PendingOp) do(ctx context.Context, s *Service) error {
	c, err := s.get(op.Id)
	if err != nil {
		return err
	}
	op.Pending = c.HasPending()
	return nil
}

// CloseOp closes a connection and drops it from the table.
type CloseOp struct {
	Id string `json:"id" yaml:"id"`

	OK bool `json:"ok" yaml:"ok"`
}

func (op *CloseOp) do(ctx context.Context, s *Service) error {
	c, err := s.get(op.Id)
	if err != nil {
		return err
	}
	s.remove(op.Id)
	if err := c.Close(); err != nil {
		return err
	}
	op.OK = true
	return nil
}

// EvalOp runs script source in the service's Runtime.
type EvalOp struct {
	// Source is a code string or a map with "code" and
	// "requires".
	Source interface{} `json:"source" yaml:"source"`

	// Bindings are passed to the script at _.bindings.
	Bindings map[string]interface{} `json:"bindings,omitempty" yaml:"bindings,omitempty"`

	Result *script.Execution `json:"result,omitempty" yaml:"result,omitempty"`
}

func (op *EvalOp) do(ctx context.Context, s *Service) error {
	r := s.Runtime
	if r == nil {
		return fmt.Errorf("no script runtime")
	}
	exe, err := r.Exec(ctx, op.Bindings, nil, op.Source, nil)
	if err != nil {
		return err
	}
	op.Result = exe
	return nil
}

// TranscriptOp dumps the recorded history for a connection id.
type TranscriptOp struct {
	Id string `json:"id" yaml:"id"`

	Entries []*history.Entry `json:"entries,omitempty" yaml:"entries,omitempty"`
}

func (op *TranscriptOp) do(ctx context.Context, s *Service) error {
	if s.History == nil {
		return fmt.Errorf("no history store")
	}
	entries, err := s.History.Transcript(ctx, op.Id)
	if err != nil {
		return err
	}
	op.Entries = entries
	return nil
}
