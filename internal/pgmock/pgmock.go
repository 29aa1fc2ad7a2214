// Package pgmock provides the ability to script a fake wire-protocol
// backend, so the connection state machine can be exercised without a live
// server.
package pgmock

import (
	"fmt"
	"io"
	"reflect"

	"github.com/kanzidb/pgwire/wireproto"
)

type Step interface {
	Step(*wireproto.Backend) error
}

// Script is itself a Step, so scripts can nest.
type Script struct {
	Steps []Step
}

func (s *Script) Run(backend *wireproto.Backend) error {
	for _, step := range s.Steps {
		if err := step.Step(backend); err != nil {
			return err
		}
	}
	return nil
}

func (s *Script) Step(backend *wireproto.Backend) error {
	return s.Run(backend)
}

type expectMessageStep struct {
	want wireproto.FrontendMessage
	any  bool
}

func (e *expectMessageStep) Step(backend *wireproto.Backend) error {
	msg, err := backend.Receive()
	if err != nil {
		return err
	}

	if e.any && reflect.TypeOf(msg) == reflect.TypeOf(e.want) {
		return nil
	}

	if !reflect.DeepEqual(msg, e.want) {
		return fmt.Errorf("msg => %#v, e.want => %#v", msg, e.want)
	}
	return nil
}

type expectStartupMessageStep struct {
	want *wireproto.StartupMessage
	any  bool
}

func (e *expectStartupMessageStep) Step(backend *wireproto.Backend) error {
	msg, err := backend.ReceiveStartupMessage()
	if err != nil {
		return err
	}
	if e.any {
		return nil
	}
	if !reflect.DeepEqual(msg, e.want) {
		return fmt.Errorf("msg => %#v, e.want => %#v", msg, e.want)
	}
	return nil
}

// ExpectMessage requires the next frontend message to equal want exactly.
func ExpectMessage(want wireproto.FrontendMessage) Step {
	return expectMessage(want, false)
}

// ExpectAnyMessage requires only that the next frontend message has the
// same type as want, ignoring its field values.
func ExpectAnyMessage(want wireproto.FrontendMessage) Step {
	return expectMessage(want, true)
}

func expectMessage(want wireproto.FrontendMessage, any bool) Step {
	if want, ok := want.(*wireproto.StartupMessage); ok {
		return &expectStartupMessageStep{want: want, any: any}
	}
	return &expectMessageStep{want: want, any: any}
}

type sendMessageStep struct {
	msg wireproto.BackendMessage
}

func (e *sendMessageStep) Step(backend *wireproto.Backend) error {
	if err := backend.Send(e.msg); err != nil {
		return err
	}
	return backend.Flush()
}

// SendMessage enqueues a backend message to be written (and flushed)
// immediately when this step runs.
func SendMessage(msg wireproto.BackendMessage) Step {
	return &sendMessageStep{msg: msg}
}

type waitForCloseMessageStep struct{}

func (e *waitForCloseMessageStep) Step(backend *wireproto.Backend) error {
	for {
		msg, err := backend.Receive()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		if _, ok := msg.(*wireproto.Terminate); ok {
			return nil
		}
	}
}

// WaitForClose absorbs frontend messages until Terminate or EOF.
func WaitForClose() Step {
	return &waitForCloseMessageStep{}
}

// AcceptUnauthenticatedConnRequestSteps is the common startup handshake for
// tests that don't care about authentication: accept any StartupMessage and
// immediately report AuthenticationOk.
func AcceptUnauthenticatedConnRequestSteps() []Step {
	return []Step{
		ExpectAnyMessage(&wireproto.StartupMessage{ProtocolVersion: wireproto.ProtocolVersionNumber, Parameters: map[string]string{}}),
		SendMessage(&wireproto.AuthenticationOk{}),
		SendMessage(&wireproto.BackendKeyData{ProcessID: 1, SecretKey: 1}),
		SendMessage(&wireproto.ReadyForQuery{TxStatus: 'I'}),
	}
}
