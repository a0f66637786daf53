// Package bridge wires the serial worker, the terminal controller, and
// the line editor together into the foreground loop from SPEC_FULL.md
// §4.G.
package bridge

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cskr/pubsub"
	"github.com/sirupsen/logrus"

	"github.com/open-mxs/mxslink/internal/serialio"
	"github.com/open-mxs/mxslink/internal/term"
)

// TopicData is the pubsub topic decoded data records are published
// under. A test harness or any other downstream consumer can Sub to it
// without the loop knowing about either.
const TopicData = "data"

// receiveTimeout bounds how long one iteration waits for a worker
// message before moving on to drain keys and repaint the bar.
const receiveTimeout = 10 * time.Millisecond

// Loop runs the foreground side of the bridge: reading serialio.Message
// values, driving the terminal controller and line editor, and
// publishing decoded records to broker under TopicData.
type Loop struct {
	portName string
	msgRx    <-chan serialio.Message
	textTx   chan<- string
	broker   *pubsub.PubSub

	ctrl   *term.Controller
	editor *term.Editor
	keys   *term.Reader
	errOut io.Writer

	log *logrus.Entry

	pending []byte
}

// New builds a Loop. broker is shared across reconnect attempts so
// subscribers don't need to re-Sub every time the outer loop in
// cmd/mxslink reconnects to a new port.
func New(
	portName string,
	msgRx <-chan serialio.Message,
	textTx chan<- string,
	broker *pubsub.PubSub,
	ctrl *term.Controller,
	editor *term.Editor,
	keys *term.Reader,
	errOut io.Writer,
	log *logrus.Entry,
) *Loop {
	return &Loop{
		portName: portName,
		msgRx:    msgRx,
		textTx:   textTx,
		broker:   broker,
		ctrl:     ctrl,
		editor:   editor,
		keys:     keys,
		errOut:   errOut,
		log:      log,
	}
}

// Run executes iterations until the worker reports Exiting, the context
// is cancelled, or the editor sees Ctrl-C. It always leaves the terminal
// in teardown state before returning when the editor requested quit —
// callers that want to keep running across reconnects should not tear
// down twice.
func (l *Loop) Run(ctx context.Context) error {
	for {
		done, err := l.iterate(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// iterate runs exactly one pass of spec.md §4.G's five steps.
func (l *Loop) iterate(ctx context.Context) (done bool, err error) {
	// Step 1: receive a worker message with a short timeout.
	select {
	case msg, ok := <-l.msgRx:
		if !ok {
			return true, nil
		}
		switch msg.Kind {
		case serialio.Print:
			l.pending = append(l.pending, msg.Text...)
		case serialio.ErrorMsg:
			fmt.Fprintf(l.errOut, "error: %s\n", msg.Err)
			l.flush()
		case serialio.DataMsg:
			l.broker.TryPub(msg.Record, TopicData)
		case serialio.Done, serialio.Started:
			l.pending = append(l.pending, []byte(fmt.Sprintf("[%s]\n", msg.Kind))...)
		case serialio.Exiting:
			l.pending = append(l.pending, []byte("[exiting]\n")...)
			l.flush()
			return true, nil
		}
	case <-time.After(receiveTimeout):
	case <-ctx.Done():
		return false, ctx.Err()
	}

	// Step 2: drain the line editor.
	l.editor.Drain(l.keys.Poll())
	if l.editor.Quit() {
		l.ctrl.Teardown()
		return true, nil
	}

	// Step 3: commit a completed line, if any.
	line := l.editor.Buffer()
	if n := len(line); n > 0 && line[n-1] == '\n' {
		l.pending = append(l.pending, []byte(line)...)
		select {
		case l.textTx <- line:
		case <-ctx.Done():
			return false, ctx.Err()
		}
		l.editor.Reset()
	}

	// Step 4: flush pending output to the scrolling region.
	l.flush()

	// Step 5: repaint the input bar.
	status := fmt.Sprintf("%s >> %s", l.portName, l.editor.Buffer())
	l.ctrl.PaintInputBar(status)

	return false, nil
}

// flush writes and clears pending output. Per spec.md §4.G's invariant,
// every call site that writes pending output is followed by a bar
// repaint within the same iteration, except the Exiting path, which
// flushes and ends the loop without repainting.
func (l *Loop) flush() {
	if len(l.pending) == 0 {
		return
	}
	l.ctrl.Write(l.pending)
	l.pending = l.pending[:0]
}
