// Package serialio owns the serial port handle and runs the read/write
// loop described in SPEC_FULL.md §4.D, reporting everything it observes —
// lifecycle bookends, skipped text, decoded records, and errors — as an
// ordered stream of typed Message values.
package serialio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/open-mxs/mxslink/internal/mxsproto"
)

// ReadBufferSize bounds the scratch buffer used for each individual port
// read and the initial capacity reserved for the rolling buffer.
const ReadBufferSize = 2000

// DefaultReadTimeout is the read timeout used for the reference device.
const DefaultReadTimeout = 500 * time.Millisecond

// Port is what the worker needs from an open serial handle. go.bug.st/serial's
// serial.Port satisfies it directly; tests inject an in-memory pipe instead,
// which is the substitution point SPEC_FULL.md §4.D calls out.
type Port interface {
	io.Reader
	io.Writer
	SetReadTimeout(t time.Duration) error
}

// MessageKind tags the variant carried by a Message.
type MessageKind int

const (
	Started MessageKind = iota
	Done
	Exiting
	Print
	DataMsg
	ErrorMsg
)

func (k MessageKind) String() string {
	switch k {
	case Started:
		return "started"
	case Done:
		return "done"
	case Exiting:
		return "exiting"
	case Print:
		return "print"
	case DataMsg:
		return "data"
	case ErrorMsg:
		return "error"
	default:
		return "unknown"
	}
}

// Message is the worker → controller tagged variant from SPEC_FULL.md §3.
// Exactly one of Text/Record/Err is meaningful, depending on Kind.
type Message struct {
	Kind   MessageKind
	Text   string
	Record mxsproto.Record
	Err    string
}

// Worker owns a Port and the text-in/message-out channels that connect it
// to the foreground loop.
type Worker struct {
	port   Port
	textRx <-chan string
	msgTx  chan<- Message

	direct bool
	log    *logrus.Entry

	buf []byte
}

// New constructs a Worker. direct, once set at construction, is never
// mutated afterward — the process-wide write-once discipline SPEC_FULL.md
// §9 describes, here scoped to a single Worker instance instead of a
// global.
func New(port Port, textRx <-chan string, msgTx chan<- Message, direct bool, log *logrus.Entry) *Worker {
	return &Worker{
		port:   port,
		textRx: textRx,
		msgTx:  msgTx,
		direct: direct,
		log:    log,
		buf:    make([]byte, 0, ReadBufferSize),
	}
}

// Run drives the worker loop until ctx is cancelled or an unrecoverable
// port error occurs. It always sends Started first and Exiting last,
// regardless of why it stopped.
func (w *Worker) Run(ctx context.Context) {
	if !w.send(ctx, Message{Kind: Started}) {
		return
	}
	defer w.send(context.Background(), Message{Kind: Exiting})

	scratch := make([]byte, ReadBufferSize)

	for {
		if ctx.Err() != nil {
			return
		}

		if !w.pollWrite(ctx) {
			return
		}

		n, err := w.port.Read(scratch)
		if err != nil {
			if isTimeout(err) {
				continue
			}
			w.send(ctx, Message{Kind: ErrorMsg, Err: fmt.Sprintf("serial read error: %v", err)})
			return
		}

		w.buf = append(w.buf, scratch[:n]...)

		if w.direct {
			if !w.send(ctx, Message{Kind: Print, Text: toUTF8(w.buf)}) {
				return
			}
			w.buf = w.buf[:0]
			continue
		}

		if !w.processBuffer(ctx) {
			return
		}
	}
}

// pollWrite performs the non-blocking dequeue-and-write half of one loop
// iteration. It returns false if a write error terminated the worker.
func (w *Worker) pollWrite(ctx context.Context) bool {
	select {
	case line, ok := <-w.textRx:
		if !ok {
			return true
		}
		if _, err := w.port.Write([]byte(line)); err != nil {
			w.send(ctx, Message{Kind: ErrorMsg, Err: fmt.Sprintf("serial write error: %v", err)})
			return false
		}
	default:
	}
	return true
}

// processBuffer runs the decoder over the rolling buffer, dispatches each
// packet, and drains what the decoder says is consumed. It returns false
// if the worker should stop (message channel gone away).
func (w *Worker) processBuffer(ctx context.Context) bool {
	res := mxsproto.FilterBuffer(w.buf)

	if len(res.SkippedData) > 0 {
		if !w.send(ctx, Message{Kind: Print, Text: toUTF8(res.SkippedData)}) {
			return false
		}
	}

	for _, pkt := range res.Packets {
		if !w.dispatch(ctx, pkt) {
			return false
		}
	}

	w.buf = w.buf[:copy(w.buf, w.buf[res.TrimIndex:])]

	return true
}

func (w *Worker) dispatch(ctx context.Context, pkt mxsproto.Packet) bool {
	switch pkt.Type {
	case mxsproto.Data:
		rec, err := mxsproto.ParseData(pkt.Data)
		if err != nil {
			return w.send(ctx, Message{Kind: ErrorMsg, Err: "couldn't convert byte stream into data"})
		}
		return w.send(ctx, Message{Kind: DataMsg, Record: rec})
	case mxsproto.End:
		return w.send(ctx, Message{Kind: Print, Text: "Received: End\n"})
	default:
		return w.send(ctx, Message{Kind: Print, Text: fmt.Sprintf("Received: %s\n", pkt.Type)})
	}
}

// send delivers msg, preferring ctx cancellation over blocking forever —
// the Go idiom standing in for "the receiver is gone" from SPEC_FULL.md §5.
func (w *Worker) send(ctx context.Context, msg Message) bool {
	select {
	case w.msgTx <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	if errors.As(err, &te) {
		return te.Timeout()
	}
	return false
}
