package serialio

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/open-mxs/mxslink/internal/mxsproto"
)

// fakePort is an in-memory Port: Read drains a preloaded queue of byte
// chunks (each Read call returns one chunk, or a timeout error once the
// queue is empty), Write records everything it was sent.
type fakePort struct {
	mu      sync.Mutex
	chunks  [][]byte
	written [][]byte
	closed  bool
}

type timeoutError struct{}

func (timeoutError) Error() string { return "i/o timeout" }
func (timeoutError) Timeout() bool { return true }

func (p *fakePort) Read(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.chunks) == 0 {
		return 0, timeoutError{}
	}
	chunk := p.chunks[0]
	p.chunks = p.chunks[1:]
	n := copy(buf, chunk)
	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := append([]byte{}, b...)
	p.written = append(p.written, cp)
	return len(b), nil
}

func (p *fakePort) SetReadTimeout(time.Duration) error { return nil }

func (p *fakePort) push(chunks ...[]byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chunks = append(p.chunks, chunks...)
}

func collect(t *testing.T, msgTx <-chan Message, n int, timeout time.Duration) []Message {
	t.Helper()
	var got []Message
	deadline := time.After(timeout)
	for len(got) < n {
		select {
		case m := <-msgTx:
			got = append(got, m)
		case <-deadline:
			t.Fatalf("timed out waiting for %d messages, got %d: %+v", n, len(got), got)
		}
	}
	return got
}

func newTestLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log.WithField("test", true)
}

func TestWorkerStartedThenExitingBookends(t *testing.T) {
	port := &fakePort{}
	textTx := make(chan string)
	msgRx := make(chan Message, 16)

	w := New(port, textTx, msgRx, false, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	first := collect(t, msgRx, 1, time.Second)
	require.Equal(t, Started, first[0].Kind)

	cancel()
	<-done

	// Drain whatever else arrived; the last message must be Exiting.
	var last Message
	for {
		select {
		case m := <-msgRx:
			last = m
		default:
			require.Equal(t, Exiting, last.Kind)
			return
		}
	}
}

func TestWorkerScenarioS1PureText(t *testing.T) {
	port := &fakePort{}
	port.push([]byte("Hello, world!\n"))

	textTx := make(chan string)
	msgRx := make(chan Message, 16)
	w := New(port, textTx, msgRx, false, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	msgs := collect(t, msgRx, 2, time.Second)
	require.Equal(t, Started, msgs[0].Kind)
	require.Equal(t, Print, msgs[1].Kind)
	// The decoder holds back the last MarkerLen-1 bytes (here the "\n") in
	// case a marker is split across reads; they surface after the next read.
	require.Equal(t, "Hello, world!", msgs[1].Text)
}

func TestWorkerScenarioS2SingleDataFrame(t *testing.T) {
	port := &fakePort{}
	port.push([]byte{0xAA, 0x55, 0x04, 0x06, 0x01, 0x00, 0x02, 0x00, 0x03, 0x00})

	textTx := make(chan string)
	msgRx := make(chan Message, 16)
	w := New(port, textTx, msgRx, false, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	msgs := collect(t, msgRx, 2, time.Second)
	require.Equal(t, Started, msgs[0].Kind)
	require.Equal(t, DataMsg, msgs[1].Kind)
	require.Equal(t, mxsproto.Record{X: 1, Y: 2, Z: 3}, msgs[1].Record)
}

func TestWorkerScenarioS3Interleaved(t *testing.T) {
	port := &fakePort{}
	frame := []byte{0xAA, 0x55, 0x04, 0x06, 0x01, 0x00, 0x02, 0x00, 0x03, 0x00}
	buf := append([]byte("ABC"), frame...)
	buf = append(buf, []byte("XYZ")...)
	// Bytes after the last frame stay in the rolling buffer until the next
	// read, so a second chunk is what releases "XYZ" as skipped text.
	port.push(buf, []byte("\n"))

	textTx := make(chan string)
	msgRx := make(chan Message, 16)
	w := New(port, textTx, msgRx, false, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	msgs := collect(t, msgRx, 4, time.Second)
	require.Equal(t, Started, msgs[0].Kind)
	require.Equal(t, Print, msgs[1].Kind)
	require.Equal(t, "ABC", msgs[1].Text)
	require.Equal(t, DataMsg, msgs[2].Kind)
	require.Equal(t, mxsproto.Record{X: 1, Y: 2, Z: 3}, msgs[2].Record)
	require.Equal(t, Print, msgs[3].Kind)
	require.Equal(t, "XYZ", msgs[3].Text)
}

func TestWorkerScenarioS5SplitRead(t *testing.T) {
	port := &fakePort{}
	full := []byte{0xAA, 0x55, 0x04, 0x06, 0x01, 0x00, 0x02, 0x00, 0x03, 0x00}
	for _, b := range full {
		port.push([]byte{b})
	}

	textTx := make(chan string)
	msgRx := make(chan Message, 16)
	w := New(port, textTx, msgRx, false, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	msgs := collect(t, msgRx, 2, 2*time.Second)
	require.Equal(t, Started, msgs[0].Kind)
	require.Equal(t, DataMsg, msgs[1].Kind)
	require.Equal(t, mxsproto.Record{X: 1, Y: 2, Z: 3}, msgs[1].Record)
}

func TestWorkerDirectModeEmitsRawBytes(t *testing.T) {
	port := &fakePort{}
	port.push([]byte{0xAA, 0x55, 0x04, 0x06, 0x01, 0x00, 0x02, 0x00, 0x03, 0x00})

	textTx := make(chan string)
	msgRx := make(chan Message, 16)
	w := New(port, textTx, msgRx, true, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	msgs := collect(t, msgRx, 2, time.Second)
	require.Equal(t, Started, msgs[0].Kind)
	require.Equal(t, Print, msgs[1].Kind)
	// Lossy UTF-8: the lone 0xAA byte becomes the 3-byte U+FFFD, so the 10
	// raw bytes render as a 12-byte string.
	require.Len(t, msgs[1].Text, 12)
}

func TestWorkerWriteErrorTerminates(t *testing.T) {
	port := &erroringWritePort{}
	textTx := make(chan string, 1)
	msgRx := make(chan Message, 16)
	w := New(port, textTx, msgRx, false, newTestLogger())

	textTx <- "ping\n"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	msgs := collect(t, msgRx, 3, time.Second)
	require.Equal(t, Started, msgs[0].Kind)
	require.Equal(t, ErrorMsg, msgs[1].Kind)
	require.Contains(t, msgs[1].Err, "serial write error")
	require.Equal(t, Exiting, msgs[2].Kind)

	<-done
}

type erroringWritePort struct{}

func (erroringWritePort) Read([]byte) (int, error)          { return 0, timeoutError{} }
func (erroringWritePort) Write([]byte) (int, error)          { return 0, errors.New("boom") }
func (erroringWritePort) SetReadTimeout(time.Duration) error { return nil }
