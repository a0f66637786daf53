// Command mxslink is an interactive terminal bridge to a serial device
// speaking a mix of free-form text and MXS-framed binary data.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cskr/pubsub"
	"github.com/sirupsen/logrus"

	"github.com/open-mxs/mxslink/internal/bridge"
	"github.com/open-mxs/mxslink/internal/cli"
	"github.com/open-mxs/mxslink/internal/portselect"
	"github.com/open-mxs/mxslink/internal/serialio"
	"github.com/open-mxs/mxslink/internal/term"
)

func main() {
	opts := cli.Parse(os.Args[1:])

	log := logrus.New()
	entry := log.WithField("component", "mxslink")

	ctrl := term.NewController(os.Stdout, term.StdinFD())
	if err := ctrl.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "mxslink: %v\n", err)
		os.Exit(1)
	}

	// Step 1 of spec.md §4.E's init sequence: Ctrl-C tears down the
	// terminal and exits 0. The editor also detects Ctrl-C on its own
	// key-drain path; this handler is the belt-and-suspenders path for
	// signals delivered while the foreground loop isn't between ticks.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		ctrl.Teardown()
		fmt.Println("\nExiting...")
		os.Exit(0)
	}()

	broker := pubsub.New(32)
	defer broker.Shutdown()

	runOuterLoop(opts, entry, ctrl, broker)
}

// runOuterLoop implements spec.md §4.H's reconnect loop: pick a port,
// open it with retry, run the bridge until it returns, then do it all
// again.
func runOuterLoop(opts cli.CLI, log *logrus.Entry, ctrl *term.Controller, broker *pubsub.PubSub) {
	for {
		names, err := serialio.ListPortNames()
		if err != nil {
			log.WithField("error", err).Warn("Failed to list serial ports, retrying.")
			time.Sleep(serialio.OpenRetryInterval)
			continue
		}

		portName, ok := portselect.Choose(names, opts.Port)
		if !ok {
			log.Warn("Searching for port...")
			time.Sleep(serialio.OpenRetryInterval)
			continue
		}

		port, err := serialio.OpenWithRetry(portName, log)
		if err != nil {
			log.WithField("error", err).Warn("Failed to open serial port, restarting search.")
			continue
		}

		if err := runSession(opts, log, ctrl, broker, portName, port); err != nil {
			log.WithField("error", err).Warn("Session ended, reconnecting.")
		}
	}
}

// runSession wires one Worker + Loop pairing for the lifetime of a single
// opened port. It returns when the worker reports Exiting; when the editor
// saw Ctrl-C (the loop has already torn the terminal down) it exits the
// process with status 0.
func runSession(opts cli.CLI, log *logrus.Entry, ctrl *term.Controller, broker *pubsub.PubSub, portName string, port serialIOPort) error {
	defer port.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	textTx := make(chan string)
	msgRx := make(chan serialio.Message, 16)

	worker := serialio.New(port, textTx, msgRx, opts.Direct, log.WithField("worker", portName))
	go worker.Run(ctx)

	keys := term.NewReader(term.StdinFD())
	editor := term.NewEditor()
	loop := bridge.New(portName, msgRx, textTx, broker, ctrl, editor, keys, os.Stderr, log.WithField("loop", portName))

	err := loop.Run(ctx)
	if editor.Quit() {
		fmt.Println("\nExiting...")
		os.Exit(0)
	}
	return err
}

// serialIOPort is the subset of serial.Port the bootstrap needs beyond
// what serialio.Port already requires, kept narrow so tests can swap in
// a fake without importing go.bug.st/serial.
type serialIOPort interface {
	serialio.Port
	Close() error
}
