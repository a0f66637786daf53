package serialio

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// BaudRate is the reference device's link speed (SPEC_FULL.md §6).
const BaudRate = 115200

// OpenRetries and OpenRetryInterval are the open-with-retry parameters
// SPEC_FULL.md §4.H specifies: up to 5 attempts, 500ms apart.
const (
	OpenRetries       = 5
	OpenRetryInterval = 500 * time.Millisecond
)

// ListPortNames returns the names of all currently enumerable serial ports.
func ListPortNames() ([]string, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	names := make([]string, 0, len(details))
	for _, d := range details {
		names = append(names, d.Name)
	}
	return names, nil
}

// Open opens portName at BaudRate/8N1, asserts DTR, and sets the default
// read timeout, returning a Port ready for Worker.
func Open(portName string) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, err
	}

	if err := port.SetDTR(true); err != nil {
		port.Close()
		return nil, fmt.Errorf("assert DTR: %w", err)
	}

	if err := port.SetReadTimeout(DefaultReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}

	return port, nil
}

// OpenWithRetry attempts to open portName up to OpenRetries times,
// OpenRetryInterval apart, bubbling the last error up to the caller's
// outer reconnect loop on exhaustion.
func OpenWithRetry(portName string, log *logrus.Entry) (serial.Port, error) {
	var port serial.Port

	attempt := 0
	operation := func() error {
		attempt++
		p, err := Open(portName)
		if err != nil {
			log.WithField("port", portName).WithField("attempt", attempt).WithField("error", err).
				Warn("Failed to open serial port, retrying.")
			return err
		}
		port = p
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(OpenRetryInterval), uint64(OpenRetries-1))
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("open %s after %d attempts: %w", portName, OpenRetries, err)
	}

	return port, nil
}
