// Package serial wraps the byte-stream link the plotter is driven over.
package serial

import "io"

// Port is the serial link interface. Keeping it an interface lets tests
// and the simulator substitute in-memory pipes for real hardware.
type Port interface {
	io.ReadWriteCloser
}

// Config holds serial port configuration.
type Config struct {
	// Device path, e.g. "/dev/ttyUSB0" or "COM3".
	Device string

	// Baud rate. The stock firmware talks at 115200.
	Baud int

	// Read timeout in milliseconds, 0 for blocking reads.
	ReadTimeout int
}

// DefaultConfig returns the stock configuration for a device path.
func DefaultConfig(device string) *Config {
	return &Config{
		Device: device,
		Baud:   115200,
	}
}
