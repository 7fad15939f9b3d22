// Package serial abstracts the physical link between the bench tool and
// the board's CLI UART.
package serial

import "io"

// Port is a full-duplex byte stream to the board, line-buffered on the
// board side but not on this side.
type Port interface {
	io.ReadWriteCloser

	// Flush discards any unread input buffered since the last read.
	Flush() error
}

// Config holds the parameters needed to open a Port.
type Config struct {
	// Device path, e.g. "/dev/ttyACM0" or "COM3".
	Device string

	// Baud rate. The board's CLI UART runs at 115200.
	Baud int

	// ReadTimeout in milliseconds; 0 blocks forever.
	ReadTimeout int
}

// DefaultConfig returns the configuration matching the board's UART CLI.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 200,
	}
}
