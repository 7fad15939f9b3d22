// Package bench drives the board's line-oriented CLI surface over a
// serial.Port, giving the bench tool's subcommands a small, testable
// request/response primitive instead of each one poking the wire
// directly.
package bench

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"ttcontrol/host/serial"
)

// Client sends one command line at a time and collects whatever
// response lines arrive before the port's read timeout, a
// give-it-a-moment approach to waiting on MCU responses without a
// framed response protocol.
type Client struct {
	port   serial.Port
	reader *bufio.Reader
}

func Open(device string) (*Client, error) {
	port, err := serial.Open(serial.DefaultConfig(device))
	if err != nil {
		return nil, err
	}
	return &Client{port: port, reader: bufio.NewReader(port)}, nil
}

func (c *Client) Close() error { return c.port.Close() }

// Command writes one line and returns every response line the board
// sent back before falling silent.
func (c *Client) Command(line string) ([]string, error) {
	if err := c.port.Flush(); err != nil {
		return nil, err
	}
	if _, err := c.port.Write([]byte(line + "\n")); err != nil {
		return nil, fmt.Errorf("write command: %w", err)
	}

	var lines []string
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		resp, err := c.reader.ReadString('\n')
		if resp != "" {
			lines = append(lines, strings.TrimRight(resp, "\r\n"))
		}
		if err != nil {
			break
		}
	}
	return lines, nil
}
