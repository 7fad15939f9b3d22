package bench

import (
	"bufio"
	"io"
	"strings"
	"testing"
)

// fakePort implements serial.Port over an in-memory pipe so Client can
// be exercised without a real board attached.
type fakePort struct {
	writes   []string
	toRead   *strings.Reader
	closed   bool
}

func newFakePort(response string) *fakePort {
	return &fakePort{toRead: strings.NewReader(response)}
}

func (p *fakePort) Read(b []byte) (int, error)  { return p.toRead.Read(b) }
func (p *fakePort) Write(b []byte) (int, error) { p.writes = append(p.writes, string(b)); return len(b), nil }
func (p *fakePort) Close() error                { p.closed = true; return nil }
func (p *fakePort) Flush() error                { return nil }

func TestClientCommandCollectsResponseLines(t *testing.T) {
	port := newFakePort("OK\n")
	c := &Client{port: port, reader: bufio.NewReader(port)}

	lines, err := c.Command("start")
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	if len(lines) != 1 || lines[0] != "OK" {
		t.Errorf("lines = %v, want [OK]", lines)
	}
	if len(port.writes) != 1 || port.writes[0] != "start\n" {
		t.Errorf("writes = %v, want [start\\n]", port.writes)
	}
}

func TestClientCommandCollectsMultipleLines(t *testing.T) {
	port := newFakePort("brightness = 255\nramp = 2\n")
	c := &Client{port: port, reader: bufio.NewReader(port)}

	lines, err := c.Command("list")
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines = %v, want 2 entries", lines)
	}
}

func TestClientCommandNoResponse(t *testing.T) {
	port := newFakePort("")
	c := &Client{port: port, reader: bufio.NewReader(port)}

	lines, err := c.Command("stop")
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("lines = %v, want none", lines)
	}
}

var _ io.ReadWriteCloser = (*fakePort)(nil)
