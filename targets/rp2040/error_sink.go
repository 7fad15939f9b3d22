//go:build rp2040

package main

import (
	"fmt"
	"strconv"
	"strings"

	"ttcontrol/errs"
	"ttcontrol/settings"
)

const errorLogFilename = "error.log"
const errorLogMaxBytes = 10 * 1024

// flashErrorSink is a errs.Sink over the same FlashFileSystem the
// settings store uses, since there is no separate error-log volume on
// target; its line format matches errs.FileSink's so the bench CLI's
// "error dump" output is identical whether read from flash or a host
// log file.
type flashErrorSink struct {
	fs   settings.FileSystem
	name string
}

func newFlashErrorSink(fs settings.FileSystem) *flashErrorSink {
	return &flashErrorSink{fs: fs, name: errorLogFilename}
}

func (s *flashErrorSink) Append(r errs.Report) error {
	existing, _ := s.fs.ReadFile(s.name)
	if len(existing) > errorLogMaxBytes {
		existing = nil
	}
	line := fmt.Sprintf("%d,%s,%s\n", r.AtMillis, r.Kind, r.Message)
	return s.fs.WriteFile(s.name, append(existing, []byte(line)...))
}

func (s *flashErrorSink) Dump() ([]errs.Report, error) {
	data, err := s.fs.ReadFile(s.name)
	if err != nil {
		return nil, nil
	}
	var reports []errs.Report
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ",", 3)
		if len(parts) != 3 {
			continue
		}
		millis, _ := strconv.ParseUint(parts[0], 10, 32)
		reports = append(reports, errs.Report{
			AtMillis: uint32(millis),
			Kind:     errs.Kind(parts[1]),
			Message:  parts[2],
		})
	}
	return reports, nil
}

func (s *flashErrorSink) Clear() error {
	return s.fs.Remove(s.name)
}
