package errs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSink is a Sink backed by an append-only CSV-like log file
// (millis,code,message) with rotation to a .bak file once the log
// exceeds maxLogBytes, the same error.log/error.bak rotation scheme a
// LittleFS-backed board filesystem uses.
type FileSink struct {
	path        string
	backupPath  string
	maxLogBytes int64
}

const defaultMaxLogBytes = 10 * 1024 // 10 KiB

func NewFileSink(path string) *FileSink {
	return &FileSink{
		path:        path,
		backupPath:  strings.TrimSuffix(path, filepath.Ext(path)) + ".bak",
		maxLogBytes: defaultMaxLogBytes,
	}
}

func (s *FileSink) rotateIfNeeded() error {
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Size() <= s.maxLogBytes {
		return nil
	}
	_ = os.Remove(s.backupPath)
	return os.Rename(s.path, s.backupPath)
}

func (s *FileSink) Append(r Report) error {
	if err := s.rotateIfNeeded(); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%d,%s,%s\n", r.AtMillis, r.Kind, r.Message)
	return err
}

func (s *FileSink) Dump() ([]Report, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var reports []Report
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var millis uint32
		var kind, msg string
		n, _ := fmt.Sscanf(line, "%d,%s", &millis, &kind)
		if n < 2 {
			continue
		}
		// message may contain commas; split manually after the second comma.
		first, second := -1, -1
		count := 0
		for i, c := range line {
			if c == ',' {
				count++
				if count == 1 {
					first = i
				} else if count == 2 {
					second = i
					break
				}
			}
		}
		if first >= 0 && second >= 0 && second+1 <= len(line) {
			kind = line[first+1 : second]
			msg = line[second+1:]
		}
		reports = append(reports, Report{AtMillis: millis, Kind: Kind(kind), Message: msg})
	}
	return reports, scanner.Err()
}

func (s *FileSink) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
