package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"
)

const (
	maxLogSizeBytes  = 6 * 1024 * 1024
	keepLogSizeBytes = 5 * 1024 * 1024
)

// logFileWriter appends to a file and, once it grows past maxBytes, keeps only
// the newest keepBytes, starting at a line boundary.
type logFileWriter struct {
	file      *os.File
	maxBytes  int64
	keepBytes int64
	mu        sync.Mutex
}

func newLogFileWriter(path string) (*logFileWriter, *os.File, error) {
	return openLogFile(path, maxLogSizeBytes, keepLogSizeBytes)
}

func openLogFile(path string, maxBytes, keepBytes int64) (*logFileWriter, *os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	writer := &logFileWriter{file: file, maxBytes: maxBytes, keepBytes: keepBytes}
	if err := writer.truncateIfNeeded(); err != nil {
		file.Close()
		return nil, nil, err
	}
	return writer, file, nil
}

func (w *logFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	if err != nil {
		return n, err
	}
	if err := w.truncateIfNeeded(); err != nil {
		return n, err
	}
	return n, nil
}

func (w *logFileWriter) truncateIfNeeded() error {
	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= w.maxBytes {
		return nil
	}

	buf := make([]byte, w.keepBytes)
	n, err := w.file.ReadAt(buf, size-w.keepBytes)
	if err != nil && err != io.EOF {
		return err
	}
	buf = buf[:n]
	// Drop the partial first line.
	if i := bytes.IndexByte(buf, '\n'); i >= 0 {
		buf = buf[i+1:]
	}

	if err := w.file.Truncate(0); err != nil {
		return err
	}
	// O_APPEND writes land at the new end after truncation.
	_, err = w.file.Write(buf)
	return err
}
