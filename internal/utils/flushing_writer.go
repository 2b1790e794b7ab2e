package utils

import (
	"io"
	"sync"
)

type flusher interface {
	Flush() error
}

// FlushingWriter serializes writes and flushes buffered destinations after
// each one, so report output interleaves correctly with log lines.
type FlushingWriter struct {
	mutex  sync.Mutex
	writer io.Writer
}

// NewFlushingWriter wraps writer. Wrapping a FlushingWriter returns it unchanged.
func NewFlushingWriter(writer io.Writer) io.Writer {
	if writer == nil {
		return io.Discard
	}
	if existing, alreadyWrapped := writer.(*FlushingWriter); alreadyWrapped {
		return existing
	}
	return &FlushingWriter{writer: writer}
}

// Write forwards data and flushes when the destination supports it.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	bytesWritten, writeError := flushingWriter.writer.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}
	if bufferedWriter, flushable := flushingWriter.writer.(flusher); flushable {
		return bytesWritten, bufferedWriter.Flush()
	}
	return bytesWritten, nil
}
