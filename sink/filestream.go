// Package sink provides the concrete StreamSink and DatabaseSink
// implementations the producer wires into core.OrderedSink: an append-only
// file per XML stream, and an optional buntdb-backed tabular mirror.
package sink

import (
	"bufio"
	"os"
	"sync"
)

// FileStream is an append-only *os.File wrapper with its own buffered
// writer. One FileStream instance is shared by every worker writing to a
// given stream; core.OrderedSink's per-stream mutex already serializes
// calls into AppendChunk, so FileStream itself does not need its own lock
// for ordering — only for Close racing a very last AppendChunk.
type FileStream struct {
	mu sync.Mutex
	f  *os.File
	bw *bufio.Writer
}

func NewFileStream(path string) (*FileStream, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &FileStream{f: f, bw: bufio.NewWriterSize(f, 64*1024)}, nil
}

func (s *FileStream) AppendChunk(chunk string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.bw.WriteString(chunk)
	return err
}

func (s *FileStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.bw.Flush(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}
