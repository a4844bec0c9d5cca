package audit

import (
	"fmt"
	"io"
	"sync"
)

// Sink：稽核发现的接收方；并行运行时会被多个 goroutine 调用
type Sink interface {
	Report(Finding)
}

// WriterSink：每条发现写一行；首个写错误保留在 Err 中
type WriterSink struct {
	mu  sync.Mutex
	w   io.Writer
	err error
}

func NewWriterSink(w io.Writer) *WriterSink { return &WriterSink{w: w} }

func (s *WriterSink) Report(f Finding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}
	if _, err := fmt.Fprintln(s.w, f.String()); err != nil {
		s.err = err
	}
}

func (s *WriterSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// MemorySink：在内存中收集发现
type MemorySink struct {
	mu       sync.Mutex
	findings []Finding
}

func (s *MemorySink) Report(f Finding) {
	s.mu.Lock()
	s.findings = append(s.findings, f)
	s.mu.Unlock()
}

// Findings 返回已收集发现的副本
func (s *MemorySink) Findings() []Finding {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Finding, len(s.findings))
	copy(out, s.findings)
	return out
}

type tee []Sink

func (t tee) Report(f Finding) {
	for _, s := range t {
		s.Report(f)
	}
}

// Tee：把每条发现依次转发给全部 sinks
func Tee(sinks ...Sink) Sink { return tee(sinks) }
