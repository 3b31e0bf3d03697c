// Package mocks provides an in-memory otel.Otel for tests. It records the spans opened through it
// so tests can assert on span names, attributes and traced errors.
package mocks

import (
	"context"
	"sync"

	"stagehand/infras/otel"
)

type Recorder struct {
	mu    sync.Mutex
	spans []*Span
}

func NewOtel() *Recorder {
	return &Recorder{}
}

func (r *Recorder) NewScope(ctx context.Context, _, spanName string) (context.Context, otel.Scope) {
	span := &Span{Name: spanName, attributes: map[string]any{}}

	r.mu.Lock()
	r.spans = append(r.spans, span)
	r.mu.Unlock()

	return ctx, span
}

// Span returns the first recorded span called name, or nil.
func (r *Recorder) Span(name string) *Span {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, span := range r.spans {
		if span.Name == name {
			return span
		}
	}

	return nil
}

func (r *Recorder) SpanNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.spans))
	for _, span := range r.spans {
		names = append(names, span.Name)
	}

	return names
}

type Span struct {
	Name string

	mu         sync.Mutex
	attributes map[string]any
	errs       []error
	events     []string
	ended      bool
}

func (s *Span) End() {
	s.mu.Lock()
	s.ended = true
	s.mu.Unlock()
}

func (s *Span) TraceError(err error) {
	s.mu.Lock()
	s.errs = append(s.errs, err)
	s.mu.Unlock()
}

func (s *Span) TraceIfError(err error) {
	if err != nil {
		s.TraceError(err)
	}
}

func (s *Span) AddEvent(name string) {
	s.mu.Lock()
	s.events = append(s.events, name)
	s.mu.Unlock()
}

func (s *Span) SetAttribute(key string, value any) {
	s.mu.Lock()
	s.attributes[key] = value
	s.mu.Unlock()
}

func (s *Span) SetAttributes(attributes map[string]any) {
	for key, value := range attributes {
		s.SetAttribute(key, value)
	}
}

func (s *Span) Attribute(key string) any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.attributes[key]
}

func (s *Span) Errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]error(nil), s.errs...)
}

func (s *Span) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ended
}
