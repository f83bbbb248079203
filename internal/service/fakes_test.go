package service

import (
	"context"
	"errors"
	"sync"

	"inspection-be/internal/entity"

	"github.com/google/uuid"
)

type fakeDirectory struct {
	mu      sync.Mutex
	byPhone map[string]*entity.Inspector
	failFor map[string]bool
	calls   []string
}

func (f *fakeDirectory) FindByPhone(_ context.Context, phone string) (*entity.Inspector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, phone)
	if f.failFor[phone] {
		return nil, errors.New("directory unavailable")
	}
	return f.byPhone[phone], nil
}

func (f *fakeDirectory) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeAssignments struct {
	inspectors []*entity.Inspector
	err        error
	calls      int
}

func (f *fakeAssignments) FindAssignedInspectors(_ context.Context, _ uuid.UUID) ([]*entity.Inspector, error) {
	f.calls++
	return f.inspectors, f.err
}

// recordingSender captures outbound messages and can be told to fail.
type recordingSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

type sentMessage struct {
	Phone string
	Text  string
}

func (s *recordingSender) SendMessage(_ context.Context, phone, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{Phone: phone, Text: text})
	return s.err
}

func (s *recordingSender) messages() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.sent...)
}

func (s *recordingSender) last() sentMessage {
	msgs := s.messages()
	if len(msgs) == 0 {
		return sentMessage{}
	}
	return msgs[len(msgs)-1]
}
