package testutil

import (
	"errors"
	"sync"
)

// MockMailer implements mailer.Mailer for testing.
type MockMailer struct {
	mu     sync.Mutex
	sent   []SentMail
	broken bool
}

type SentMail struct {
	To      string
	Subject string
	Body    string
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

// Break makes every subsequent Send fail.
func (m *MockMailer) Break() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broken = true
}

func (m *MockMailer) Send(to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broken {
		return errors.New("smtp unreachable")
	}
	m.sent = append(m.sent, SentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

// Sent returns a copy of everything delivered so far.
func (m *MockMailer) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]SentMail, len(m.sent))
	copy(cp, m.sent)
	return cp
}
