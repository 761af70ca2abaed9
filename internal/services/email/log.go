// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// LogSender writes messages to a writer instead of sending them. It is used
// in development when no SMTP host is configured.
type LogSender struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLogSender creates a sender printing plain-text bodies to w.
func NewLogSender(w io.Writer) *LogSender {
	return &LogSender{w: w}
}

// Send implements Sender.
func (s *LogSender) Send(_ context.Context, m Message) error {
	slog.Info("email_not_sent", "to", MaskEmail(m.To), "subject", m.Subject, "reason", "smtp not configured")

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.w, "To: %s\nSubject: %s\n\n%s\n", m.To, m.Subject, m.Text)
	return err
}
