// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"errors"
	"net"
	"net/textproto"
	"strings"

	"github.com/wneessen/go-mail"
)

// FailureClass groups delivery errors for logging.
type FailureClass string

const (
	FailureAuthentication   FailureClass = "authentication"
	FailureConnection       FailureClass = "connection"
	FailureRecipientRefused FailureClass = "recipient_refused"
	FailureGeneric          FailureClass = "generic"
)

// Classify maps a delivery error to its failure class.
func Classify(err error) FailureClass {
	if err == nil {
		return ""
	}

	var sendErr *mail.SendError
	if errors.As(err, &sendErr) && sendErr.Reason == mail.ErrSMTPRcptTo {
		return FailureRecipientRefused
	}

	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		switch protoErr.Code {
		case 530, 534, 535:
			return FailureAuthentication
		case 550, 551, 553:
			return FailureRecipientRefused
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FailureConnection
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return FailureConnection
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "smtp auth"), strings.Contains(msg, "authentication"):
		return FailureAuthentication
	case strings.Contains(msg, "dial"), strings.Contains(msg, "connection refused"):
		return FailureConnection
	}
	return FailureGeneric
}
