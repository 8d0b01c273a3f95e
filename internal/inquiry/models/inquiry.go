// Package models holds contact-form inquiries. They sit outside the
// compliance lifecycle and are not audited.
package models

import (
	"net/mail"
	"strings"
	"time"

	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
)

type Type string

const (
	TypeInstitutional Type = "institutional"
	TypeGeneral       Type = "general"
	TypePartnership   Type = "partnership"
	TypeCompliance    Type = "compliance"
)

func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeInstitutional, TypeGeneral, TypePartnership, TypeCompliance:
		return t, nil
	}
	return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid inquiry type %q", s)
}

type Status string

const (
	StatusNew     Status = "new"
	StatusHandled Status = "handled"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.TrimSpace(s)); st {
	case StatusNew, StatusHandled:
		return st, nil
	}
	return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid inquiry status %q", s)
}

type Inquiry struct {
	ID           id.InquiryID
	Type         Type
	Name         string
	Email        string
	Organization string
	Message      string
	Status       Status
	CreatedAt    time.Time
	HandledAt    *time.Time
}

const minMessageLen = 10

// New validates a submission and returns it with status new.
func New(inquiryID id.InquiryID, t Type, name, email, organization, message string, now time.Time) (*Inquiry, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	message = strings.TrimSpace(message)
	if len(name) < 2 {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "valid email is required")
	}
	if len(message) < minMessageLen {
		return nil, dErrors.Newf(dErrors.CodeValidation, "message must be at least %d characters", minMessageLen)
	}
	if t == TypeInstitutional && strings.TrimSpace(organization) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "organization is required for institutional inquiries")
	}
	return &Inquiry{
		ID:           inquiryID,
		Type:         t,
		Name:         name,
		Email:        email,
		Organization: strings.TrimSpace(organization),
		Message:      message,
		Status:       StatusNew,
		CreatedAt:    now,
	}, nil
}

// MarkHandled is idempotent; the first handling time is kept.
func (i *Inquiry) MarkHandled(now time.Time) {
	if i.Status == StatusHandled {
		return
	}
	i.Status = StatusHandled
	i.HandledAt = &now
}
