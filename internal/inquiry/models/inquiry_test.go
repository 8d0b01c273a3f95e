package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
)

func TestNew(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		typ     Type
		inName  string
		email   string
		org     string
		message string
		wantErr bool
	}{
		{"valid general inquiry", TypeGeneral, "Ana", "Ana@Example.org", "", "Do you ship alpacas to Japan?", false},
		{"institutional needs organization", TypeInstitutional, "Ana", "ana@example.org", " ", "We need twenty zebrafish lines.", true},
		{"bad email", TypeGeneral, "Ana", "not-an-email", "", "Do you ship alpacas to Japan?", true},
		{"short message", TypeGeneral, "Ana", "ana@example.org", "", "hi", true},
		{"missing name", TypeGeneral, " ", "ana@example.org", "", "Do you ship alpacas to Japan?", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inq, err := New(id.InquiryID(uuid.New()), tt.typ, tt.inName, tt.email, tt.org, tt.message, now)
			if tt.wantErr {
				assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusNew, inq.Status)
			assert.Equal(t, "ana@example.org", inq.Email)
		})
	}
}

func TestMarkHandledKeepsFirstTime(t *testing.T) {
	first := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	inq := &Inquiry{Status: StatusNew}
	inq.MarkHandled(first)
	inq.MarkHandled(first.Add(time.Hour))
	assert.Equal(t, StatusHandled, inq.Status)
	assert.Equal(t, first, *inq.HandledAt)
}

func TestParseType(t *testing.T) {
	typ, err := ParseType(" Institutional ")
	require.NoError(t, err)
	assert.Equal(t, TypeInstitutional, typ)

	_, err = ParseType("sales")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
