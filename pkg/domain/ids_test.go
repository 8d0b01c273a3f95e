package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "terralegit/pkg/domain-errors"
)

func TestParseID(t *testing.T) {
	valid := uuid.New()

	got, err := ParseListingID(valid.String())
	require.NoError(t, err)
	assert.Equal(t, ListingID(valid), got)

	upper, err := ParseListingID(strings.ToUpper(valid.String()))
	require.NoError(t, err)
	assert.Equal(t, got, upper)

	for name, input := range map[string]string{
		"empty":           "",
		"blank":           "   ",
		"nil uuid":        uuid.Nil.String(),
		"not a uuid":      "listing-42",
		"sql":             "'; DROP TABLE listings;--",
		"path":            "../../etc/passwd",
		"embedded nul":    "550e8400\x00-e29b-41d4-a716-446655440000",
		"zero width":      "550e8400\u200B-e29b-41d4-a716-446655440000",
		"oversized input": strings.Repeat("f", 512),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseListingID(input)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func TestEveryIDKindParsesAlike(t *testing.T) {
	parsers := map[string]func(string) error{
		"user":     func(s string) error { _, err := ParseUserID(s); return err },
		"seller":   func(s string) error { _, err := ParseSellerID(s); return err },
		"buyer":    func(s string) error { _, err := ParseBuyerID(s); return err },
		"species":  func(s string) error { _, err := ParseSpeciesID(s); return err },
		"listing":  func(s string) error { _, err := ParseListingID(s); return err },
		"case":     func(s string) error { _, err := ParseCaseID(s); return err },
		"document": func(s string) error { _, err := ParseDocumentID(s); return err },
		"shipment": func(s string) error { _, err := ParseShipmentID(s); return err },
		"inquiry":  func(s string) error { _, err := ParseInquiryID(s); return err },
	}
	valid := uuid.NewString()
	for kind, parse := range parsers {
		assert.NoError(t, parse(valid), kind)
		assert.Error(t, parse(uuid.Nil.String()), kind)
		assert.Error(t, parse("nope"), kind)
	}
}

func TestIDKindsAreDistinctTypes(t *testing.T) {
	raw := uuid.New()
	listing, caseID := ListingID(raw), CaseID(raw)
	// ListingID and CaseID share a representation but cannot be assigned to
	// each other; only their UUIDs compare.
	assert.Equal(t, listing.UUID(), caseID.UUID())
	assert.Equal(t, listing.String(), caseID.String())
}

func TestIDText(t *testing.T) {
	original := NewID[caseTag]()
	text, err := original.MarshalText()
	require.NoError(t, err)

	var decoded CaseID
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, original, decoded)
	assert.False(t, decoded.IsNil())

	var bad CaseID
	assert.Error(t, bad.UnmarshalText([]byte("nope")))
}
