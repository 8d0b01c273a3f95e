package models

import (
	"strings"
	"time"

	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
)

// Category is the regulatory grouping a species belongs to. Eligibility
// rules are written against categories, never individual species.
type Category string

const (
	CategoryLivestock            Category = "livestock"
	CategoryCompanion            Category = "companion"
	CategoryAquaculture          Category = "aquaculture"
	CategoryCaptiveBredSpecialty Category = "captive_bred_specialty"
	CategoryConservation         Category = "conservation"
	CategoryResearch             Category = "research"
)

// Categories lists every category in declaration order.
var Categories = []Category{
	CategoryLivestock,
	CategoryCompanion,
	CategoryAquaculture,
	CategoryCaptiveBredSpecialty,
	CategoryConservation,
	CategoryResearch,
}

// ParseCategory validates a category string.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if c.IsValid() {
		return c, nil
	}
	return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid species category %q", s)
}

func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }

// CareLevel grades husbandry difficulty.
type CareLevel string

const (
	CareBeginner     CareLevel = "beginner"
	CareIntermediate CareLevel = "intermediate"
	CareAdvanced     CareLevel = "advanced"
	CareExpert       CareLevel = "expert"
)

// ParseCareLevel validates a care level string.
func ParseCareLevel(s string) (CareLevel, error) {
	switch c := CareLevel(strings.TrimSpace(s)); c {
	case CareBeginner, CareIntermediate, CareAdvanced, CareExpert:
		return c, nil
	}
	return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid care level %q", s)
}

// Species is immutable reference data. Transactions reference it and never
// change it.
type Species struct {
	ID             id.SpeciesID
	CommonName     string
	ScientificName string
	Category       Category
	CareLevel      CareLevel
	WelfareNotes   string
	CareGuidance   string
	CreatedAt      time.Time
}

// NewSpecies validates and builds a catalog entry.
func NewSpecies(speciesID id.SpeciesID, commonName, scientificName string, category Category, care CareLevel, welfareNotes, careGuidance string, now time.Time) (*Species, error) {
	commonName = strings.TrimSpace(commonName)
	scientificName = strings.TrimSpace(scientificName)
	if commonName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "common name is required")
	}
	if scientificName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "scientific name is required")
	}
	if !category.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "valid category is required")
	}
	if _, err := ParseCareLevel(string(care)); err != nil {
		return nil, err
	}
	return &Species{
		ID:             speciesID,
		CommonName:     commonName,
		ScientificName: scientificName,
		Category:       category,
		CareLevel:      care,
		WelfareNotes:   welfareNotes,
		CareGuidance:   careGuidance,
		CreatedAt:      now,
	}, nil
}
