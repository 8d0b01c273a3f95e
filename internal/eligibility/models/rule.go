// Package models holds country rules and the pure eligibility evaluation
// over them.
package models

import (
	"slices"
	"strings"
	"time"

	catalog "terralegit/internal/catalog/models"
	dErrors "terralegit/pkg/domain-errors"
)

// CountryRule is the import policy of one destination country.
type CountryRule struct {
	CountryCode  string
	Name         string
	Allowed      []catalog.Category
	Restricted   []catalog.Category
	RequiredDocs []string
	SpecialNotes string
	IsActive     bool
	UpdatedAt    time.Time
}

// Validate checks structural rule data. Overlapping allowed and restricted
// sets are accepted here and surfaced by Evaluate as a conflict.
func (r *CountryRule) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "country name is required")
	}
	for _, c := range slices.Concat(r.Allowed, r.Restricted) {
		if !c.IsValid() {
			return dErrors.Newf(dErrors.CodeValidation, "unknown category %q", c)
		}
	}
	for _, d := range r.RequiredDocs {
		if strings.TrimSpace(d) == "" {
			return dErrors.New(dErrors.CodeValidation, "required document types cannot be blank")
		}
	}
	return nil
}

// Reason explains a negative eligibility result.
type Reason string

const (
	ReasonNone                  Reason = ""
	ReasonRestricted            Reason = "restricted"
	ReasonUnknownDestination    Reason = "unknown_destination"
	ReasonCategoryNotConfigured Reason = "category_not_configured"
	ReasonConflictingRule       Reason = "conflicting_rule"
)

// Result is the outcome of evaluating one (country, category) pair.
type Result struct {
	CountryCode  string
	Category     catalog.Category
	Eligible     bool
	RequiredDocs []string
	Reason       Reason
}

// Err converts a negative result into a coded error. Eligible results
// return nil.
func (r Result) Err() error {
	switch r.Reason {
	case ReasonNone:
		if r.Eligible {
			return nil
		}
		return dErrors.Newf(dErrors.CodeIneligibleDestination, "%s is not eligible for %s", r.Category, r.CountryCode)
	case ReasonRestricted:
		return dErrors.Newf(dErrors.CodeIneligibleDestination, "%s is restricted for %s", r.Category, r.CountryCode)
	case ReasonUnknownDestination:
		return dErrors.Newf(dErrors.CodeUnknownDestination, "no active rule for destination %s", r.CountryCode)
	case ReasonCategoryNotConfigured:
		return dErrors.Newf(dErrors.CodeCategoryNotConfigured, "%s is not configured for %s", r.Category, r.CountryCode)
	case ReasonConflictingRule:
		return dErrors.Newf(dErrors.CodeConflictingRule, "%s is both allowed and restricted for %s", r.Category, r.CountryCode)
	default:
		return dErrors.Newf(dErrors.CodeIneligibleDestination, "%s is not eligible for %s", r.Category, r.CountryCode)
	}
}

// Evaluate decides whether category may move to the rule's country. A nil
// or inactive rule is an unknown destination. Restriction wins over
// allowance, and a category listed in neither set is not eligible.
func Evaluate(countryCode string, rule *CountryRule, category catalog.Category) Result {
	res := Result{CountryCode: countryCode, Category: category}
	if rule == nil || !rule.IsActive {
		res.Reason = ReasonUnknownDestination
		return res
	}

	allowed := slices.Contains(rule.Allowed, category)
	restricted := slices.Contains(rule.Restricted, category)
	switch {
	case allowed && restricted:
		res.Reason = ReasonConflictingRule
	case restricted:
		res.Reason = ReasonRestricted
	case !allowed:
		res.Reason = ReasonCategoryNotConfigured
	default:
		res.Eligible = true
		res.RequiredDocs = slices.Clone(rule.RequiredDocs)
	}
	return res
}

// Conflicts lists categories present in both sets of the rule.
func (r *CountryRule) Conflicts() []catalog.Category {
	var out []catalog.Category
	for _, c := range r.Allowed {
		if slices.Contains(r.Restricted, c) {
			out = append(out, c)
		}
	}
	return out
}
