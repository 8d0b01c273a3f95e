// Package seed loads country rules from YAML.
package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	catalog "terralegit/internal/catalog/models"
	"terralegit/internal/eligibility/models"
	id "terralegit/pkg/domain"
)

//go:embed rules.yaml
var defaultRules []byte

type file struct {
	Rules []rule `yaml:"rules"`
}

type rule struct {
	CountryCode  string   `yaml:"country_code"`
	Name         string   `yaml:"name"`
	Allowed      []string `yaml:"allowed"`
	Restricted   []string `yaml:"restricted"`
	RequiredDocs []string `yaml:"required_docs"`
	SpecialNotes string   `yaml:"special_notes"`
	Inactive     bool     `yaml:"inactive"`
}

// Default returns the embedded rule set.
func Default(now time.Time) ([]models.CountryRule, error) {
	return Parse(defaultRules, now)
}

// Load reads rules from path, or the embedded set when path is empty.
func Load(path string, now time.Time) ([]models.CountryRule, error) {
	if path == "" {
		return Default(now)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read country rules %s: %w", path, err)
	}
	return Parse(raw, now)
}

// Parse decodes a rules document. Unknown fields are rejected.
func Parse(raw []byte, now time.Time) ([]models.CountryRule, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var f file
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode country rules: %w", err)
	}

	seen := make(map[string]bool, len(f.Rules))
	out := make([]models.CountryRule, 0, len(f.Rules))
	for i, r := range f.Rules {
		code, err := id.ParseCountryCode(r.CountryCode)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		if seen[code] {
			return nil, fmt.Errorf("rule %d: duplicate country %s", i, code)
		}
		seen[code] = true

		cr := models.CountryRule{
			CountryCode:  code,
			Name:         r.Name,
			RequiredDocs: r.RequiredDocs,
			SpecialNotes: r.SpecialNotes,
			IsActive:     !r.Inactive,
			UpdatedAt:    now,
		}
		if cr.Allowed, err = categories(r.Allowed); err != nil {
			return nil, fmt.Errorf("rule %s: %w", code, err)
		}
		if cr.Restricted, err = categories(r.Restricted); err != nil {
			return nil, fmt.Errorf("rule %s: %w", code, err)
		}
		if err := cr.Validate(); err != nil {
			return nil, fmt.Errorf("rule %s: %w", code, err)
		}
		out = append(out, cr)
	}
	return out, nil
}

func categories(raw []string) ([]catalog.Category, error) {
	out := make([]catalog.Category, 0, len(raw))
	for _, s := range raw {
		c, err := catalog.ParseCategory(s)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
