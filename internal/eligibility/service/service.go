package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"terralegit/internal/authz"
	catalog "terralegit/internal/catalog/models"
	"terralegit/internal/eligibility/models"
	id "terralegit/pkg/domain"
	audit "terralegit/pkg/platform/audit"
	"terralegit/pkg/platform/sentinel"
	"terralegit/pkg/platform/tx"
	"terralegit/pkg/requestcontext"
)

// Store persists country rules.
type Store interface {
	Upsert(ctx context.Context, rule *models.CountryRule) error
	Find(ctx context.Context, countryCode string) (*models.CountryRule, error)
	List(ctx context.Context, activeOnly bool) ([]*models.CountryRule, error)
}

// AuditRecorder appends fail-closed audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, actor id.Actor, action audit.Action, entityType audit.EntityType, entityID string, details map[string]any) (audit.Entry, error)
}

// Service evaluates destination eligibility and manages country rules.
//
// Deactivating a rule makes its country an unknown destination for new
// evaluations. Cases that already passed eligibility keep the required
// document set captured at that time.
type Service struct {
	store   Store
	runner  tx.Runner
	auditor AuditRecorder
	logger  *slog.Logger
	metrics *Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, runner tx.Runner, auditor AuditRecorder, opts ...Option) *Service {
	s := &Service{store: store, runner: runner, auditor: auditor, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate reports whether category may move to countryCode. Restricted,
// unconfigured and conflicting outcomes are results. A destination with no
// active rule is a CodeUnknownDestination error, as are storage failures.
func (s *Service) Evaluate(ctx context.Context, countryCode string, category catalog.Category) (models.Result, error) {
	if _, err := catalog.ParseCategory(string(category)); err != nil {
		return models.Result{}, err
	}
	code := strings.ToUpper(strings.TrimSpace(countryCode))

	var rule *models.CountryRule
	if _, err := id.ParseCountryCode(code); err == nil {
		found, err := s.store.Find(ctx, code)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
		case err != nil:
			return models.Result{}, sentinel.ToDomain(err, "country rule")
		default:
			rule = found
		}
	}

	res := models.Evaluate(code, rule, category)
	s.metrics.observe(res.Eligible, string(res.Reason))
	if res.Reason == models.ReasonConflictingRule {
		s.logger.WarnContext(ctx, "conflicting country rule",
			"country_code", code,
			"category", category,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if res.Reason == models.ReasonUnknownDestination {
		return models.Result{}, res.Err()
	}
	return res, nil
}

// UpsertRuleCommand is the full replacement content of a country rule.
type UpsertRuleCommand struct {
	CountryCode  string
	Name         string
	Allowed      []catalog.Category
	Restricted   []catalog.Category
	RequiredDocs []string
	SpecialNotes string
	Active       bool
}

// UpsertRule creates or replaces a country rule.
func (s *Service) UpsertRule(ctx context.Context, cmd UpsertRuleCommand) (*models.CountryRule, error) {
	actor := requestcontext.Actor(ctx)
	if err := authz.Authorize(actor, authz.ActionManageRules, authz.Resource{}); err != nil {
		return nil, err
	}
	code, err := id.ParseCountryCode(cmd.CountryCode)
	if err != nil {
		return nil, err
	}
	rule := &models.CountryRule{
		CountryCode:  code,
		Name:         strings.TrimSpace(cmd.Name),
		Allowed:      cmd.Allowed,
		Restricted:   cmd.Restricted,
		RequiredDocs: cmd.RequiredDocs,
		SpecialNotes: cmd.SpecialNotes,
		IsActive:     cmd.Active,
		UpdatedAt:    requestcontext.Now(ctx),
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Upsert(ctx, rule); err != nil {
			return sentinel.ToDomain(err, "country rule")
		}
		details := map[string]any{
			"allowed":       rule.Allowed,
			"restricted":    rule.Restricted,
			"required_docs": rule.RequiredDocs,
			"active":        rule.IsActive,
		}
		if conflicts := rule.Conflicts(); len(conflicts) > 0 {
			details["conflicts"] = conflicts
		}
		_, err := s.auditor.Record(ctx, actor, audit.ActionCountryRuleUpserted, audit.EntityCountryRule, code, details)
		return err
	})
	if err != nil {
		return nil, err
	}
	if conflicts := rule.Conflicts(); len(conflicts) > 0 {
		s.logger.WarnContext(ctx, "country rule saved with conflicting categories",
			"country_code", code, "conflicts", conflicts, "request_id", requestcontext.RequestID(ctx))
	}
	return rule, nil
}

// DeactivateRule retires a rule without deleting it. Deactivating an
// inactive rule is a no-op.
func (s *Service) DeactivateRule(ctx context.Context, countryCode string) (*models.CountryRule, error) {
	actor := requestcontext.Actor(ctx)
	if err := authz.Authorize(actor, authz.ActionManageRules, authz.Resource{}); err != nil {
		return nil, err
	}
	code, err := id.ParseCountryCode(countryCode)
	if err != nil {
		return nil, err
	}

	var rule *models.CountryRule
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		rule, err = s.store.Find(ctx, code)
		if err != nil {
			return sentinel.ToDomain(err, "country rule")
		}
		if !rule.IsActive {
			return nil
		}
		rule.IsActive = false
		rule.UpdatedAt = requestcontext.Now(ctx)
		if err := s.store.Upsert(ctx, rule); err != nil {
			return sentinel.ToDomain(err, "country rule")
		}
		_, err := s.auditor.Record(ctx, actor, audit.ActionCountryRuleDeactivated, audit.EntityCountryRule, code, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "country rule deactivated", "country_code", code, "request_id", requestcontext.RequestID(ctx))
	return rule, nil
}

func (s *Service) GetRule(ctx context.Context, countryCode string) (*models.CountryRule, error) {
	code, err := id.ParseCountryCode(countryCode)
	if err != nil {
		return nil, err
	}
	rule, err := s.store.Find(ctx, code)
	if err != nil {
		return nil, sentinel.ToDomain(err, "country rule")
	}
	return rule, nil
}

func (s *Service) ListRules(ctx context.Context, activeOnly bool) ([]*models.CountryRule, error) {
	rules, err := s.store.List(ctx, activeOnly)
	if err != nil {
		return nil, sentinel.ToDomain(err, "country rule")
	}
	return rules, nil
}

// VisibleDestinations lists the countries a category may currently be
// shipped to.
func (s *Service) VisibleDestinations(ctx context.Context, category catalog.Category) ([]string, error) {
	if _, err := catalog.ParseCategory(string(category)); err != nil {
		return nil, err
	}
	rules, err := s.ListRules(ctx, true)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, r := range rules {
		if models.Evaluate(r.CountryCode, r, category).Eligible {
			out = append(out, r.CountryCode)
		}
	}
	return out, nil
}

// Seed inserts rules for countries that have none yet. Existing rules,
// including deactivated ones, are left alone.
func (s *Service) Seed(ctx context.Context, rules []models.CountryRule) (int, error) {
	actor := id.SystemActor()
	inserted := 0
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		for i := range rules {
			rule := rules[i]
			_, err := s.store.Find(ctx, rule.CountryCode)
			if err == nil {
				continue
			}
			if !errors.Is(err, sentinel.ErrNotFound) {
				return sentinel.ToDomain(err, "country rule")
			}
			if err := s.store.Upsert(ctx, &rule); err != nil {
				return sentinel.ToDomain(err, "country rule")
			}
			if _, err := s.auditor.Record(ctx, actor, audit.ActionCountryRuleUpserted, audit.EntityCountryRule, rule.CountryCode, map[string]any{
				"source": "seed",
			}); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "country rules seeded", "inserted", inserted, "total", len(rules))
	return inserted, nil
}
