package models

import (
	"slices"
	"strings"
	"time"
)

// Readiness partitions required document types for one owner. Each type
// lands in exactly one set.
type Readiness struct {
	Complete []string
	Missing  []string
	Pending  []string
	Expired  []string
}

// Ready reports whether every required type has an approved, unexpired
// document.
func (r Readiness) Ready() bool {
	return len(r.Missing) == 0 && len(r.Expired) == 0 && len(r.Pending) == 0
}

// UnmetGuard describes what blocks readiness, or "" when ready.
func (r Readiness) UnmetGuard() string {
	var parts []string
	if len(r.Missing) > 0 {
		parts = append(parts, "documents missing: "+strings.Join(r.Missing, ", "))
	}
	if len(r.Expired) > 0 {
		parts = append(parts, "documents expired: "+strings.Join(r.Expired, ", "))
	}
	if len(r.Pending) > 0 {
		parts = append(parts, "documents not approved: "+strings.Join(r.Pending, ", "))
	}
	return strings.Join(parts, "; ")
}

// Latest returns the most recently uploaded document per type. On equal
// upload times the later element of docs wins.
func Latest(docs []Document) map[string]Document {
	out := make(map[string]Document, len(docs))
	for _, d := range docs {
		cur, ok := out[d.Type]
		if !ok || !d.UploadedAt.Before(cur.UploadedAt) {
			out[d.Type] = d
		}
	}
	return out
}

// ComputeReadiness evaluates docs against required at now. Duplicate
// required types are counted once.
func ComputeReadiness(docs []Document, required []string, now time.Time) Readiness {
	latest := Latest(docs)
	r := Readiness{}
	seen := make(map[string]bool, len(required))
	for _, t := range required {
		if seen[t] {
			continue
		}
		seen[t] = true
		d, ok := latest[t]
		switch {
		case !ok:
			r.Missing = append(r.Missing, t)
		case d.EffectiveStatus(now) == StatusExpired:
			r.Expired = append(r.Expired, t)
		case d.Status == StatusApproved:
			r.Complete = append(r.Complete, t)
		default:
			r.Pending = append(r.Pending, t)
		}
	}
	for _, set := range [][]string{r.Complete, r.Missing, r.Pending, r.Expired} {
		slices.Sort(set)
	}
	return r
}

// HealthStatus is the effective status of the latest document of docType,
// or draft when none was uploaded.
func HealthStatus(docs []Document, docType string, now time.Time) Status {
	d, ok := Latest(docs)[docType]
	if !ok {
		return StatusDraft
	}
	return d.EffectiveStatus(now)
}
