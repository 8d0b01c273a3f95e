package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
)

var now = time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

func doc(docType string, status Status, uploaded time.Time, expiry *time.Time) Document {
	return Document{
		ID:         id.DocumentID(uuid.New()),
		Owner:      CaseOwner(id.CaseID(uuid.New())),
		Type:       docType,
		Status:     status,
		UploadedAt: uploaded,
		ExpiryDate: expiry,
	}
}

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func TestComputeReadiness(t *testing.T) {
	t.Run("expired approval is expired, not complete", func(t *testing.T) {
		docs := []Document{
			doc("health_certificate", StatusApproved, now.Add(-48*time.Hour), at(-time.Hour)),
			doc("import_permit", StatusApproved, now.Add(-48*time.Hour), nil),
		}
		r := ComputeReadiness(docs, []string{"health_certificate", "import_permit"}, now)
		assert.Equal(t, []string{"health_certificate"}, r.Expired)
		assert.Equal(t, []string{"import_permit"}, r.Complete)
		assert.False(t, r.Ready())
		assert.Contains(t, r.UnmetGuard(), "documents expired: health_certificate")
	})

	t.Run("latest upload per type wins", func(t *testing.T) {
		docs := []Document{
			doc("import_permit", StatusApproved, now.Add(-72*time.Hour), nil),
			doc("import_permit", StatusSubmitted, now.Add(-time.Hour), nil),
		}
		r := ComputeReadiness(docs, []string{"import_permit"}, now)
		assert.Equal(t, []string{"import_permit"}, r.Pending)
		assert.Empty(t, r.Complete)
	})

	t.Run("missing types are listed", func(t *testing.T) {
		r := ComputeReadiness(nil, []string{"b", "a", "a"}, now)
		assert.Equal(t, []string{"a", "b"}, r.Missing)
		assert.Equal(t, "documents missing: a, b", r.UnmetGuard())
	})

	t.Run("no requirements is ready", func(t *testing.T) {
		r := ComputeReadiness([]Document{doc("x", StatusDraft, now, nil)}, nil, now)
		assert.True(t, r.Ready())
		assert.Empty(t, r.UnmetGuard())
	})

	t.Run("expiry in the future is still complete", func(t *testing.T) {
		r := ComputeReadiness([]Document{doc("x", StatusApproved, now, at(time.Hour))}, []string{"x"}, now)
		assert.True(t, r.Ready())
	})
}

func TestHealthStatus(t *testing.T) {
	assert.Equal(t, StatusDraft, HealthStatus(nil, "health_certificate", now))
	docs := []Document{doc("health_certificate", StatusUnderReview, now, nil)}
	assert.Equal(t, StatusUnderReview, HealthStatus(docs, "health_certificate", now))
	docs = append(docs, doc("health_certificate", StatusApproved, now.Add(time.Minute), at(-time.Second)))
	assert.Equal(t, StatusExpired, HealthStatus(docs, "health_certificate", now.Add(2*time.Minute)))
}

func TestDocumentTransition(t *testing.T) {
	d := doc("x", StatusDraft, now, nil)
	require.NoError(t, d.Transition(StatusSubmitted, "", now))
	require.NoError(t, d.Transition(StatusUnderReview, "", now))
	require.NoError(t, d.Transition(StatusNeedsAction, "signature missing", now))
	assert.Equal(t, "signature missing", d.Notes)
	assert.NotNil(t, d.ReviewedAt)
	require.NoError(t, d.Transition(StatusSubmitted, "", now))

	err := d.Transition(StatusApproved, "", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	expired := doc("y", StatusUnderReview, now, at(-time.Hour))
	err = expired.Transition(StatusApproved, "", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
}

func TestParseOwner(t *testing.T) {
	listingID := id.ListingID(uuid.New())
	o, err := ParseOwner("listing", listingID.String())
	require.NoError(t, err)
	assert.Equal(t, ListingOwner(listingID), o)

	_, err = ParseOwner("user", uuid.NewString())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	_, err = ParseOwner("shipment", "nope")
	assert.Error(t, err)
}

var docTypes = []string{"health_certificate", "import_permit", "transport_manifest"}

func genDocument() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, len(docTypes)-1),
		gen.IntRange(0, 4),
		gen.IntRange(-100, 0),
		gen.IntRange(-3, 3),
		gen.Bool(),
	).Map(func(v []any) Document {
		statuses := []Status{StatusDraft, StatusSubmitted, StatusUnderReview, StatusNeedsAction, StatusApproved}
		var expiry *time.Time
		if v[4].(bool) {
			expiry = at(time.Duration(v[3].(int)) * time.Hour)
		}
		return doc(docTypes[v[0].(int)], statuses[v[1].(int)], now.Add(time.Duration(v[2].(int))*time.Hour), expiry)
	})
}

func TestReadinessProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 300
	properties := gopter.NewProperties(params)

	properties.Property("ready implies every required type has an approved unexpired latest document", prop.ForAll(
		func(docs []Document) bool {
			r := ComputeReadiness(docs, docTypes, now)
			if !r.Ready() {
				return true
			}
			latest := Latest(docs)
			for _, t := range docTypes {
				d, ok := latest[t]
				if !ok || d.Status != StatusApproved || d.ExpiredAt(now) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genDocument()),
	))

	properties.Property("each required type lands in exactly one set", prop.ForAll(
		func(docs []Document) bool {
			r := ComputeReadiness(docs, docTypes, now)
			return len(r.Complete)+len(r.Missing)+len(r.Pending)+len(r.Expired) == len(docTypes)
		},
		gen.SliceOf(genDocument()),
	))

	properties.TestingRun(t)
}
