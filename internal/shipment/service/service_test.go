package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/suite"

	acquisition "terralegit/internal/acquisition/models"
	docs "terralegit/internal/documents/models"
	docservice "terralegit/internal/documents/service"
	docstore "terralegit/internal/documents/store"
	"terralegit/internal/lifecycle"
	"terralegit/internal/platform/blob"
	"terralegit/internal/shipment/models"
	"terralegit/internal/shipment/store"
	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
	audit "terralegit/pkg/platform/audit"
	"terralegit/pkg/platform/audit/recorder"
	auditmemory "terralegit/pkg/platform/audit/store/memory"
	"terralegit/pkg/platform/sentinel"
	"terralegit/pkg/platform/tx"
	"terralegit/pkg/requestcontext"
)

type caseTable struct {
	cases   map[id.CaseID]*acquisition.Case
	owners  map[id.CaseID]id.UserID
	settled []id.CaseID
	settler id.Actor
}

func (t *caseTable) LookupCase(_ context.Context, caseID id.CaseID) (*acquisition.Case, error) {
	c, ok := t.cases[caseID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (t *caseTable) ResolveDocumentOwner(_ context.Context, owner docs.Owner) (id.UserID, error) {
	u, ok := t.owners[id.CaseID(owner.ID)]
	if !ok {
		return id.UserID{}, sentinel.ErrNotFound
	}
	return u, nil
}

func (t *caseTable) SettleDelivery(ctx context.Context, caseID id.CaseID) (*acquisition.Case, error) {
	t.settled = append(t.settled, caseID)
	t.settler = requestcontext.Actor(ctx)
	return t.LookupCase(ctx, caseID)
}

type ShipmentServiceSuite struct {
	suite.Suite
	svc       *Service
	documents *docservice.Service
	cases     *caseTable
	audits    *auditmemory.InMemoryStore
	checks    *store.InMemory
	now       time.Time
	buyer     id.Actor
}

func TestShipmentServiceSuite(t *testing.T) {
	suite.Run(t, new(ShipmentServiceSuite))
}

func (s *ShipmentServiceSuite) SetupTest() {
	s.now = time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	s.audits = auditmemory.NewInMemoryStore()
	s.checks = store.NewInMemory()
	s.cases = &caseTable{cases: map[id.CaseID]*acquisition.Case{}, owners: map[id.CaseID]id.UserID{}}
	s.buyer = id.Actor{ID: id.UserID(uuid.New()), Role: id.RoleVerifiedBuyer, Status: id.VerificationApproved}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := tx.NewMemoryRunner()
	auditor := recorder.New(s.audits)
	resolvers := docservice.Resolvers{}
	s.documents = docservice.New(docstore.NewInMemory(), runner, auditor, blob.NewMemory("memory://docs"), resolvers,
		docservice.WithLogger(logger))
	s.svc = New(s.checks, runner, auditor, s.cases, s.documents,
		WithLogger(logger), WithRequiredDocs([]string{"transport_manifest", "welfare_plan"}))
	resolvers[docs.OwnerShipment] = s.svc
}

func (s *ShipmentServiceSuite) as(actor id.Actor) context.Context {
	return requestcontext.WithActor(requestcontext.WithTime(context.Background(), s.now), actor)
}

func (s *ShipmentServiceSuite) admin() context.Context {
	return s.as(id.Actor{ID: id.UserID(uuid.New()), Role: id.RoleComplianceAdmin})
}

func (s *ShipmentServiceSuite) system() context.Context {
	return s.as(id.SystemActor())
}

func (s *ShipmentServiceSuite) compliantCase() *acquisition.Case {
	c := acquisition.New(id.CaseID(uuid.New()), id.BuyerID(uuid.New()), id.ListingID(uuid.New()), "DE", "", s.now)
	c.ComplianceState = acquisition.ComplianceDocumentsApproved
	s.cases.cases[c.ID] = c
	s.cases.owners[c.ID] = s.buyer.ID
	return c
}

func (s *ShipmentServiceSuite) create(c *acquisition.Case) *models.Shipment {
	sh, err := s.svc.CreateShipment(s.admin(), CreateShipmentCommand{
		CaseID:        c.ID,
		OriginCountry: "us",
		Route: []models.Waypoint{
			{Location: "Newark", CountryCode: "US"},
			{Location: "Frankfurt", CountryCode: "DE", Mode: "air"},
		},
		WelfarePlanID: "wp-42",
	})
	s.Require().NoError(err)
	return sh
}

func (s *ShipmentServiceSuite) approveDoc(shipmentID id.ShipmentID, docType string) {
	d, err := s.documents.Upload(s.admin(), docservice.UploadCommand{
		Owner: docs.ShipmentOwner(shipmentID), Type: docType, FileName: docType + ".pdf", FileURL: "s3://docs/" + docType, Submit: true,
	})
	s.Require().NoError(err)
	_, err = s.documents.StartReview(s.admin(), d.ID)
	s.Require().NoError(err)
	_, err = s.documents.Approve(s.admin(), d.ID)
	s.Require().NoError(err)
}

// advanceTo walks a new shipment forward to target.
func (s *ShipmentServiceSuite) advanceTo(sh *models.Shipment, target models.Status) *models.Shipment {
	order := []models.Status{
		models.StatusQuoteProvided, models.StatusDocumentsPending, models.StatusDocumentsApproved,
		models.StatusBookingConfirmed, models.StatusInTransit, models.StatusCustomsClearance, models.StatusDelivered,
	}
	for _, to := range order {
		if sh.Status == target {
			break
		}
		if to == models.StatusDocumentsApproved {
			s.approveDoc(sh.ID, "transport_manifest")
			s.approveDoc(sh.ID, "welfare_plan")
		}
		var err error
		sh, err = s.svc.AdvanceShipment(s.system(), sh.ID, to)
		s.Require().NoError(err, "advance to %s", to)
	}
	s.Require().Equal(target, sh.Status)
	return sh
}

func (s *ShipmentServiceSuite) guardOf(err error) string {
	s.Require().True(dErrors.HasCode(err, dErrors.CodeInvalidTransition), "got %v", err)
	te, ok := lifecycle.AsTransitionError(err)
	s.Require().True(ok)
	return te.Guard
}

func (s *ShipmentServiceSuite) auditActions(shipmentID id.ShipmentID) []audit.Action {
	entries, err := s.audits.ListByEntity(context.Background(), audit.EntityShipment, shipmentID.String())
	s.Require().NoError(err)
	out := make([]audit.Action, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Action)
	}
	return out
}

func (s *ShipmentServiceSuite) TestCreateShipment() {
	s.Run("compliant case gets a quote request", func() {
		c := s.compliantCase()
		sh := s.create(c)
		s.Equal(models.StatusQuoteRequested, sh.Status)
		s.Equal("US", sh.OriginCountry)
		s.Equal("DE", sh.DestinationCountry)
		s.Equal(c.ID, *sh.CaseID)
		s.Equal([]audit.Action{audit.ActionShipmentCreated}, s.auditActions(sh.ID))
	})

	s.Run("case must be documents_approved", func() {
		c := s.compliantCase()
		c.ComplianceState = acquisition.ComplianceDocumentsPending
		_, err := s.svc.CreateShipment(s.admin(), CreateShipmentCommand{CaseID: c.ID, OriginCountry: "US"})
		s.Equal(guardCaseApproved, s.guardOf(err))
	})

	s.Run("withdrawn case cannot ship", func() {
		c := s.compliantCase()
		c.WithdrawnAt = &s.now
		_, err := s.svc.CreateShipment(s.admin(), CreateShipmentCommand{CaseID: c.ID, OriginCountry: "US"})
		s.Equal(guardCaseActive, s.guardOf(err))
	})

	s.Run("one shipment per case", func() {
		c := s.compliantCase()
		s.create(c)
		_, err := s.svc.CreateShipment(s.admin(), CreateShipmentCommand{CaseID: c.ID, OriginCountry: "US"})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("cancelled shipment can be replaced", func() {
		c := s.compliantCase()
		first := s.create(c)
		_, err := s.svc.CancelShipment(s.admin(), first.ID, "carrier withdrew quote")
		s.Require().NoError(err)

		second := s.create(c)
		s.NotEqual(first.ID, second.ID)
		s.Equal(models.StatusQuoteRequested, second.Status)

		_, err = s.svc.CreateShipment(s.admin(), CreateShipmentCommand{CaseID: c.ID, OriginCountry: "US"})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		s.advanceTo(second, models.StatusDelivered)
		delivered, err := s.svc.DeliveredForCase(context.Background(), c.ID)
		s.Require().NoError(err)
		s.True(delivered)
	})

	s.Run("buyers cannot create shipments", func() {
		c := s.compliantCase()
		_, err := s.svc.CreateShipment(s.as(s.buyer), CreateShipmentCommand{CaseID: c.ID, OriginCountry: "US"})
		s.True(dErrors.HasCode(err, dErrors.CodeAuthorizationDenied))
	})

	s.Run("arrival before departure", func() {
		c := s.compliantCase()
		dep := s.now.Add(48 * time.Hour)
		arr := s.now
		_, err := s.svc.CreateShipment(s.admin(), CreateShipmentCommand{CaseID: c.ID, OriginCountry: "US", EstimatedDeparture: &dep, EstimatedArrival: &arr})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ShipmentServiceSuite) TestAdvanceShipment() {
	s.Run("documents gate documents_approved", func() {
		sh := s.advanceTo(s.create(s.compliantCase()), models.StatusDocumentsPending)
		s.approveDoc(sh.ID, "transport_manifest")
		_, err := s.svc.AdvanceShipment(s.system(), sh.ID, models.StatusDocumentsApproved)
		s.Equal("documents missing: welfare_plan", s.guardOf(err))
	})

	s.Run("no skipping into transit", func() {
		sh := s.advanceTo(s.create(s.compliantCase()), models.StatusDocumentsApproved)
		_, err := s.svc.AdvanceShipment(s.system(), sh.ID, models.StatusInTransit)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		got, err := s.svc.GetShipment(s.admin(), sh.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusDocumentsApproved, got.Status)
	})

	s.Run("rejected case stops the shipment", func() {
		c := s.compliantCase()
		sh := s.create(c)
		c.ComplianceState = acquisition.ComplianceRejected
		_, err := s.svc.AdvanceShipment(s.system(), sh.ID, models.StatusQuoteProvided)
		s.Equal(guardCaseActive, s.guardOf(err))
	})

	s.Run("cancel goes through its own operation", func() {
		sh := s.create(s.compliantCase())
		_, err := s.svc.AdvanceShipment(s.system(), sh.ID, models.StatusCancelled)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ShipmentServiceSuite) TestFailedCheckpointHoldsShipment() {
	sh := s.advanceTo(s.create(s.compliantCase()), models.StatusInTransit)

	cp, err := s.svc.RecordCheckpoint(s.system(), sh.ID, RecordCheckpointCommand{
		Type: models.CheckpointBorder, Location: "Frankfurt", ConditionNotes: "two animals dehydrated", Passed: false,
	})
	s.Require().NoError(err)
	s.False(cp.Passed)

	_, err = s.svc.AdvanceShipment(s.system(), sh.ID, models.StatusCustomsClearance)
	s.Equal("shipment is held for welfare", s.guardOf(err))

	_, err = s.svc.ClearWelfareHold(s.system(), sh.ID, "vet cleared")
	s.True(dErrors.HasCode(err, dErrors.CodeAuthorizationDenied))

	cleared, err := s.svc.ClearWelfareHold(s.admin(), sh.ID, "vet cleared after rehydration")
	s.Require().NoError(err)
	s.False(cleared.HeldForWelfare)
	s.NotNil(cleared.WelfareClearedAt)

	got, err := s.svc.AdvanceShipment(s.system(), sh.ID, models.StatusCustomsClearance)
	s.Require().NoError(err)
	s.Equal(models.StatusCustomsClearance, got.Status)

	cps, err := s.svc.ListCheckpoints(s.admin(), sh.ID)
	s.Require().NoError(err)
	s.Require().Len(cps, 1)
	s.Equal(cp.ID, cps[0].ID)

	actions := s.auditActions(sh.ID)
	s.Contains(actions, audit.ActionCheckpointRecorded)
	s.Contains(actions, audit.ActionWelfareHoldCleared)
}

func (s *ShipmentServiceSuite) TestDeliveryReleasesFunds() {
	c := s.compliantCase()
	sh := s.advanceTo(s.create(c), models.StatusCustomsClearance)

	delivered, err := s.svc.DeliveredForCase(context.Background(), c.ID)
	s.Require().NoError(err)
	s.False(delivered)

	got, err := s.svc.AdvanceShipment(s.admin(), sh.ID, models.StatusDelivered)
	s.Require().NoError(err)
	s.NotNil(got.ActualArrival)
	s.Equal([]id.CaseID{c.ID}, s.cases.settled)
	s.Equal(id.RoleSystem, s.cases.settler.Role)

	delivered, err = s.svc.DeliveredForCase(context.Background(), c.ID)
	s.Require().NoError(err)
	s.True(delivered)

	_, err = s.svc.CancelShipment(s.admin(), sh.ID, "too late")
	s.Equal("delivered is terminal", s.guardOf(err))
}

func (s *ShipmentServiceSuite) TestCancelShipment() {
	s.Run("reason required", func() {
		sh := s.create(s.compliantCase())
		_, err := s.svc.CancelShipment(s.admin(), sh.ID, "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("held shipment can cancel", func() {
		sh := s.advanceTo(s.create(s.compliantCase()), models.StatusBookingConfirmed)
		_, err := s.svc.RecordCheckpoint(s.system(), sh.ID, RecordCheckpointCommand{Type: models.CheckpointLoading, Location: "Newark"})
		s.Require().NoError(err)

		got, err := s.svc.CancelShipment(s.admin(), sh.ID, "animal unfit to travel")
		s.Require().NoError(err)
		s.Equal(models.StatusCancelled, got.Status)
		s.Equal("animal unfit to travel", got.CancelReason)
	})
}

// Delivery and cancellation are both terminal from customs_clearance, so
// only one of them can commit.
func (s *ShipmentServiceSuite) TestConcurrentCancelAndAdvance() {
	for range 10 {
		sh := s.advanceTo(s.create(s.compliantCase()), models.StatusCustomsClearance)
		before := len(s.auditActions(sh.ID))

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = s.svc.CancelShipment(s.admin(), sh.ID, "carrier grounded")
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = s.svc.AdvanceShipment(s.system(), sh.ID, models.StatusDelivered)
		}()
		wg.Wait()

		winners := 0
		for _, err := range errs {
			if err == nil {
				winners++
				continue
			}
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition), "loser got %v", err)
		}
		s.Equal(1, winners)
		s.Len(s.auditActions(sh.ID), before+1)

		got, err := s.svc.GetShipment(s.admin(), sh.ID)
		s.Require().NoError(err)
		if errs[0] == nil {
			s.Equal(models.StatusCancelled, got.Status)
		} else {
			s.Equal(models.StatusDelivered, got.Status)
		}
	}
}

func (s *ShipmentServiceSuite) TestAuditOutageDropsCheckpoint() {
	sh := s.advanceTo(s.create(s.compliantCase()), models.StatusInTransit)
	s.audits.SetUnavailable(errors.New("disk full"))
	_, err := s.svc.RecordCheckpoint(s.system(), sh.ID, RecordCheckpointCommand{Type: models.CheckpointTransit, Location: "Atlantic"})
	s.True(dErrors.HasCode(err, dErrors.CodeStorageUnavailable))
	s.audits.SetUnavailable(nil)

	got, err := s.svc.GetShipment(s.admin(), sh.ID)
	s.Require().NoError(err)
	s.False(got.HeldForWelfare)
	cps, err := s.svc.ListCheckpoints(s.admin(), sh.ID)
	s.Require().NoError(err)
	s.Empty(cps)
}

func (s *ShipmentServiceSuite) TestVisibility() {
	sh := s.create(s.compliantCase())

	_, err := s.svc.GetShipment(s.as(s.buyer), sh.ID)
	s.NoError(err)

	other := id.Actor{ID: id.UserID(uuid.New()), Role: id.RoleVerifiedBuyer, Status: id.VerificationApproved}
	_, err = s.svc.GetShipment(s.as(other), sh.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeAuthorizationDenied))

	owner, err := s.svc.ResolveDocumentOwner(context.Background(), docs.ShipmentOwner(sh.ID))
	s.Require().NoError(err)
	s.Equal(s.buyer.ID, owner)
}

func TestHeldShipmentNeverMovesForward(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 40
	properties := gopter.NewProperties(parameters)

	properties.Property("customs_clearance reachable iff every checkpoint passed or the hold was cleared", prop.ForAll(
		func(results []bool, clear bool) bool {
			ss := new(ShipmentServiceSuite)
			ss.SetT(t)
			ss.SetupTest()
			sh := ss.advanceTo(ss.create(ss.compliantCase()), models.StatusInTransit)

			failed := false
			for _, passed := range results {
				if _, err := ss.svc.RecordCheckpoint(ss.system(), sh.ID, RecordCheckpointCommand{
					Type: models.CheckpointTransit, Location: "en route", Passed: passed,
				}); err != nil {
					return false
				}
				failed = failed || !passed
			}
			if failed && clear {
				if _, err := ss.svc.ClearWelfareHold(ss.admin(), sh.ID, "cleared"); err != nil {
					return false
				}
			}

			_, err := ss.svc.AdvanceShipment(ss.system(), sh.ID, models.StatusCustomsClearance)
			if failed && !clear {
				return dErrors.HasCode(err, dErrors.CodeInvalidTransition)
			}
			return err == nil
		},
		gen.SliceOfN(4, gen.Bool()),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
