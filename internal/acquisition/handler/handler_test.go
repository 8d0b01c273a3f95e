package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"terralegit/internal/acquisition/handler/mocks"
	"terralegit/internal/acquisition/models"
	docs "terralegit/internal/documents/models"
	"terralegit/internal/lifecycle"
	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type CaseHandlerSuite struct {
	suite.Suite
	router *chi.Mux
	svc    *mocks.MockService
}

func TestCaseHandlerSuite(t *testing.T) {
	suite.Run(t, new(CaseHandlerSuite))
}

func (s *CaseHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.svc = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	New(s.svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *CaseHandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func sampleCase() *models.Case {
	return models.New(id.CaseID(uuid.New()), id.BuyerID(uuid.New()), id.ListingID(uuid.New()), "DE", "",
		time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
}

func (s *CaseHandlerSuite) TestOpen() {
	s.Run("listing id reaches the service", func() {
		c := sampleCase()
		s.svc.EXPECT().OpenCase(gomock.Any(), c.ListingID, "two heifers").Return(c, nil)

		w := s.do(http.MethodPost, "/cases", map[string]string{"listing_id": c.ListingID.String(), "notes": "two heifers"})
		s.Equal(http.StatusCreated, w.Code)
		var resp CaseResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("eligibility_check", resp.ComplianceState)
		s.Equal("pending", resp.PaymentState)
		s.Equal([]string{}, resp.RequiredDocs)
	})

	s.Run("unknown fields are refused", func() {
		w := s.do(http.MethodPost, "/cases", map[string]string{"listing_id": uuid.NewString(), "buyer_id": uuid.NewString()})
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("duplicate active case", func() {
		listingID := id.ListingID(uuid.New())
		s.svc.EXPECT().OpenCase(gomock.Any(), listingID, "").
			Return(nil, dErrors.New(dErrors.CodeConflict, "an active case already exists for this buyer and listing"))

		w := s.do(http.MethodPost, "/cases", map[string]string{"listing_id": listingID.String()})
		s.Equal(http.StatusConflict, w.Code)
	})
}

func (s *CaseHandlerSuite) TestAdvanceReportsUnmetGuard() {
	c := sampleCase()
	s.svc.EXPECT().AdvanceCompliance(gomock.Any(), c.ID).
		Return(nil, lifecycle.Reject(lifecycle.MachineCompliance, "documents_pending", "documents_approved", "documents expired: import_permit"))

	w := s.do(http.MethodPost, "/cases/"+c.ID.String()+"/advance", nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Contains(w.Body.String(), "documents expired: import_permit")
}

func (s *CaseHandlerSuite) TestReadiness() {
	c := sampleCase()
	s.svc.EXPECT().Readiness(gomock.Any(), c.ID).Return(docs.Readiness{
		Complete: []string{"health_certificate"},
		Missing:  []string{"import_permit"},
	}, nil)

	w := s.do(http.MethodGet, "/cases/"+c.ID.String()+"/readiness", nil)
	s.Equal(http.StatusOK, w.Code)
	var resp struct {
		Ready   bool     `json:"ready"`
		Missing []string `json:"missing"`
		Expired []string `json:"expired"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.False(resp.Ready)
	s.Equal([]string{"import_permit"}, resp.Missing)
	s.Equal([]string{}, resp.Expired)
}

func (s *CaseHandlerSuite) TestPaymentCallbacks() {
	s.Run("reference is forwarded", func() {
		c := sampleCase()
		c.PaymentState = models.PaymentAuthorized
		s.svc.EXPECT().AuthorizePayment(gomock.Any(), c.ID, "pi_123").Return(c, nil)

		w := s.do(http.MethodPost, "/cases/"+c.ID.String()+"/payment/authorize", map[string]string{"reference": "pi_123"})
		s.Equal(http.StatusOK, w.Code)
		s.Contains(w.Body.String(), `"payment_state":"authorized"`)
	})

	s.Run("denied callers get 403", func() {
		c := sampleCase()
		s.svc.EXPECT().CapturePayment(gomock.Any(), c.ID, "").
			Return(nil, dErrors.New(dErrors.CodeAuthorizationDenied, "role verified_buyer may not payment_callback"))

		w := s.do(http.MethodPost, "/cases/"+c.ID.String()+"/payment/capture", map[string]string{})
		s.Equal(http.StatusForbidden, w.Code)
	})

	s.Run("malformed case id", func() {
		w := s.do(http.MethodPost, "/cases/not-a-uuid/payment/refund", map[string]string{})
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *CaseHandlerSuite) TestReject() {
	s.Run("reason is required", func() {
		w := s.do(http.MethodPost, "/cases/"+uuid.NewString()+"/reject", map[string]string{"reason": " "})
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("rejected case", func() {
		c := sampleCase()
		c.ComplianceState = models.ComplianceRejected
		c.RejectionReason = "forged permit"
		s.svc.EXPECT().RejectCase(gomock.Any(), c.ID, "forged permit").Return(c, nil)

		w := s.do(http.MethodPost, "/cases/"+c.ID.String()+"/reject", map[string]string{"reason": "forged permit"})
		s.Equal(http.StatusOK, w.Code)
		s.Contains(w.Body.String(), `"rejection_reason":"forged permit"`)
	})
}

func (s *CaseHandlerSuite) TestListMine() {
	s.svc.EXPECT().ListMyCases(gomock.Any()).Return([]*models.Case{sampleCase(), sampleCase()}, nil)

	w := s.do(http.MethodGet, "/cases", nil)
	s.Equal(http.StatusOK, w.Code)
	var resp struct {
		Cases []CaseResponse `json:"cases"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Len(resp.Cases, 2)
}
