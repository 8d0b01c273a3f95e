package handler

import (
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

	"terralegit/internal/audit/handler/mocks"
	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
	audit "terralegit/pkg/platform/audit"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type AuditHandlerSuite struct {
	suite.Suite
	router *chi.Mux
	svc    *mocks.MockService
}

func TestAuditHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuditHandlerSuite))
}

func (s *AuditHandlerSuite) SetupTest() {
	s.svc = mocks.NewMockService(gomock.NewController(s.T()))
	s.router = chi.NewRouter()
	New(s.svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *AuditHandlerSuite) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func (s *AuditHandlerSuite) TestHistory() {
	s.svc.EXPECT().History(gomock.Any(), audit.EntityShipment, "abc").Return([]audit.Entry{{
		ID:         id.AuditLogID(uuid.New()),
		ActorID:    "system",
		Action:     audit.ActionCheckpointRecorded,
		EntityType: audit.EntityShipment,
		EntityID:   "abc",
		Timestamp:  time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}}, nil)

	w := s.get("/audit/shipment/abc")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"action":"welfare_checkpoint_recorded"`)
}

func (s *AuditHandlerSuite) TestRecent() {
	s.Run("limit is passed through", func() {
		s.svc.EXPECT().Recent(gomock.Any(), 10).Return(nil, nil)
		w := s.get("/audit?limit=10")
		s.Equal(http.StatusOK, w.Code)
		s.JSONEq(`{"entries":[]}`, w.Body.String())
	})

	s.Run("non-numeric limit", func() {
		w := s.get("/audit?limit=ten")
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("denied", func() {
		s.svc.EXPECT().Recent(gomock.Any(), 0).Return(nil, dErrors.New(dErrors.CodeAuthorizationDenied, "audit.read denied"))
		w := s.get("/audit")
		s.Equal(http.StatusForbidden, w.Code)
	})
}
