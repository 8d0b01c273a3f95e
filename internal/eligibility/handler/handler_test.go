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
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	catalog "terralegit/internal/catalog/models"
	"terralegit/internal/eligibility/handler/mocks"
	"terralegit/internal/eligibility/models"
	"terralegit/internal/eligibility/service"
	dErrors "terralegit/pkg/domain-errors"
	"terralegit/pkg/platform/httputil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type EligibilityHandlerSuite struct {
	suite.Suite
	router *chi.Mux
	svc    *mocks.MockService
}

func TestEligibilityHandlerSuite(t *testing.T) {
	suite.Run(t, new(EligibilityHandlerSuite))
}

func (s *EligibilityHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.svc = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	New(s.svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *EligibilityHandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(method, path, &buf))
	return w
}

func (s *EligibilityHandlerSuite) errorOf(w *httptest.ResponseRecorder) httputil.ErrorResponse {
	var resp httputil.ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (s *EligibilityHandlerSuite) TestEvaluate() {
	s.Run("eligible destination lists required documents", func() {
		s.svc.EXPECT().Evaluate(gomock.Any(), "DE", catalog.CategoryLivestock).Return(models.Result{
			CountryCode:  "DE",
			Category:     catalog.CategoryLivestock,
			Eligible:     true,
			RequiredDocs: []string{"health_certificate"},
		}, nil)

		w := s.do(http.MethodGet, "/eligibility?country=DE&category=livestock", nil)
		s.Equal(http.StatusOK, w.Code)
		var resp EligibilityResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.True(resp.Eligible)
		s.Equal([]string{"health_certificate"}, resp.RequiredDocs)
	})

	s.Run("restricted destination is a negative result", func() {
		s.svc.EXPECT().Evaluate(gomock.Any(), "US", catalog.CategoryConservation).Return(models.Result{
			CountryCode: "US",
			Category:    catalog.CategoryConservation,
			Reason:      models.ReasonRestricted,
		}, nil)

		w := s.do(http.MethodGet, "/eligibility?country=US&category=conservation", nil)
		s.Equal(http.StatusOK, w.Code)
		var resp EligibilityResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.False(resp.Eligible)
		s.Equal("restricted", resp.Reason)
		s.Equal([]string{}, resp.RequiredDocs)
	})

	s.Run("unknown destination is unprocessable", func() {
		unknown := models.Result{CountryCode: "ZZ", Category: catalog.CategoryLivestock, Reason: models.ReasonUnknownDestination}
		s.svc.EXPECT().Evaluate(gomock.Any(), "ZZ", catalog.CategoryLivestock).Return(models.Result{}, unknown.Err())

		w := s.do(http.MethodGet, "/eligibility?country=ZZ&category=livestock", nil)
		s.Equal(http.StatusUnprocessableEntity, w.Code)
		s.Equal(string(dErrors.CodeUnknownDestination), s.errorOf(w).Error)
	})

	s.Run("invalid category never reaches the service", func() {
		w := s.do(http.MethodGet, "/eligibility?country=DE&category=dragons", nil)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *EligibilityHandlerSuite) TestDestinations() {
	s.svc.EXPECT().VisibleDestinations(gomock.Any(), catalog.CategoryResearch).Return(nil, nil)

	w := s.do(http.MethodGet, "/destinations?category=research", nil)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"category":"research","destinations":[]}`, w.Body.String())
}

func (s *EligibilityHandlerSuite) TestUpsertRule() {
	s.Run("body is mapped onto the command", func() {
		inactive := false
		s.svc.EXPECT().UpsertRule(gomock.Any(), service.UpsertRuleCommand{
			CountryCode:  "nz",
			Name:         "New Zealand",
			Allowed:      []catalog.Category{catalog.CategoryLivestock},
			Restricted:   []catalog.Category{catalog.CategoryLivestock},
			RequiredDocs: []string{"import_permit"},
			Active:       false,
		}).Return(&models.CountryRule{
			CountryCode:  "NZ",
			Name:         "New Zealand",
			Allowed:      []catalog.Category{catalog.CategoryLivestock},
			Restricted:   []catalog.Category{catalog.CategoryLivestock},
			RequiredDocs: []string{"import_permit"},
			UpdatedAt:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		}, nil)

		w := s.do(http.MethodPut, "/country-rules/nz", UpsertRuleRequest{
			Name:         "New Zealand",
			Allowed:      []string{"livestock"},
			Restricted:   []string{"livestock"},
			RequiredDocs: []string{"import_permit"},
			Active:       &inactive,
		})
		s.Equal(http.StatusOK, w.Code)
		var resp RuleResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal([]string{"livestock"}, resp.Conflicts)
		s.False(resp.IsActive)
	})

	s.Run("missing name is a validation error", func() {
		w := s.do(http.MethodPut, "/country-rules/nz", map[string]any{"allowed_categories": []string{"livestock"}})
		s.Equal(http.StatusBadRequest, w.Code)
		s.Equal(string(dErrors.CodeValidation), s.errorOf(w).Error)
	})

	s.Run("denied caller gets forbidden", func() {
		s.svc.EXPECT().UpsertRule(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeAuthorizationDenied, "country_rule.manage denied"))

		w := s.do(http.MethodPut, "/country-rules/nz", UpsertRuleRequest{Name: "New Zealand"})
		s.Equal(http.StatusForbidden, w.Code)
	})
}

func (s *EligibilityHandlerSuite) TestRules() {
	rule := &models.CountryRule{CountryCode: "JP", Name: "Japan", IsActive: true}

	s.Run("list honours the active filter", func() {
		s.svc.EXPECT().ListRules(gomock.Any(), true).Return([]*models.CountryRule{rule}, nil)

		w := s.do(http.MethodGet, "/country-rules?active=true", nil)
		s.Equal(http.StatusOK, w.Code)
		s.Contains(w.Body.String(), `"country_code":"JP"`)
	})

	s.Run("missing rule is not found", func() {
		s.svc.EXPECT().GetRule(gomock.Any(), "ZZ").Return(nil, dErrors.New(dErrors.CodeNotFound, "country rule not found"))

		w := s.do(http.MethodGet, "/country-rules/ZZ", nil)
		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("deactivate returns the inactive rule", func() {
		s.svc.EXPECT().DeactivateRule(gomock.Any(), "JP").Return(&models.CountryRule{CountryCode: "JP", Name: "Japan"}, nil)

		w := s.do(http.MethodPost, "/country-rules/JP/deactivate", nil)
		s.Equal(http.StatusOK, w.Code)
		var resp RuleResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.False(resp.IsActive)
		s.Equal([]string{}, resp.RequiredDocs)
	})
}
