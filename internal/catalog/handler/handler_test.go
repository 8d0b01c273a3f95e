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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"terralegit/internal/catalog/handler/mocks"
	"terralegit/internal/catalog/models"
	"terralegit/internal/catalog/service"
	id "terralegit/pkg/domain"
	dErrors "terralegit/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type CatalogHandlerSuite struct {
	suite.Suite
	router *chi.Mux
	svc    *mocks.MockService
}

func TestCatalogHandlerSuite(t *testing.T) {
	suite.Run(t, new(CatalogHandlerSuite))
}

func (s *CatalogHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.svc = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	New(s.svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *CatalogHandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.T(), json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *CatalogHandlerSuite) TestAddSpecies() {
	s.Run("valid body creates species", func() {
		speciesID := id.SpeciesID(uuid.New())
		s.svc.EXPECT().AddSpecies(gomock.Any(), service.AddSpeciesCommand{
			CommonName:     "Axolotl",
			ScientificName: "Ambystoma mexicanum",
			Category:       models.CategoryCaptiveBredSpecialty,
			CareLevel:      models.CareIntermediate,
		}).Return(&models.Species{
			ID:             speciesID,
			CommonName:     "Axolotl",
			ScientificName: "Ambystoma mexicanum",
			Category:       models.CategoryCaptiveBredSpecialty,
			CareLevel:      models.CareIntermediate,
			CreatedAt:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		}, nil)

		w := s.do(http.MethodPost, "/species", map[string]string{
			"common_name":     "Axolotl",
			"scientific_name": "Ambystoma mexicanum",
			"category":        "captive_bred_specialty",
			"care_level":      "intermediate",
		})
		assert.Equal(s.T(), http.StatusCreated, w.Code)
		var resp SpeciesResponse
		require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(s.T(), speciesID.String(), resp.ID)
	})

	s.Run("unknown category is rejected before the service", func() {
		w := s.do(http.MethodPost, "/species", map[string]string{
			"common_name": "Dragon", "scientific_name": "Draco", "category": "mythical", "care_level": "expert",
		})
		assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	})

	s.Run("authorization failure maps to forbidden", func() {
		s.svc.EXPECT().AddSpecies(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeAuthorizationDenied, "species.manage denied"))
		w := s.do(http.MethodPost, "/species", map[string]string{
			"common_name": "Goat", "scientific_name": "Capra hircus", "category": "livestock", "care_level": "beginner",
		})
		assert.Equal(s.T(), http.StatusForbidden, w.Code)
	})
}

func (s *CatalogHandlerSuite) TestGetSpecies() {
	s.Run("malformed id", func() {
		w := s.do(http.MethodGet, "/species/not-a-uuid", nil)
		assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	})

	s.Run("not found", func() {
		speciesID := id.SpeciesID(uuid.New())
		s.svc.EXPECT().GetSpecies(gomock.Any(), speciesID).Return(nil, dErrors.New(dErrors.CodeNotFound, "species not found"))
		w := s.do(http.MethodGet, "/species/"+speciesID.String(), nil)
		assert.Equal(s.T(), http.StatusNotFound, w.Code)
	})
}

func (s *CatalogHandlerSuite) TestListSpeciesFilter() {
	livestock := models.CategoryLivestock
	s.svc.EXPECT().ListSpecies(gomock.Any(), &livestock).Return([]*models.Species{}, nil)
	w := s.do(http.MethodGet, "/species?category=livestock", nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.JSONEq(s.T(), `{"species":[]}`, w.Body.String())
}
