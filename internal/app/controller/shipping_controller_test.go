package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lumeatelie/lume-backend/config"
	"github.com/lumeatelie/lume-backend/internal/app/model"
	"github.com/lumeatelie/lume-backend/internal/app/repository"
	"github.com/lumeatelie/lume-backend/internal/app/service"
	"github.com/lumeatelie/lume-backend/internal/db"
	"github.com/lumeatelie/lume-backend/pkg/cep/viacep"
)

type stubCEPClient struct {
	states map[string]string
}

func (s *stubCEPClient) Lookup(_ context.Context, cep string) (*viacep.Address, error) {
	uf, ok := s.states[cep]
	if !ok {
		return nil, viacep.ErrCEPNotFound
	}
	return &viacep.Address{CEP: cep, UF: uf}, nil
}

func setupShippingControllerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	shippingRepo := repository.NewShippingRepository(testDB)
	cepClient := &stubCEPClient{states: map[string]string{
		"01310100": "SP",
	}}
	shippingService := service.NewShippingService(shippingRepo, cepClient, config.ShippingConfig{
		OriginCEP:            "88010000",
		OriginState:          "SC",
		FallbackCostCents:    2500,
		FallbackDeliveryDays: 10,
	})
	shippingController := NewShippingController(shippingService)

	require.NoError(t, testDB.Create(&model.ShippingSettings{
		OriginCEP:           "88010000",
		OriginState:         "SC",
		OriginCity:          "Florianópolis",
		DefaultCostCents:    2000,
		DefaultDeliveryDays: 5,
	}).Error)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/shipping/estimate", shippingController.Estimate)

	return router, testDB
}

func postEstimate(router *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/shipping/estimate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestShippingController_Estimate_MatchingRule(t *testing.T) {
	router, testDB := setupShippingControllerTest(t)

	require.NoError(t, testDB.Create(&model.ShippingConfig{
		Name:          "Sudeste",
		RegionType:    model.RegionOtherStates,
		BaseCostCents: 3200,
		DeliveryDays:  7,
		IsActive:      true,
		Priority:      10,
	}).Error)

	w := postEstimate(router, EstimateRequest{
		CEPDestination: "01310-100",
		Weight:         1.5,
	})

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "01310-100", response["cep_destination"])
	assert.Equal(t, float64(3200), response["cost_cents"])
	assert.Equal(t, float64(7), response["delivery_days"])
	assert.Equal(t, "Sudeste", response["service_name"])
	assert.Equal(t, "database", response["source"])
}

func TestShippingController_Estimate_FallsBackToDefault(t *testing.T) {
	router, _ := setupShippingControllerTest(t)

	w := postEstimate(router, EstimateRequest{
		CEPDestination: "01310100",
		Weight:         1.0,
	})

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(2000), response["cost_cents"])
	assert.Equal(t, "default", response["source"])
}

func TestShippingController_Estimate_InvalidCEP(t *testing.T) {
	router, _ := setupShippingControllerTest(t)

	w := postEstimate(router, EstimateRequest{
		CEPDestination: "123",
		Weight:         1.0,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShippingController_Estimate_MissingWeight(t *testing.T) {
	router, _ := setupShippingControllerTest(t)

	w := postEstimate(router, map[string]interface{}{
		"cep_destination": "01310100",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
