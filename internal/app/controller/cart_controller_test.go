package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumeatelie/lume-backend/internal/app/model"
	"github.com/lumeatelie/lume-backend/internal/app/repository"
	"github.com/lumeatelie/lume-backend/internal/app/service"
	"github.com/lumeatelie/lume-backend/internal/db"
	"github.com/lumeatelie/lume-backend/internal/events"
	"github.com/lumeatelie/lume-backend/internal/middleware"
	"github.com/lumeatelie/lume-backend/internal/websocket"
)

func setupCartControllerTest(t *testing.T) (*gin.Engine, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewMemoryCartRepository()
	productRepo := repository.NewProductRepository(testDB)
	bus := events.NewBus()
	cartService := service.NewCartService(cartRepo, productRepo, bus)
	cartController := NewCartController(cartService, websocket.NewHub(), bus)

	product := &model.Product{
		Name:       "Tábua de Corte Pinus",
		Slug:       "tabua-de-corte-pinus",
		PriceCents: 18900,
		WeightKg:   1.2,
		Wood:       model.WoodPinus,
		IsActive:   true,
	}
	require.NoError(t, testDB.Create(product).Error)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	cart := router.Group("/cart")
	cart.Use(middleware.CartSession())
	{
		cart.GET("", cartController.GetCart)
		cart.DELETE("", cartController.ClearCart)
		cart.POST("/items", cartController.AddOrReplaceLine)
		cart.PUT("/items/:productId", cartController.SetQuantity)
		cart.DELETE("/items/:productId", cartController.RemoveLine)
	}

	return router, product
}

func doCartRequest(router *gin.Engine, method, path, sessionToken string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if sessionToken != "" {
		req.Header.Set(middleware.CartSessionHeader, sessionToken)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCartController_GetCart_IssuesSessionToken(t *testing.T) {
	router, _ := setupCartControllerTest(t)

	w := doCartRequest(router, http.MethodGet, "/cart", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	issued := w.Header().Get(middleware.CartSessionHeader)
	require.NotEmpty(t, issued)
	_, err := uuid.Parse(issued)
	assert.NoError(t, err)

	var view service.CartView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Empty(t, view.Lines)
	assert.Zero(t, view.SubtotalCents)
}

func TestCartController_MalformedSessionToken(t *testing.T) {
	router, _ := setupCartControllerTest(t)

	w := doCartRequest(router, http.MethodGet, "/cart", "not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartController_AddAndGet(t *testing.T) {
	router, product := setupCartControllerTest(t)
	session := uuid.New().String()

	w := doCartRequest(router, http.MethodPost, "/cart/items", session, CartLineRequest{
		ProductID: product.ID,
		Quantity:  2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doCartRequest(router, http.MethodGet, "/cart", session, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view service.CartView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Len(t, view.Lines, 1)
	assert.Equal(t, product.ID, view.Lines[0].ProductID)
	assert.Equal(t, 2, view.Lines[0].Quantity)
	assert.Equal(t, int64(37800), view.SubtotalCents)
	assert.Equal(t, w.Header().Get(middleware.CartSessionHeader), session)
}

func TestCartController_AddUnknownProduct(t *testing.T) {
	router, _ := setupCartControllerTest(t)

	w := doCartRequest(router, http.MethodPost, "/cart/items", uuid.New().String(), CartLineRequest{
		ProductID: 9999,
		Quantity:  1,
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartController_PersonalizationOnPlainProduct(t *testing.T) {
	router, product := setupCartControllerTest(t)

	w := doCartRequest(router, http.MethodPost, "/cart/items", uuid.New().String(), CartLineRequest{
		ProductID:           product.ID,
		Quantity:            1,
		PersonalizationNote: "Gravar nome",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartController_SetQuantityAndRemove(t *testing.T) {
	router, product := setupCartControllerTest(t)
	session := uuid.New().String()

	w := doCartRequest(router, http.MethodPost, "/cart/items", session, CartLineRequest{
		ProductID: product.ID,
		Quantity:  1,
	})
	require.Equal(t, http.StatusOK, w.Code)

	qty := 3
	w = doCartRequest(router, http.MethodPut, fmt.Sprintf("/cart/items/%d", product.ID), session, SetQuantityRequest{
		Quantity: &qty,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var view service.CartView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 3, view.Lines[0].Quantity)

	w = doCartRequest(router, http.MethodDelete, fmt.Sprintf("/cart/items/%d", product.ID), session, nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Empty(t, view.Lines)
}

func TestCartController_RemoveMissingLine(t *testing.T) {
	router, product := setupCartControllerTest(t)

	w := doCartRequest(router, http.MethodDelete, fmt.Sprintf("/cart/items/%d", product.ID), uuid.New().String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartController_ClearCart(t *testing.T) {
	router, product := setupCartControllerTest(t)
	session := uuid.New().String()

	w := doCartRequest(router, http.MethodPost, "/cart/items", session, CartLineRequest{
		ProductID: product.ID,
		Quantity:  2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doCartRequest(router, http.MethodDelete, "/cart", session, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doCartRequest(router, http.MethodGet, "/cart", session, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view service.CartView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Empty(t, view.Lines)
}
