package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lumeatelie/lume-backend/internal/app/model"
	"github.com/lumeatelie/lume-backend/internal/app/service"
	"github.com/lumeatelie/lume-backend/internal/events"
	apperrors "github.com/lumeatelie/lume-backend/internal/errors"
	"github.com/lumeatelie/lume-backend/internal/middleware"
	"github.com/lumeatelie/lume-backend/internal/websocket"
)

type CartController struct {
	cartService service.CartService
	hub         *websocket.Hub
	bus         *events.Bus
}

func NewCartController(cartService service.CartService, hub *websocket.Hub, bus *events.Bus) *CartController {
	return &CartController{
		cartService: cartService,
		hub:         hub,
		bus:         bus,
	}
}

type CartLineRequest struct {
	ProductID                uint   `json:"product_id" binding:"required"`
	Quantity                 int    `json:"quantity" binding:"required"`
	PersonalizationImageURL  string `json:"personalization_image_url"`
	PersonalizationImagePath string `json:"personalization_image_path"`
	PersonalizationNote      string `json:"personalization_note"`
}

type SetQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// GetCart returns the session's cart
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sessionToken, ok := middleware.GetCartSession(c)
	if !ok {
		apperrors.BadRequest(c, apperrors.CartSessionRequired, "Sessão de carrinho ausente")
		return
	}

	view, err := ctrl.cartService.Get(c.Request.Context(), sessionToken)
	if err != nil {
		log.Error("Failed to fetch cart", err, map[string]interface{}{
			"cart_session": sessionToken,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, view)
}

// AddOrReplaceLine writes one cart line
// POST /api/v1/cart/items
func (ctrl *CartController) AddOrReplaceLine(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sessionToken, ok := middleware.GetCartSession(c)
	if !ok {
		apperrors.BadRequest(c, apperrors.CartSessionRequired, "Sessão de carrinho ausente")
		return
	}

	var req CartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Dados do item inválidos")
		return
	}

	view, err := ctrl.cartService.AddOrReplace(c.Request.Context(), sessionToken, model.CartLine{
		ProductID:                req.ProductID,
		Quantity:                 req.Quantity,
		PersonalizationImageURL:  req.PersonalizationImageURL,
		PersonalizationImagePath: req.PersonalizationImagePath,
		PersonalizationNote:      req.PersonalizationNote,
	})
	if err != nil {
		ctrl.respondCartError(c, err, sessionToken)
		return
	}

	log.Info("Cart line written via API", map[string]interface{}{
		"cart_session": sessionToken,
		"product_id":   req.ProductID,
	})
	c.JSON(http.StatusOK, view)
}

// SetQuantity updates one line's quantity; zero removes the line
// PUT /api/v1/cart/items/:productId
func (ctrl *CartController) SetQuantity(c *gin.Context) {
	sessionToken, ok := middleware.GetCartSession(c)
	if !ok {
		apperrors.BadRequest(c, apperrors.CartSessionRequired, "Sessão de carrinho ausente")
		return
	}

	productID, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "ID de produto inválido")
		return
	}

	var req SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Quantidade inválida")
		return
	}

	view, err := ctrl.cartService.SetQuantity(c.Request.Context(), sessionToken, uint(productID), *req.Quantity)
	if err != nil {
		ctrl.respondCartError(c, err, sessionToken)
		return
	}

	c.JSON(http.StatusOK, view)
}

// RemoveLine deletes one line
// DELETE /api/v1/cart/items/:productId
func (ctrl *CartController) RemoveLine(c *gin.Context) {
	sessionToken, ok := middleware.GetCartSession(c)
	if !ok {
		apperrors.BadRequest(c, apperrors.CartSessionRequired, "Sessão de carrinho ausente")
		return
	}

	productID, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "ID de produto inválido")
		return
	}

	view, err := ctrl.cartService.Remove(c.Request.Context(), sessionToken, uint(productID))
	if err != nil {
		ctrl.respondCartError(c, err, sessionToken)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ClearCart empties the session's cart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	sessionToken, ok := middleware.GetCartSession(c)
	if !ok {
		apperrors.BadRequest(c, apperrors.CartSessionRequired, "Sessão de carrinho ausente")
		return
	}

	if err := ctrl.cartService.Clear(c.Request.Context(), sessionToken); err != nil {
		ctrl.respondCartError(c, err, sessionToken)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Carrinho esvaziado"})
}

// Subscribe upgrades to a websocket that pushes cart-changed events for the
// session, so other open tabs refresh without polling.
// GET /ws/cart
func (ctrl *CartController) Subscribe(c *gin.Context) {
	sessionToken := c.GetHeader(middleware.CartSessionHeader)
	if sessionToken == "" {
		// Browsers cannot set headers on websocket handshakes.
		sessionToken = c.Query("session")
	}
	if sessionToken == "" {
		apperrors.BadRequest(c, apperrors.CartSessionRequired, "Sessão de carrinho ausente")
		return
	}

	websocket.ServeWS(ctrl.hub, ctrl.bus, c.Writer, c.Request, sessionToken)
}

func (ctrl *CartController) respondCartError(c *gin.Context, err error, sessionToken string) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "Produto não encontrado")
	case errors.Is(err, service.ErrProductInactive):
		apperrors.BadRequest(c, apperrors.ProductInactive, "Produto indisponível no momento")
	case errors.Is(err, service.ErrInvalidQuantity):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Quantidade deve ser pelo menos 1")
	case errors.Is(err, service.ErrNoteTooLong):
		apperrors.BadRequest(c, apperrors.ValidationTooLong, "Observação de personalização muito longa")
	case errors.Is(err, service.ErrNotPersonalizable):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Este produto não aceita personalização")
	case errors.Is(err, service.ErrCartLineNotFound):
		apperrors.NotFound(c, apperrors.CartLineNotFound, "Item não está no carrinho")
	default:
		log.Error("Cart operation failed", err, map[string]interface{}{
			"cart_session": sessionToken,
		})
		apperrors.InternalError(c, "")
	}
}
