package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lumeatelie/lume-backend/internal/app/model"
	"github.com/lumeatelie/lume-backend/internal/app/service"
	apperrors "github.com/lumeatelie/lume-backend/internal/errors"
	"github.com/lumeatelie/lume-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

type OrderAddressRequest struct {
	CEP        string `json:"cep"`
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
}

type OrderCustomerRequest struct {
	Name    string              `json:"name"`
	Email   string              `json:"email"`
	Phone   string              `json:"phone"`
	Address OrderAddressRequest `json:"address"`
}

type CreateOrderRequest struct {
	Customer     OrderCustomerRequest     `json:"customer"`
	DeliveryType model.DeliveryType       `json:"delivery_type"`
	ShippingCost int64                    `json:"shipping_cost"`
	Items        []service.OrderItemInput `json:"items"`
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

// CreateOrder validates the checkout payload and opens a payment session.
// Works for guests; when the caller is authenticated the order is linked to
// their account.
// POST /api/v1/orders
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sessionToken, ok := middleware.GetCartSession(c)
	if !ok {
		apperrors.BadRequest(c, apperrors.CartSessionRequired, "Sessão de carrinho ausente")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Dados do pedido inválidos")
		return
	}

	input := service.CreateOrderInput{
		SessionToken:        sessionToken,
		CustomerName:        req.Customer.Name,
		CustomerEmail:       req.Customer.Email,
		CustomerPhone:       req.Customer.Phone,
		DeliveryType:        req.DeliveryType,
		ShippingCEP:         req.Customer.Address.CEP,
		ShippingAddress:     formatShippingAddress(req.Customer.Address),
		QuotedShippingCents: req.ShippingCost,
		Items:               req.Items,
	}
	if userID, ok := middleware.GetUserID(c); ok {
		input.UserID = &userID
	}

	result, err := ctrl.orderService.Create(c.Request.Context(), input)
	if err != nil {
		var violations service.ValidationErrors
		switch {
		case errors.As(err, &violations):
			apperrors.RespondWithValidationError(c, violations)
		case errors.Is(err, service.ErrOrderNumberExhausted):
			log.Error("Order number space exhausted", err)
			apperrors.InternalError(c, "Não foi possível gerar o número do pedido")
		case errors.Is(err, service.ErrCheckoutFailed):
			log.Error("Checkout session creation failed", err, map[string]interface{}{
				"customer_email": req.Customer.Email,
			})
			apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.PaymentSessionFailed,
				"Não foi possível iniciar o pagamento. Tente novamente.")
		default:
			log.Error("Failed to create order", err)
			apperrors.InternalError(c, "")
		}
		return
	}

	log.Info("Order created via API", map[string]interface{}{
		"order_number": result.Order.OrderNumber,
		"order_id":     result.Order.ID,
	})
	c.JSON(http.StatusCreated, gin.H{
		"order_number": result.Order.OrderNumber,
		"checkout_url": result.CheckoutURL,
		"order":        result.Order,
	})
}

func formatShippingAddress(addr OrderAddressRequest) string {
	parts := make([]string, 0, 6)
	street := strings.TrimSpace(addr.Street)
	if street != "" && addr.Number != "" {
		street = street + ", " + addr.Number
	}
	for _, part := range []string{street, addr.Complement, addr.District, addr.City} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, strings.TrimSpace(part))
		}
	}
	if addr.State != "" {
		parts = append(parts, strings.ToUpper(strings.TrimSpace(addr.State)))
	}
	return strings.Join(parts, ", ")
}

// GetOrderByNumber returns one order looked up by its public number
// GET /api/v1/orders/:orderNumber
func (ctrl *OrderController) GetOrderByNumber(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderNumber := c.Param("orderNumber")

	order, err := ctrl.orderService.GetByOrderNumber(orderNumber)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Pedido não encontrado")
			return
		}
		log.Error("Failed to fetch order", err, map[string]interface{}{
			"order_number": orderNumber,
		})
		apperrors.InternalError(c, "")
		return
	}

	// The order number acts as the guest's receipt reference (the payment
	// success URL carries it), so lookup by number is open.
	c.JSON(http.StatusOK, order)
}

// ListMyOrders returns the authenticated customer's orders
// GET /api/v1/orders
func (ctrl *OrderController) ListMyOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	orders, err := ctrl.orderService.ListByUser(userID)
	if err != nil {
		log.Error("Failed to list user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": len(orders)})
}

// ListOrders returns every order, optionally filtered by status
// GET /api/v1/admin/orders
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	status := c.Query("status")
	limit := parseIntQuery(c, "limit", 50)
	offset := parseIntQuery(c, "offset", 0)

	orders, err := ctrl.orderService.ListAll(status, limit, offset)
	if err != nil {
		log.Error("Failed to list orders", err)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": len(orders)})
}

// UpdateOrderStatus moves an order through its fulfillment states
// PUT /api/v1/admin/orders/:id/status
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "ID inválido")
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Status inválido")
		return
	}

	if err := ctrl.orderService.UpdateStatus(uint(id), req.Status); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Pedido não encontrado")
			return
		}
		log.Error("Failed to update order status", err, map[string]interface{}{
			"order_id": id,
			"status":   req.Status,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status atualizado"})
}
