package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/lumeatelie/lume-backend/internal/app/model"
	"github.com/lumeatelie/lume-backend/internal/app/repository"
	"github.com/lumeatelie/lume-backend/pkg/logger"
	"github.com/lumeatelie/lume-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderNumberExhausted = errors.New("could not allocate a unique order number")
	ErrCheckoutFailed       = errors.New("checkout session creation failed")
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidationErrors carries every violated field so the storefront can list
// them all instead of failing on the first.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

// CheckoutSession is the payment-provider session opened for an order.
type CheckoutSession struct {
	SessionID string
	URL       string
}

// CheckoutProvider opens a hosted payment session for an order.
// Implemented by the payment service; tests substitute a fake.
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, order *model.Order) (*CheckoutSession, error)
}

// ImagePromoter moves a pending personalization upload into the order's
// permanent folder. Implemented by the S3 storage layer.
type ImagePromoter interface {
	PromotePendingObject(ctx context.Context, pendingKey, orderNumber string) (string, error)
}

type OrderItemInput struct {
	ProductID                uint   `json:"product_id"`
	Quantity                 int    `json:"quantity"`
	PersonalizationImagePath string `json:"personalization_image_path"`
	PersonalizationImageURL  string `json:"personalization_image_url"`
	PersonalizationNote      string `json:"personalization_note"`
}

type CreateOrderInput struct {
	SessionToken    string
	UserID          *uint
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	DeliveryType    model.DeliveryType
	ShippingCEP     string
	ShippingAddress string
	// Estimate the storefront displayed at checkout. Never charged; only
	// compared against the resolver's output and logged when they differ.
	QuotedShippingCents int64
	Items               []OrderItemInput
}

type CreateOrderResult struct {
	Order       *model.Order
	CheckoutURL string
}

type OrderService interface {
	Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	GetByID(id uint) (*model.Order, error)
	GetByOrderNumber(orderNumber string) (*model.Order, error)
	ListByUser(userID uint) ([]model.Order, error)
	ListAll(status string, limit, offset int) ([]model.Order, error)
	UpdateStatus(id uint, status model.OrderStatus) error
}

type orderService struct {
	orderRepo       repository.OrderRepository
	productRepo     repository.ProductRepository
	userRepo        repository.UserRepository
	cartRepo        repository.CartRepository
	shippingService ShippingService
	checkout        CheckoutProvider
	promoter        ImagePromoter
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	cartRepo repository.CartRepository,
	shippingService ShippingService,
	checkout CheckoutProvider,
	promoter ImagePromoter,
) OrderService {
	return &orderService{
		orderRepo:       orderRepo,
		productRepo:     productRepo,
		userRepo:        userRepo,
		cartRepo:        cartRepo,
		shippingService: shippingService,
		checkout:        checkout,
		promoter:        promoter,
	}
}

// Create validates the checkout payload, prices every item from the catalog,
// resolves the authoritative shipping cost, allocates an order number,
// persists the order and opens a payment session. Client-submitted prices
// are never trusted.
func (s *orderService) Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	products, err := s.loadProducts(input.Items)
	if err != nil {
		return nil, err
	}

	var subtotal int64
	var totalWeight float64
	maxLeadDays := 0
	items := make([]model.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		product := products[item.ProductID]
		subtotal += product.PriceCents * int64(item.Quantity)
		totalWeight += product.WeightKg * float64(item.Quantity)
		if product.LeadTimeDays > maxLeadDays {
			maxLeadDays = product.LeadTimeDays
		}
		items = append(items, model.OrderItem{
			ProductID:                product.ID,
			ProductName:              product.Name,
			Quantity:                 item.Quantity,
			UnitPriceCents:           product.PriceCents,
			PersonalizationImagePath: item.PersonalizationImagePath,
			PersonalizationImageURL:  item.PersonalizationImageURL,
			PersonalizationNote:      item.PersonalizationNote,
		})
	}

	shippingCents := int64(0)
	shippingName := "Retirada no ateliê"
	shippingSource := QuoteSourceDefault
	deliveryDays := maxLeadDays
	if input.DeliveryType != model.DeliveryPickup {
		quote, err := s.shippingService.Estimate(ctx, input.ShippingCEP, totalWeight)
		if err != nil {
			return nil, err
		}
		shippingCents = quote.CostCents
		shippingName = quote.ServiceName
		shippingSource = quote.Source
		deliveryDays = maxLeadDays + quote.DeliveryDays

		if input.QuotedShippingCents > 0 && input.QuotedShippingCents != shippingCents {
			logger.Warn("Client shipping estimate disagrees with resolver", map[string]interface{}{
				"quoted_cents":   input.QuotedShippingCents,
				"resolved_cents": shippingCents,
				"shipping_cep":   input.ShippingCEP,
			})
		}
	}

	orderNumber, err := s.allocateOrderNumber()
	if err != nil {
		return nil, err
	}

	s.promoteImages(ctx, orderNumber, items)

	cep := ""
	if input.DeliveryType != model.DeliveryPickup {
		cep, _ = util.NormalizeCEP(input.ShippingCEP)
	}

	order := &model.Order{
		OrderNumber:     orderNumber,
		UserID:          s.resolveCustomer(input),
		CustomerName:    input.CustomerName,
		CustomerEmail:   input.CustomerEmail,
		CustomerPhone:   input.CustomerPhone,
		SubtotalCents:   subtotal,
		ShippingCents:   shippingCents,
		TotalCents:      subtotal + shippingCents,
		ShippingService: shippingName,
		ShippingSource:  shippingSource,
		DeliveryDays:    deliveryDays,
		DeliveryType:    input.DeliveryType,
		Status:          model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusPending,
		PaymentProvider: "stripe",
		ShippingCEP:     cep,
		ShippingAddress: input.ShippingAddress,
		OrderItems:      items,
	}

	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	session, err := s.checkout.CreateCheckoutSession(ctx, order)
	if err != nil {
		logger.Error("Failed to open checkout session", err, map[string]interface{}{
			"order_number": order.OrderNumber,
		})
		return nil, ErrCheckoutFailed
	}

	order.StripeSessionID = session.SessionID
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}

	if input.SessionToken != "" {
		if err := s.cartRepo.Delete(ctx, input.SessionToken); err != nil {
			logger.Warn("Failed to clear cart after checkout", map[string]interface{}{
				"cart_session": input.SessionToken,
				"error":        err.Error(),
			})
		}
	}

	logger.Info("Order created", map[string]interface{}{
		"order_number": order.OrderNumber,
		"total_cents":  order.TotalCents,
		"items":        len(order.OrderItems),
		"delivery":     order.DeliveryType,
	})

	return &CreateOrderResult{Order: order, CheckoutURL: session.URL}, nil
}

// resolveCustomer links the order to a user account, creating one from the
// checkout contact data when the email is new. Guest-created accounts carry
// no password hash and cannot log in until the customer registers. Failures
// here never block the sale.
func (s *orderService) resolveCustomer(input CreateOrderInput) *uint {
	if input.UserID != nil {
		return input.UserID
	}
	if s.userRepo == nil {
		return nil
	}

	user, err := s.userRepo.FindByEmail(input.CustomerEmail)
	if err == nil {
		return &user.ID
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Warn("Customer lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	user = &model.User{
		Email: input.CustomerEmail,
		Name:  input.CustomerName,
		Phone: input.CustomerPhone,
		Role:  model.RoleUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		logger.Warn("Failed to create customer record", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	logger.Info("Customer record created at checkout", map[string]interface{}{
		"user_id": user.ID,
	})
	return &user.ID
}

func (s *orderService) validate(input CreateOrderInput) error {
	violations := ValidationErrors{}

	if strings.TrimSpace(input.CustomerName) == "" {
		violations["customer_name"] = "Nome é obrigatório"
	}
	if strings.TrimSpace(input.CustomerEmail) == "" {
		violations["customer_email"] = "E-mail é obrigatório"
	} else if !emailPattern.MatchString(input.CustomerEmail) {
		violations["customer_email"] = "E-mail inválido"
	}

	switch input.DeliveryType {
	case model.DeliveryStandard, model.DeliveryPickup:
	default:
		violations["delivery_type"] = "Tipo de entrega inválido"
	}

	if input.DeliveryType != model.DeliveryPickup {
		if _, err := util.NormalizeCEP(input.ShippingCEP); err != nil {
			violations["shipping_cep"] = "CEP inválido"
		}
		if strings.TrimSpace(input.ShippingAddress) == "" {
			violations["shipping_address"] = "Endereço de entrega é obrigatório"
		}
	}

	if len(input.Items) == 0 {
		violations["items"] = "O pedido precisa de pelo menos um item"
	}
	for i, item := range input.Items {
		if item.Quantity < 1 {
			violations[fmt.Sprintf("items[%d].quantity", i)] = "Quantidade deve ser pelo menos 1"
		}
		if len(item.PersonalizationNote) > model.MaxPersonalizationNoteLength {
			violations[fmt.Sprintf("items[%d].personalization_note", i)] = "Observação de personalização muito longa"
		}
	}

	if len(violations) > 0 {
		logger.Warn("Order validation failed", map[string]interface{}{
			"violations": len(violations),
		})
		return violations
	}
	return nil
}

func (s *orderService) loadProducts(items []OrderItemInput) (map[uint]model.Product, error) {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	violations := ValidationErrors{}
	for i, item := range items {
		product, ok := byID[item.ProductID]
		if !ok || !product.IsActive {
			violations[fmt.Sprintf("items[%d].product_id", i)] = "Produto indisponível"
		}
	}
	if len(violations) > 0 {
		return nil, violations
	}
	return byID, nil
}

// allocateOrderNumber retries on collision; numbers are random so a clash
// is rare but possible.
func (s *orderService) allocateOrderNumber() (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		candidate := util.GenerateOrderNumber()
		exists, err := s.orderRepo.ExistsByOrderNumber(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		logger.Warn("Order number collision, retrying", map[string]interface{}{
			"order_number": candidate,
			"attempt":      attempt + 1,
		})
	}
	return "", ErrOrderNumberExhausted
}

// promoteImages moves each pending personalization upload into the order's
// folder. A failed move keeps the pending object and is only logged; losing
// the promotion must not lose the sale.
func (s *orderService) promoteImages(ctx context.Context, orderNumber string, items []model.OrderItem) {
	if s.promoter == nil {
		return
	}
	for i := range items {
		if items[i].PersonalizationImagePath == "" {
			continue
		}
		promotedURL, err := s.promoter.PromotePendingObject(ctx, items[i].PersonalizationImagePath, orderNumber)
		if err != nil {
			logger.Warn("Failed to promote personalization image", map[string]interface{}{
				"order_number": orderNumber,
				"pending_key":  items[i].PersonalizationImagePath,
				"error":        err.Error(),
			})
			continue
		}
		items[i].PersonalizationImageURL = promotedURL
	}
}

func (s *orderService) GetByID(id uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) GetByOrderNumber(orderNumber string) (*model.Order, error) {
	order, err := s.orderRepo.FindByOrderNumber(orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) ListByUser(userID uint) ([]model.Order, error) {
	return s.orderRepo.FindByUserID(userID)
}

func (s *orderService) ListAll(status string, limit, offset int) ([]model.Order, error) {
	return s.orderRepo.FindAll(status, limit, offset)
}

func (s *orderService) UpdateStatus(id uint, status model.OrderStatus) error {
	if _, err := s.orderRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	return s.orderRepo.UpdateStatus(id, status)
}
