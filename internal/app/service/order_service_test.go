package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lumeatelie/lume-backend/config"
	"github.com/lumeatelie/lume-backend/internal/app/model"
	"github.com/lumeatelie/lume-backend/internal/app/repository"
	"github.com/lumeatelie/lume-backend/internal/db"
)

type fakeCheckout struct {
	err      error
	lastByNr map[string]*model.Order
}

func (f *fakeCheckout) CreateCheckoutSession(_ context.Context, order *model.Order) (*CheckoutSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.lastByNr == nil {
		f.lastByNr = map[string]*model.Order{}
	}
	f.lastByNr[order.OrderNumber] = order
	return &CheckoutSession{
		SessionID: "cs_test_" + order.OrderNumber,
		URL:       "https://checkout.stripe.com/pay/" + order.OrderNumber,
	}, nil
}

type fakePromoter struct {
	promoted map[string]string // pendingKey -> orderNumber
}

func (f *fakePromoter) PromotePendingObject(_ context.Context, pendingKey, orderNumber string) (string, error) {
	if f.promoted == nil {
		f.promoted = map[string]string{}
	}
	f.promoted[pendingKey] = orderNumber
	return "https://cdn.example.com/orders/" + orderNumber + "/" + pendingKey, nil
}

type orderServiceFixture struct {
	orderService OrderService
	orderRepo    repository.OrderRepository
	cartRepo     repository.CartRepository
	checkout     *fakeCheckout
	promoter     *fakePromoter
	board        *model.Product
	plaque       *model.Product
	db           *gorm.DB
}

func setupOrderServiceTest(t *testing.T) *orderServiceFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderRepo := repository.NewOrderRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartRepo := repository.NewMemoryCartRepository()
	shippingRepo := repository.NewShippingRepository(testDB)

	require.NoError(t, testDB.Create(&model.ShippingSettings{
		OriginCEP:           "88010000",
		OriginState:         "SC",
		DefaultCostCents:    2000,
		DefaultDeliveryDays: 5,
	}).Error)

	shippingService := NewShippingService(shippingRepo, &fakeCEPClient{
		states: map[string]string{"01310100": "SP"},
	}, config.ShippingConfig{
		OriginCEP:            "88010000",
		OriginState:          "SC",
		FallbackCostCents:    2500,
		FallbackDeliveryDays: 10,
	})

	checkout := &fakeCheckout{}
	promoter := &fakePromoter{}
	userRepo := repository.NewUserRepository(testDB)
	orderService := NewOrderService(orderRepo, productRepo, userRepo, cartRepo, shippingService, checkout, promoter)

	board := &model.Product{
		Name: "Tábua de Corte Imbuia", Slug: "tabua-de-corte-imbuia",
		PriceCents: 18900, WeightKg: 1.2, Wood: model.WoodImbuia,
		LeadTimeDays: 15, IsActive: true,
	}
	testDB.Create(board)

	plaque := &model.Product{
		Name: "Placa Decorativa Pinus", Slug: "placa-decorativa-pinus",
		PriceCents: 9900, WeightKg: 0.6, Wood: model.WoodPinus,
		LeadTimeDays: 7, Personalizable: true, IsActive: true,
	}
	testDB.Create(plaque)

	return &orderServiceFixture{
		orderService: orderService,
		orderRepo:    orderRepo,
		cartRepo:     cartRepo,
		checkout:     checkout,
		promoter:     promoter,
		board:        board,
		plaque:       plaque,
		db:           testDB,
	}
}

func validOrderInput(f *orderServiceFixture) CreateOrderInput {
	return CreateOrderInput{
		SessionToken:    "session-a",
		CustomerName:    "Ana Souza",
		CustomerEmail:   "ana@example.com",
		CustomerPhone:   "11987654321",
		DeliveryType:    model.DeliveryStandard,
		ShippingCEP:     "01310-100",
		ShippingAddress: "Av. Paulista, 1000, apto 12, Bela Vista, São Paulo - SP",
		Items: []OrderItemInput{
			{ProductID: f.board.ID, Quantity: 2},
			{ProductID: f.plaque.ID, Quantity: 1, PersonalizationNote: "Gravar: Família Souza"},
		},
	}
}

func TestOrderService_Create_Success(t *testing.T) {
	f := setupOrderServiceTest(t)
	ctx := context.Background()

	require.NoError(t, f.cartRepo.Save(ctx, "session-a", []model.CartLine{{ProductID: f.board.ID, Quantity: 2}}))

	result, err := f.orderService.Create(ctx, validOrderInput(f))
	require.NoError(t, err)

	order := result.Order
	assert.True(t, strings.HasPrefix(order.OrderNumber, "LM-"))
	assert.Equal(t, int64(18900*2+9900), order.SubtotalCents)

	// Weight 3.0kg over the 2000-cent default: 2000 + round(2000*0.1*2) = 2400.
	assert.Equal(t, int64(2400), order.ShippingCents)
	assert.Equal(t, order.SubtotalCents+order.ShippingCents, order.TotalCents)
	assert.Equal(t, QuoteSourceDefault, order.ShippingSource)

	// Lead time of the slowest piece plus transit.
	assert.Equal(t, 15+5, order.DeliveryDays)

	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, model.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, "01310100", order.ShippingCEP)
	assert.Equal(t, "cs_test_"+order.OrderNumber, order.StripeSessionID)
	assert.Contains(t, result.CheckoutURL, order.OrderNumber)

	// Cart is cleared after a successful checkout handoff.
	lines, err := f.cartRepo.Load(ctx, "session-a")
	require.NoError(t, err)
	assert.Empty(t, lines)

	// Items are priced from the catalog snapshot.
	persisted, err := f.orderRepo.FindByOrderNumber(order.OrderNumber)
	require.NoError(t, err)
	require.Len(t, persisted.OrderItems, 2)
	assert.Equal(t, "Tábua de Corte Imbuia", persisted.OrderItems[0].ProductName)
	assert.Equal(t, int64(18900), persisted.OrderItems[0].UnitPriceCents)
}

func TestOrderService_Create_PickupSkipsShipping(t *testing.T) {
	f := setupOrderServiceTest(t)

	input := validOrderInput(f)
	input.DeliveryType = model.DeliveryPickup
	input.ShippingCEP = ""
	input.ShippingAddress = ""

	result, err := f.orderService.Create(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, int64(0), result.Order.ShippingCents)
	assert.Equal(t, result.Order.SubtotalCents, result.Order.TotalCents)
	assert.Equal(t, "", result.Order.ShippingCEP)
	assert.Equal(t, 15, result.Order.DeliveryDays)
}

func TestOrderService_Create_AccumulatesValidationErrors(t *testing.T) {
	f := setupOrderServiceTest(t)

	input := CreateOrderInput{
		CustomerName:  "",
		CustomerEmail: "not-an-email",
		DeliveryType:  model.DeliveryStandard,
		ShippingCEP:   "123",
		Items:         []OrderItemInput{},
	}

	_, err := f.orderService.Create(context.Background(), input)
	require.Error(t, err)

	var violations ValidationErrors
	require.ErrorAs(t, err, &violations)
	assert.Contains(t, violations, "customer_name")
	assert.Contains(t, violations, "customer_email")
	assert.Contains(t, violations, "shipping_cep")
	assert.Contains(t, violations, "shipping_address")
	assert.Contains(t, violations, "items")
}

func TestOrderService_Create_RejectsUnavailableProduct(t *testing.T) {
	f := setupOrderServiceTest(t)

	f.db.Model(f.board).Update("is_active", false)

	input := validOrderInput(f)
	_, err := f.orderService.Create(context.Background(), input)

	var violations ValidationErrors
	require.ErrorAs(t, err, &violations)
	assert.Contains(t, violations, "items[0].product_id")
}

func TestOrderService_Create_CheckoutFailure(t *testing.T) {
	f := setupOrderServiceTest(t)
	f.checkout.err = errors.New("stripe unavailable")

	_, err := f.orderService.Create(context.Background(), validOrderInput(f))
	assert.ErrorIs(t, err, ErrCheckoutFailed)
}

func TestOrderService_Create_PromotesPersonalizationImages(t *testing.T) {
	f := setupOrderServiceTest(t)

	input := validOrderInput(f)
	input.Items[1].PersonalizationImagePath = "pending/upload-123.png"

	result, err := f.orderService.Create(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, result.Order.OrderNumber, f.promoter.promoted["pending/upload-123.png"])

	persisted, err := f.orderRepo.FindByOrderNumber(result.Order.OrderNumber)
	require.NoError(t, err)
	require.Len(t, persisted.OrderItems, 2)
	assert.Contains(t, persisted.OrderItems[1].PersonalizationImageURL, result.Order.OrderNumber)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	f := setupOrderServiceTest(t)

	result, err := f.orderService.Create(context.Background(), validOrderInput(f))
	require.NoError(t, err)

	require.NoError(t, f.orderService.UpdateStatus(result.Order.ID, model.OrderStatusProduction))

	updated, err := f.orderService.GetByID(result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusProduction, updated.Status)
}

func TestOrderService_UpdateStatus_NotFound(t *testing.T) {
	f := setupOrderServiceTest(t)

	err := f.orderService.UpdateStatus(999, model.OrderStatusProduction)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_Create_UpsertsCustomerByEmail(t *testing.T) {
	f := setupOrderServiceTest(t)
	ctx := context.Background()

	first, err := f.orderService.Create(ctx, validOrderInput(f))
	require.NoError(t, err)
	require.NotNil(t, first.Order.UserID)

	// The guest-created account has no password and cannot log in.
	var user model.User
	require.NoError(t, f.db.First(&user, *first.Order.UserID).Error)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	// A second order with the same email links to the same account.
	second, err := f.orderService.Create(ctx, validOrderInput(f))
	require.NoError(t, err)
	require.NotNil(t, second.Order.UserID)
	assert.Equal(t, *first.Order.UserID, *second.Order.UserID)
}

func TestOrderService_Create_AuthenticatedUserKeepsOwnID(t *testing.T) {
	f := setupOrderServiceTest(t)

	account := &model.User{
		Email: "cliente@example.com", PasswordHash: "hash",
		Name: "Cliente", Role: model.RoleUser,
	}
	require.NoError(t, f.db.Create(account).Error)

	input := validOrderInput(f)
	input.UserID = &account.ID

	result, err := f.orderService.Create(context.Background(), input)
	require.NoError(t, err)
	require.NotNil(t, result.Order.UserID)
	assert.Equal(t, account.ID, *result.Order.UserID)
}
