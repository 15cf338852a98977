package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/lumeatelie/lume-backend/config"
	"github.com/lumeatelie/lume-backend/internal/app/model"
	"github.com/lumeatelie/lume-backend/internal/app/repository"
	"github.com/lumeatelie/lume-backend/internal/db"
	"github.com/lumeatelie/lume-backend/pkg/email/resend"
)

const testWebhookSecret = "whsec_test_secret"

type fakeMailer struct {
	sent []resend.SendRequest
	err  error
}

func (f *fakeMailer) Send(_ context.Context, req resend.SendRequest) (*resend.SendResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, req)
	return &resend.SendResponse{ID: "email_1"}, nil
}

func setupPaymentServiceTest(t *testing.T, secret string) (PaymentService, repository.OrderRepository, *fakeMailer) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderRepo := repository.NewOrderRepository(testDB)
	mailer := &fakeMailer{}
	paymentService := NewPaymentService(config.StripeConfig{
		WebhookSecret: secret,
		SuccessURL:    "http://localhost:3000/pedido/confirmado",
		CancelURL:     "http://localhost:3000/carrinho",
	}, orderRepo, mailer, "LUME Marcenaria <pedidos@lume.test>")

	return paymentService, orderRepo, mailer
}

func seedPendingOrder(t *testing.T, orderRepo repository.OrderRepository, sessionID string) *model.Order {
	t.Helper()
	order := &model.Order{
		OrderNumber:     "LM-000042",
		CustomerName:    "Ana Souza",
		CustomerEmail:   "ana@example.com",
		SubtotalCents:   18900,
		ShippingCents:   2400,
		TotalCents:      21300,
		DeliveryType:    model.DeliveryStandard,
		Status:          model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusPending,
		PaymentProvider: "stripe",
		StripeSessionID: sessionID,
		OrderItems: []model.OrderItem{
			{ProductID: 1, ProductName: "Tábua de Corte Imbuia", Quantity: 1, UnitPriceCents: 18900},
		},
	}
	require.NoError(t, orderRepo.Create(order))
	return order
}

func signedPayload(t *testing.T, payload string) string {
	t.Helper()
	now := time.Now()
	signature := webhook.ComputeSignature(now, []byte(payload), testWebhookSecret)
	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(signature))
}

func checkoutCompletedPayload(sessionID string) string {
	return fmt.Sprintf(`{
		"id": "evt_test_1",
		"object": "event",
		"api_version": %q,
		"type": "checkout.session.completed",
		"data": {"object": {"id": %q, "object": "checkout.session"}}
	}`, stripe.APIVersion, sessionID)
}

func TestPaymentService_ProcessWebhook_MissingSecret(t *testing.T) {
	paymentService, _, _ := setupPaymentServiceTest(t, "")

	_, err := paymentService.ProcessWebhook(context.Background(), []byte("{}"), "t=1,v1=abc")
	assert.ErrorIs(t, err, ErrWebhookSecretMissing)
}

func TestPaymentService_ProcessWebhook_InvalidSignature(t *testing.T) {
	paymentService, _, _ := setupPaymentServiceTest(t, testWebhookSecret)

	payload := checkoutCompletedPayload("cs_test_1")
	_, err := paymentService.ProcessWebhook(context.Background(), []byte(payload), "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, ErrWebhookSignatureInvalid)
}

func TestPaymentService_ProcessWebhook_CheckoutCompleted(t *testing.T) {
	paymentService, orderRepo, mailer := setupPaymentServiceTest(t, testWebhookSecret)
	seedPendingOrder(t, orderRepo, "cs_test_1")

	payload := checkoutCompletedPayload("cs_test_1")
	result, err := paymentService.ProcessWebhook(context.Background(), []byte(payload), signedPayload(t, payload))
	require.NoError(t, err)
	assert.True(t, result.Processed)
	assert.Equal(t, "checkout.session.completed", result.EventType)

	updated, err := orderRepo.FindByStripeSessionID("cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusCompleted, updated.PaymentStatus)
	assert.Equal(t, model.OrderStatusConfirmed, updated.Status)
	require.NotNil(t, updated.PaymentApprovedAt)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"ana@example.com"}, mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Subject, "LM-000042")
}

func TestPaymentService_ProcessWebhook_Idempotent(t *testing.T) {
	paymentService, orderRepo, mailer := setupPaymentServiceTest(t, testWebhookSecret)
	seedPendingOrder(t, orderRepo, "cs_test_1")

	payload := checkoutCompletedPayload("cs_test_1")
	_, err := paymentService.ProcessWebhook(context.Background(), []byte(payload), signedPayload(t, payload))
	require.NoError(t, err)

	// Stripe redelivers; the second event must not send a second email.
	_, err = paymentService.ProcessWebhook(context.Background(), []byte(payload), signedPayload(t, payload))
	require.NoError(t, err)

	assert.Len(t, mailer.sent, 1)
}

func TestPaymentService_ProcessWebhook_EmailFailureDoesNotFailWebhook(t *testing.T) {
	paymentService, orderRepo, mailer := setupPaymentServiceTest(t, testWebhookSecret)
	seedPendingOrder(t, orderRepo, "cs_test_1")
	mailer.err = errors.New("resend unavailable")

	payload := checkoutCompletedPayload("cs_test_1")
	result, err := paymentService.ProcessWebhook(context.Background(), []byte(payload), signedPayload(t, payload))

	require.NoError(t, err)
	assert.True(t, result.Processed)

	updated, err := orderRepo.FindByStripeSessionID("cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusCompleted, updated.PaymentStatus)
}

func TestPaymentService_ProcessWebhook_UnknownOrder(t *testing.T) {
	paymentService, _, _ := setupPaymentServiceTest(t, testWebhookSecret)

	payload := checkoutCompletedPayload("cs_test_missing")
	result, err := paymentService.ProcessWebhook(context.Background(), []byte(payload), signedPayload(t, payload))

	assert.ErrorIs(t, err, ErrOrderNotFound)
	require.NotNil(t, result)
	assert.False(t, result.Processed)
}

func TestPaymentService_ProcessWebhook_IgnoresOtherEventTypes(t *testing.T) {
	paymentService, _, mailer := setupPaymentServiceTest(t, testWebhookSecret)

	payload := fmt.Sprintf(`{"id": "evt_test_2", "object": "event", "api_version": %q, "type": "payment_intent.created", "data": {"object": {}}}`, stripe.APIVersion)
	result, err := paymentService.ProcessWebhook(context.Background(), []byte(payload), signedPayload(t, payload))

	require.NoError(t, err)
	assert.True(t, result.Processed)
	assert.Equal(t, "Event type not handled", result.Message)
	assert.Empty(t, mailer.sent)
}
