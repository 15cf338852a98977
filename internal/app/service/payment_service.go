package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/webhook"
	"gorm.io/gorm"

	"github.com/lumeatelie/lume-backend/config"
	"github.com/lumeatelie/lume-backend/internal/app/model"
	"github.com/lumeatelie/lume-backend/internal/app/repository"
	"github.com/lumeatelie/lume-backend/pkg/email/resend"
	"github.com/lumeatelie/lume-backend/pkg/logger"
)

var (
	ErrWebhookSecretMissing    = errors.New("webhook signing secret is not configured")
	ErrWebhookSignatureInvalid = errors.New("webhook signature verification failed")
)

// EmailSender delivers transactional mail. Implemented by the Resend client;
// tests substitute a fake.
type EmailSender interface {
	Send(ctx context.Context, req resend.SendRequest) (*resend.SendResponse, error)
}

// WebhookResult describes what the webhook handler did with an event.
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Message   string `json:"message,omitempty"`
}

type PaymentService interface {
	CheckoutProvider
	ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error)
}

type paymentService struct {
	cfg       config.StripeConfig
	orderRepo repository.OrderRepository
	mailer    EmailSender
	emailFrom string
}

func NewPaymentService(
	cfg config.StripeConfig,
	orderRepo repository.OrderRepository,
	mailer EmailSender,
	emailFrom string,
) PaymentService {
	stripe.Key = cfg.SecretKey
	return &paymentService{
		cfg:       cfg,
		orderRepo: orderRepo,
		mailer:    mailer,
		emailFrom: emailFrom,
	}
}

// CreateCheckoutSession opens a hosted Stripe Checkout session priced from
// the persisted order, one line per item plus shipping.
func (s *paymentService) CreateCheckoutSession(ctx context.Context, order *model.Order) (*CheckoutSession, error) {
	logger.Info("Creating Stripe checkout session", map[string]interface{}{
		"order_number": order.OrderNumber,
		"total_cents":  order.TotalCents,
	})

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(order.OrderItems)+1)
	for _, item := range order.OrderItems {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(item.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("brl"),
				UnitAmount: stripe.Int64(item.UnitPriceCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.ProductName),
				},
			},
		})
	}
	if order.ShippingCents > 0 {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("brl"),
				UnitAmount: stripe.Int64(order.ShippingCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Frete - " + order.ShippingService),
				},
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:         lineItems,
		CustomerEmail:     stripe.String(order.CustomerEmail),
		ClientReferenceID: stripe.String(order.OrderNumber),
		SuccessURL:        stripe.String(s.cfg.SuccessURL + "?pedido=" + order.OrderNumber),
		CancelURL:         stripe.String(s.cfg.CancelURL),
	}
	params.AddMetadata("order_number", order.OrderNumber)
	params.Context = ctx

	checkoutSession, err := session.New(params)
	if err != nil {
		logger.Error("Stripe checkout session creation failed", err, map[string]interface{}{
			"order_number": order.OrderNumber,
		})
		return nil, err
	}

	logger.Info("Stripe checkout session created", map[string]interface{}{
		"order_number": order.OrderNumber,
		"session_id":   checkoutSession.ID,
	})
	return &CheckoutSession{SessionID: checkoutSession.ID, URL: checkoutSession.URL}, nil
}

// ProcessWebhook verifies the event signature and applies the paid
// transition for completed checkouts. A missing signing secret is an
// operator error, never a silently accepted event.
func (s *paymentService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	if s.cfg.WebhookSecret == "" {
		logger.Error("Stripe webhook secret is not configured", ErrWebhookSecretMissing, nil)
		return nil, ErrWebhookSecretMissing
	}

	event, err := webhook.ConstructEvent(payload, signature, s.cfg.WebhookSecret)
	if err != nil {
		logger.Warn("Webhook signature verification failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, ErrWebhookSignatureInvalid
	}

	logger.Info("Processing Stripe webhook event", map[string]interface{}{
		"event_id":   event.ID,
		"event_type": string(event.Type),
	})

	result := &WebhookResult{
		EventID:   event.ID,
		EventType: string(event.Type),
		Processed: true,
	}

	switch event.Type {
	case "checkout.session.completed":
		err = s.handleCheckoutCompleted(ctx, event)
	default:
		logger.Debug("Unhandled webhook event type", map[string]interface{}{
			"event_type": string(event.Type),
		})
		result.Message = "Event type not handled"
	}

	if err != nil {
		result.Processed = false
		result.Message = err.Error()
		return result, err
	}
	return result, nil
}

func (s *paymentService) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var checkoutSession stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &checkoutSession); err != nil {
		return fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}

	order, err := s.orderRepo.FindByStripeSessionID(checkoutSession.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Webhook for unknown order", err, map[string]interface{}{
				"session_id": checkoutSession.ID,
			})
			return ErrOrderNotFound
		}
		return err
	}

	// Stripe retries webhooks; a second delivery must not re-apply the
	// transition or re-send the confirmation email.
	if order.PaymentStatus == model.PaymentStatusCompleted {
		logger.Info("Order already marked paid, skipping", map[string]interface{}{
			"order_number": order.OrderNumber,
		})
		return nil
	}

	now := time.Now()
	order.PaymentStatus = model.PaymentStatusCompleted
	order.Status = model.OrderStatusConfirmed
	order.PaymentApprovedAt = &now

	if checkoutSession.PaymentIntent != nil {
		order.StripeIntentID = checkoutSession.PaymentIntent.ID
		order.ReceiptURL = s.fetchReceiptURL(ctx, checkoutSession.PaymentIntent.ID)
	}

	if err := s.orderRepo.Update(order); err != nil {
		return err
	}

	logger.Info("Order marked as paid", map[string]interface{}{
		"order_number": order.OrderNumber,
		"total_cents":  order.TotalCents,
	})

	// The payment already succeeded, so an email failure is logged but
	// never fails the webhook.
	if err := s.sendConfirmationEmail(ctx, order); err != nil {
		logger.Error("Failed to send order confirmation email", err, map[string]interface{}{
			"order_number":   order.OrderNumber,
			"customer_email": order.CustomerEmail,
		})
	}

	return nil
}

// fetchReceiptURL expands the intent's latest charge for its receipt link.
// Best effort; a missing receipt is not an error.
func (s *paymentService) fetchReceiptURL(ctx context.Context, intentID string) string {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddExpand("latest_charge")

	intent, err := paymentintent.Get(intentID, params)
	if err != nil {
		logger.Warn("Failed to fetch payment intent for receipt", map[string]interface{}{
			"intent_id": intentID,
			"error":     err.Error(),
		})
		return ""
	}
	if intent.LatestCharge == nil {
		return ""
	}
	return intent.LatestCharge.ReceiptURL
}

func (s *paymentService) sendConfirmationEmail(ctx context.Context, order *model.Order) error {
	if s.mailer == nil {
		return nil
	}

	_, err := s.mailer.Send(ctx, resend.SendRequest{
		From:    s.emailFrom,
		To:      []string{order.CustomerEmail},
		Subject: fmt.Sprintf("Pedido %s confirmado - LUME Marcenaria", order.OrderNumber),
		HTML:    buildConfirmationHTML(order),
		Text:    buildConfirmationText(order),
	})
	if err != nil {
		return err
	}

	logger.Info("Order confirmation email sent", map[string]interface{}{
		"order_number":   order.OrderNumber,
		"customer_email": order.CustomerEmail,
	})
	return nil
}

func buildConfirmationHTML(order *model.Order) string {
	itemRows := ""
	for _, item := range order.OrderItems {
		itemRows += fmt.Sprintf(
			"<tr><td>%s</td><td>%d</td><td>%s</td></tr>",
			item.ProductName, item.Quantity, formatBRL(item.UnitPriceCents*int64(item.Quantity)),
		)
	}

	delivery := fmt.Sprintf("Entrega em até %d dias úteis após a confirmação.", order.DeliveryDays)
	if order.DeliveryType == model.DeliveryPickup {
		delivery = "Retirada no ateliê combinada após a produção."
	}

	return fmt.Sprintf(`<h1>Obrigado pelo seu pedido, %s!</h1>
<p>Recebemos o pagamento do pedido <strong>%s</strong> e a produção da sua peça já entrou na fila.</p>
<table>
<tr><th>Produto</th><th>Qtd.</th><th>Valor</th></tr>
%s
<tr><td colspan="2">Frete</td><td>%s</td></tr>
<tr><td colspan="2"><strong>Total</strong></td><td><strong>%s</strong></td></tr>
</table>
<p>%s</p>
<p>LUME Marcenaria</p>`,
		order.CustomerName, order.OrderNumber, itemRows,
		formatBRL(order.ShippingCents), formatBRL(order.TotalCents), delivery)
}

func buildConfirmationText(order *model.Order) string {
	return fmt.Sprintf(
		"Obrigado pelo seu pedido, %s! Pedido %s confirmado. Total: %s.",
		order.CustomerName, order.OrderNumber, formatBRL(order.TotalCents),
	)
}

func formatBRL(cents int64) string {
	return fmt.Sprintf("R$ %d,%02d", cents/100, cents%100)
}
