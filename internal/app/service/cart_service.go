package service

import (
	"context"
	"errors"

	"github.com/lumeatelie/lume-backend/internal/app/model"
	"github.com/lumeatelie/lume-backend/internal/app/repository"
	"github.com/lumeatelie/lume-backend/internal/events"
	"github.com/lumeatelie/lume-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartLineNotFound  = errors.New("cart line not found")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrNoteTooLong       = errors.New("personalization note is too long")
	ErrNotPersonalizable = errors.New("product does not accept personalization")
)

// CartViewLine is a cart line enriched with its product for display.
type CartViewLine struct {
	model.CartLine
	Product        model.Product `json:"product"`
	LineTotalCents int64         `json:"line_total_cents"`
}

type CartView struct {
	Lines         []CartViewLine `json:"lines"`
	SubtotalCents int64          `json:"subtotal_cents"`
	TotalWeightKg float64        `json:"total_weight_kg"`
	TotalQuantity int            `json:"total_quantity"`
}

type CartService interface {
	Get(ctx context.Context, sessionToken string) (*CartView, error)
	AddOrReplace(ctx context.Context, sessionToken string, line model.CartLine) (*CartView, error)
	SetQuantity(ctx context.Context, sessionToken string, productID uint, quantity int) (*CartView, error)
	Remove(ctx context.Context, sessionToken string, productID uint) (*CartView, error)
	Clear(ctx context.Context, sessionToken string) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	bus         *events.Bus
}

func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	bus *events.Bus,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		bus:         bus,
	}
}

// Get loads the cart and enriches each line with its product. Lines whose
// product was removed or deactivated since they were added are pruned, and
// the pruned document is written back.
func (s *cartService) Get(ctx context.Context, sessionToken string) (*CartView, error) {
	lines, err := s.cartRepo.Load(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	view, kept, pruned, err := s.buildView(lines)
	if err != nil {
		return nil, err
	}

	if pruned > 0 {
		logger.Info("Pruned unavailable products from cart", map[string]interface{}{
			"cart_session": sessionToken,
			"pruned":       pruned,
		})
		if err := s.cartRepo.Save(ctx, sessionToken, kept); err != nil {
			return nil, err
		}
	} else if len(lines) > 0 {
		// Reading an active cart keeps it alive.
		if err := s.cartRepo.Touch(ctx, sessionToken); err != nil {
			logger.Warn("Failed to refresh cart TTL", map[string]interface{}{
				"cart_session": sessionToken,
				"error":        err.Error(),
			})
		}
	}

	return view, nil
}

// AddOrReplace inserts the line, or replaces quantity and personalization
// when the product is already in the cart.
func (s *cartService) AddOrReplace(ctx context.Context, sessionToken string, line model.CartLine) (*CartView, error) {
	if line.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if len(line.PersonalizationNote) > model.MaxPersonalizationNoteLength {
		return nil, ErrNoteTooLong
	}

	product, err := s.productRepo.FindByID(line.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrProductInactive
	}
	if line.HasPersonalization() && !product.Personalizable {
		return nil, ErrNotPersonalizable
	}

	// Re-read right before mutating so a concurrent writer's lines are kept.
	lines, err := s.cartRepo.Load(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	replaced := false
	for i := range lines {
		if lines[i].ProductID == line.ProductID {
			lines[i] = line
			replaced = true
			break
		}
	}
	if !replaced {
		lines = append(lines, line)
	}

	if err := s.cartRepo.Save(ctx, sessionToken, lines); err != nil {
		return nil, err
	}

	action := "added"
	if replaced {
		action = "updated"
	}
	s.bus.Publish(events.CartEvent{SessionToken: sessionToken, Action: action, ProductID: line.ProductID})

	logger.Info("Cart line written", map[string]interface{}{
		"cart_session": sessionToken,
		"product_id":   line.ProductID,
		"quantity":     line.Quantity,
		"action":       action,
	})

	view, _, _, err := s.buildView(lines)
	return view, err
}

// SetQuantity updates a line's quantity. Zero or negative removes the line.
func (s *cartService) SetQuantity(ctx context.Context, sessionToken string, productID uint, quantity int) (*CartView, error) {
	if quantity <= 0 {
		return s.Remove(ctx, sessionToken, productID)
	}

	lines, err := s.cartRepo.Load(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return nil, ErrCartLineNotFound
	}

	if err := s.cartRepo.Save(ctx, sessionToken, lines); err != nil {
		return nil, err
	}

	s.bus.Publish(events.CartEvent{SessionToken: sessionToken, Action: "updated", ProductID: productID})

	view, _, _, err := s.buildView(lines)
	return view, err
}

func (s *cartService) Remove(ctx context.Context, sessionToken string, productID uint) (*CartView, error) {
	lines, err := s.cartRepo.Load(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	kept := lines[:0]
	found := false
	for _, line := range lines {
		if line.ProductID == productID {
			found = true
			continue
		}
		kept = append(kept, line)
	}
	if !found {
		return nil, ErrCartLineNotFound
	}

	if err := s.cartRepo.Save(ctx, sessionToken, kept); err != nil {
		return nil, err
	}

	s.bus.Publish(events.CartEvent{SessionToken: sessionToken, Action: "removed", ProductID: productID})

	logger.Info("Cart line removed", map[string]interface{}{
		"cart_session": sessionToken,
		"product_id":   productID,
	})

	view, _, _, err := s.buildView(kept)
	return view, err
}

func (s *cartService) Clear(ctx context.Context, sessionToken string) error {
	if err := s.cartRepo.Delete(ctx, sessionToken); err != nil {
		return err
	}

	s.bus.Publish(events.CartEvent{SessionToken: sessionToken, Action: "cleared"})

	logger.Info("Cart cleared", map[string]interface{}{
		"cart_session": sessionToken,
	})
	return nil
}

// buildView enriches lines with product data and computes totals. Returns
// the view, the lines that survived enrichment, and how many were pruned.
func (s *cartService) buildView(lines []model.CartLine) (*CartView, []model.CartLine, int, error) {
	view := &CartView{Lines: []CartViewLine{}}
	if len(lines) == 0 {
		return view, lines, 0, nil
	}

	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	products, err := s.productRepo.FindByIDs(ids)
	if err != nil {
		return nil, nil, 0, err
	}
	byID := make(map[uint]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	kept := make([]model.CartLine, 0, len(lines))
	pruned := 0
	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok || !product.IsActive {
			pruned++
			continue
		}

		lineTotal := product.PriceCents * int64(line.Quantity)
		view.Lines = append(view.Lines, CartViewLine{
			CartLine:       line,
			Product:        product,
			LineTotalCents: lineTotal,
		})
		view.SubtotalCents += lineTotal
		view.TotalWeightKg += product.WeightKg * float64(line.Quantity)
		view.TotalQuantity += line.Quantity
		kept = append(kept, line)
	}

	return view, kept, pruned, nil
}
