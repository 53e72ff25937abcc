// Package checkout submits the cart as an order and drives the cart into its
// success state.
package checkout

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/terra-clan/unicorn-emporium/internal/cart"
	"github.com/terra-clan/unicorn-emporium/internal/models"
)

// OrderCreator is the remote create-order call
type OrderCreator interface {
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.OrderResponse, error)
}

// Result describes how a submission ended. The user-facing outcome is
// always success; Synthesized and Err tell callers whether the backend
// actually accepted the order.
type Result struct {
	OrderID     string
	Synthesized bool
	Err         error
}

// Confirmed reports whether the backend issued the order id
func (r Result) Confirmed() bool {
	return !r.Synthesized
}

// Service runs the checkout flow against a cart store
type Service struct {
	creator OrderCreator
	cart    *cart.Store
	ids     *Synthesizer
}

// NewService creates a checkout service
func NewService(creator OrderCreator, store *cart.Store) *Service {
	return &Service{
		creator: creator,
		cart:    store,
		ids:     NewSynthesizer(),
	}
}

// WithSynthesizer replaces the fallback id generator
func (s *Service) WithSynthesizer(ids *Synthesizer) *Service {
	s.ids = ids
	return s
}

// BuildOrder snapshots the cart lines into an order request
func BuildOrder(form Form, lines []models.CartLine) models.CreateOrderRequest {
	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, models.OrderItem{
			ProductID:   l.ID,
			ProductName: l.Name,
			Quantity:    l.Quantity,
			Price:       l.Price,
		})
	}

	return models.CreateOrderRequest{
		CustomerName:    form.Name,
		CustomerEmail:   form.Email,
		DeliveryAddress: form.Address,
		DeliveryMethod:  form.Delivery,
		Items:           items,
		TotalAmount:     cart.Total(lines),
	}
}

// Submit places the order built from form and the current cart. Input is
// assumed validated. A failed remote call is not reported as a failure:
// an order id is synthesized and the cart still moves to its success state.
// On return the cart is empty and form has been reset.
func (s *Service) Submit(ctx context.Context, form *Form) Result {
	req := BuildOrder(*form, s.cart.Lines())

	var result Result
	resp, err := s.creator.CreateOrder(ctx, req)
	switch {
	case err != nil:
		slog.Warn("order creation failed, using synthesized order id",
			"error", err,
			"items", len(req.Items),
			"total", req.TotalAmount,
		)
		result = Result{OrderID: s.ids.Next(), Synthesized: true, Err: err}
	case resp == nil || resp.ID == 0:
		result = Result{OrderID: s.ids.Next(), Synthesized: true}
	default:
		result = Result{OrderID: strconv.FormatInt(resp.ID, 10)}
	}

	s.cart.OpenSuccess(result.OrderID)
	form.Reset()

	slog.Info("order submitted", "order_id", result.OrderID, "synthesized", result.Synthesized)
	return result
}
