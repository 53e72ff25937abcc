package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/unicorn-emporium/internal/checkout"
	"github.com/terra-clan/unicorn-emporium/internal/models"
)

// Order handlers

type orderList struct {
	Orders []*models.Order `json:"orders"`
	Total  int             `json:"total"`
}

func newOrderList(orders []*models.Order) orderList {
	if orders == nil {
		orders = []*models.Order{}
	}
	return orderList{Orders: orders, Total: len(orders)}
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := validateOrderRequest(req); err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	order := models.NewOrder(req)

	if total := itemsTotal(req.Items); total != req.TotalAmount {
		slog.Warn("order total does not match items, using item total",
			"submitted", req.TotalAmount,
			"computed", total,
			"email", req.CustomerEmail,
		)
		order.TotalAmount = total
	}

	if err := s.repo.CreateOrder(r.Context(), order); err != nil {
		slog.Error("failed to create order", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to create order")
		return
	}

	slog.Info("order created",
		"id", order.ID,
		"items", len(order.Items),
		"total", order.TotalAmount,
		"delivery", order.DeliveryMethod,
	)
	s.feed.Publish(order)

	respondJSON(w, http.StatusCreated, order.ToResponse())
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "validation_error", "order id must be a positive integer")
		return
	}

	order, err := s.repo.GetOrder(r.Context(), id)
	if err != nil {
		slog.Error("failed to get order", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get order")
		return
	}
	if order == nil {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	orders, err := s.repo.ListOrders(r.Context(), limit, offset)
	if err != nil {
		slog.Error("failed to list orders", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list orders")
		return
	}
	respondJSON(w, http.StatusOK, newOrderList(orders))
}

func (s *Server) handleListOrdersByEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(chi.URLParam(r, "email"))
	if email == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "email is required")
		return
	}

	orders, err := s.repo.ListOrdersByEmail(r.Context(), email)
	if err != nil {
		slog.Error("failed to list orders by email", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list orders")
		return
	}
	respondJSON(w, http.StatusOK, newOrderList(orders))
}

// validateOrderRequest applies the checkout form rules plus item checks
func validateOrderRequest(req models.CreateOrderRequest) error {
	form := checkout.Form{
		Name:     req.CustomerName,
		Email:    req.CustomerEmail,
		Address:  req.DeliveryAddress,
		Delivery: req.DeliveryMethod,
	}
	if err := form.Validate(); err != nil {
		return err
	}

	if len(req.Items) == 0 {
		return errors.New("order must contain at least one item")
	}
	for i, item := range req.Items {
		if item.ProductID <= 0 {
			return fmt.Errorf("item %d: product id is required", i+1)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("item %d: quantity must be positive", i+1)
		}
		if item.Price < 0 {
			return fmt.Errorf("item %d: price must not be negative", i+1)
		}
	}
	if req.TotalAmount < 0 {
		return errors.New("total amount must not be negative")
	}
	return nil
}

func itemsTotal(items []models.OrderItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}
