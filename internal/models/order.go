package models

import (
	"time"
)

// OrderStatus represents the fulfilment state of an order
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

// DeliveryMethod is one of the shipping options offered at checkout
type DeliveryMethod string

const (
	DeliveryRainbowPortal   DeliveryMethod = "rainbow-portal"   // 2-3 days
	DeliveryPegasus         DeliveryMethod = "pegasus"          // 5-7 days
	DeliveryUnicornCarriage DeliveryMethod = "unicorn-carriage" // 7-10 days
)

// DeliveryMethods lists the accepted delivery methods in display order
var DeliveryMethods = []DeliveryMethod{
	DeliveryRainbowPortal,
	DeliveryPegasus,
	DeliveryUnicornCarriage,
}

// IsValid reports whether d is an accepted delivery method
func (d DeliveryMethod) IsValid() bool {
	for _, m := range DeliveryMethods {
		if d == m {
			return true
		}
	}
	return false
}

// Label returns the human readable name of the delivery method
func (d DeliveryMethod) Label() string {
	switch d {
	case DeliveryRainbowPortal:
		return "Rainbow Portal Express (2-3 days)"
	case DeliveryPegasus:
		return "Pegasus Air Mail (5-7 days)"
	case DeliveryUnicornCarriage:
		return "Unicorn Carriage (7-10 days)"
	}
	return string(d)
}

// Order is a persisted customer order
type Order struct {
	ID              int64          `json:"id"`
	CustomerName    string         `json:"customerName"`
	CustomerEmail   string         `json:"customerEmail"`
	DeliveryAddress string         `json:"deliveryAddress"`
	DeliveryMethod  DeliveryMethod `json:"deliveryMethod"`
	TotalAmount     int64          `json:"totalAmount"`
	OrderDate       time.Time      `json:"orderDate"`
	Status          OrderStatus    `json:"status"`
	Items           []OrderItem    `json:"items"`
}

// OrderItem is a single product line of an order
type OrderItem struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
}

// CreateOrderRequest is the body of POST /api/orders
type CreateOrderRequest struct {
	CustomerName    string         `json:"customerName"`
	CustomerEmail   string         `json:"customerEmail"`
	DeliveryAddress string         `json:"deliveryAddress"`
	DeliveryMethod  DeliveryMethod `json:"deliveryMethod"`
	Items           []OrderItem    `json:"items"`
	TotalAmount     int64          `json:"totalAmount"`
}

// OrderResponse is returned after an order has been created
type OrderResponse struct {
	ID              int64          `json:"id"`
	CustomerName    string         `json:"customerName"`
	CustomerEmail   string         `json:"customerEmail"`
	DeliveryAddress string         `json:"deliveryAddress"`
	DeliveryMethod  DeliveryMethod `json:"deliveryMethod"`
	TotalAmount     int64          `json:"totalAmount"`
	OrderDate       time.Time      `json:"orderDate"`
	Status          OrderStatus    `json:"status"`
}

// ToResponse converts an order into its creation response
func (o *Order) ToResponse() OrderResponse {
	return OrderResponse{
		ID:              o.ID,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		DeliveryAddress: o.DeliveryAddress,
		DeliveryMethod:  o.DeliveryMethod,
		TotalAmount:     o.TotalAmount,
		OrderDate:       o.OrderDate,
		Status:          o.Status,
	}
}

// NewOrder builds an unsaved order from a creation request
func NewOrder(req CreateOrderRequest) *Order {
	items := make([]OrderItem, len(req.Items))
	copy(items, req.Items)

	return &Order{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryMethod:  req.DeliveryMethod,
		TotalAmount:     req.TotalAmount,
		Status:          OrderPending,
		Items:           items,
	}
}
