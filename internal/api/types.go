package api

import (
	"strings"

	"github.com/shopspring/decimal"
)

// User is the authenticated account as the backend reports it.
type User struct {
	ID        int64   `json:"id,omitempty"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	ImageURL  *string `json:"imageUrl"`
	Role      string  `json:"role,omitempty"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// LoginResponse is the login payload: a token plus the user's fields.
type LoginResponse struct {
	Token string `json:"token"`
	User
}

// Registration is the sign-up form.
type Registration struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Profile is the editable part of User.
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Product is a catalog entry.
type Product struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Price       decimal.Decimal  `json:"price"`
	OldPrice    *decimal.Decimal `json:"oldPrice,omitempty"`
	Image       string           `json:"image,omitempty"`
	Category    string           `json:"category,omitempty"`
	Stock       int              `json:"stock,omitempty"`
	Badge       string           `json:"badge,omitempty"`
}

// Page is one page of a product listing.
type Page struct {
	Content       []Product `json:"content"`
	Number        int       `json:"number"`
	TotalPages    int       `json:"totalPages"`
	TotalElements int64     `json:"totalElements"`
	Size          int       `json:"size"`
}

// Status is an order's server-owned lifecycle state.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// Normalize upper-cases s; the backend is not consistent about case.
func (s Status) Normalize() Status { return Status(strings.ToUpper(string(s))) }

// Cancellable reports whether the cancel control should be offered.
// The backend decides; this is only a hint from the last poll.
func (s Status) Cancellable() bool { return s.Normalize() == StatusPending }

// Next is the status automation advances s to, or "" for terminal states.
func (s Status) Next() Status {
	switch s.Normalize() {
	case StatusPending:
		return StatusProcessing
	case StatusProcessing:
		return StatusShipped
	case StatusShipped:
		return StatusDelivered
	default:
		return ""
	}
}

// Terminal reports whether the order will not change again.
func (s Status) Terminal() bool {
	n := s.Normalize()
	return n == StatusDelivered || n == StatusCancelled
}

// OrderItem is one line of a placed order.
type OrderItem struct {
	ID           int64           `json:"id,omitempty"`
	ProductID    int64           `json:"productId,omitempty"`
	ProductName  string          `json:"productName"`
	ProductImage string          `json:"productImage,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
}

// Order is a placed order. OrderDate is kept as the backend formats it.
type Order struct {
	ID              int64           `json:"id,omitempty"`
	OrderNumber     string          `json:"orderNumber"`
	Status          Status          `json:"status"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	OrderDate       string          `json:"orderDate"`
	ShippingAddress string          `json:"shippingAddress,omitempty"`
}

// CancelReason is one of the closed set of reasons the backend accepts.
type CancelReason string

const (
	ReasonChangedMind  CancelReason = "changed_mind"
	ReasonWrongItem    CancelReason = "wrong_item"
	ReasonBetterPrice  CancelReason = "better_price"
	ReasonShippingTime CancelReason = "shipping_time"
	ReasonPaymentIssue CancelReason = "payment_issue"
	ReasonOther        CancelReason = "other"
)

// CancelReasons lists every accepted reason in display order.
var CancelReasons = []CancelReason{
	ReasonChangedMind, ReasonWrongItem, ReasonBetterPrice,
	ReasonShippingTime, ReasonPaymentIssue, ReasonOther,
}

// Valid reports whether r is in CancelReasons.
func (r CancelReason) Valid() bool {
	for _, v := range CancelReasons {
		if r == v {
			return true
		}
	}
	return false
}

// ChatMessage is one line of the support chat.
type ChatMessage struct {
	ID          int64  `json:"id,omitempty"`
	Message     string `json:"message"`
	UserMessage bool   `json:"userMessage"`
	Timestamp   string `json:"timestamp,omitempty"`
}

// ChatExchange is the reply to a sent message.
type ChatExchange struct {
	UserMessage ChatMessage `json:"userMessage"`
	BotResponse ChatMessage `json:"botResponse"`
}
