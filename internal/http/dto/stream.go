package dto

import "github.com/LefterisXris/brew-bean-app/internal/checkout"

const (
	FrameBasket   = "basket"
	FrameCheckout = "checkout"
)

// StreamFrame is one message on the live update socket. Exactly one of
// Basket and Checkout is set, matching Type.
type StreamFrame struct {
	Type     string           `json:"type"`
	Basket   *Basket          `json:"basket,omitempty"`
	Checkout *checkout.Status `json:"checkout,omitempty"`
}
