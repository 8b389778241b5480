package dto

import (
	"github.com/LefterisXris/brew-bean-app/internal/checkout"
	"github.com/LefterisXris/brew-bean-app/internal/coffee"
)

type CheckoutRequest struct {
	CustomerName  string `json:"customerName" validate:"max=100"`
	PaymentMethod string `json:"paymentMethod" validate:"required"`
}

func (r CheckoutRequest) Validate() error { return validate.Struct(r) }

func (r CheckoutRequest) ToRequest() checkout.Request {
	return checkout.Request{
		CustomerName:  r.CustomerName,
		PaymentMethod: coffee.PaymentMethod(r.PaymentMethod),
	}
}

type PaymentMethodOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func PaymentMethodOptions() []PaymentMethodOption {
	methods := coffee.PaymentMethods()
	out := make([]PaymentMethodOption, 0, len(methods))
	for _, m := range methods {
		out = append(out, PaymentMethodOption{Value: string(m), Label: m.Label()})
	}
	return out
}
