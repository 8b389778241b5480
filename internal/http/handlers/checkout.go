package handlers

import (
	"errors"
	"net/http"

	"github.com/LefterisXris/brew-bean-app/internal/checkout"
	"github.com/LefterisXris/brew-bean-app/internal/http/dto"
)

type CheckoutHandler struct{ flow *checkout.Flow }

func NewCheckoutHandler(flow *checkout.Flow) *CheckoutHandler { return &CheckoutHandler{flow: flow} }

// Submit starts an attempt and answers as soon as it is processing. The
// outcome arrives on the stream or through Status.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckoutRequest
	if !decodeBody(w, r, &req) {
		return
	}

	st, err := h.flow.Start(r.Context(), req.ToRequest())
	switch {
	case err == nil:
		WriteJSON(w, http.StatusAccepted, st)
	case errors.Is(err, checkout.ErrAlreadyProcessing):
		WriteError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, checkout.ErrEmptyBasket),
		errors.Is(err, checkout.ErrMissingCustomerName),
		errors.Is(err, checkout.ErrInvalidPaymentMethod):
		WriteError(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		WriteError(w, r, http.StatusInternalServerError, err.Error())
	}
}

func (h *CheckoutHandler) Status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.flow.Status())
}
