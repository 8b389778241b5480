package handlers

import (
	"net/http"
	"time"

	"github.com/LefterisXris/brew-bean-app/internal/history"
	"github.com/LefterisXris/brew-bean-app/internal/http/dto"
)

type OrdersHandler struct {
	history *history.Service
	loc     *time.Location
}

func NewOrdersHandler(svc *history.Service, loc *time.Location) *OrdersHandler {
	return &OrdersHandler{history: svc, loc: loc}
}

func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	view, err := h.history.Load(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, "could not load order history: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, dto.NewOrdersResponse(view, h.loc))
}
