package handlers

import (
	"net/http"

	"github.com/LefterisXris/brew-bean-app/internal/catalog"
	"github.com/LefterisXris/brew-bean-app/internal/http/dto"
)

type CatalogHandler struct{ menu *catalog.Menu }

func NewCatalogHandler(menu *catalog.Menu) *CatalogHandler { return &CatalogHandler{menu: menu} }

func (h *CatalogHandler) ListCoffees(w http.ResponseWriter, r *http.Request) {
	coffees, err := h.menu.Coffees(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, "could not load coffees: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, coffees)
}

func (h *CatalogHandler) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, dto.PaymentMethodOptions())
}
