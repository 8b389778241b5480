package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/LefterisXris/brew-bean-app/internal/basket"
	"github.com/LefterisXris/brew-bean-app/internal/catalog"
	"github.com/LefterisXris/brew-bean-app/internal/http/dto"
)

type BasketHandler struct {
	store *basket.Store
	menu  *catalog.Menu
}

func NewBasketHandler(store *basket.Store, menu *catalog.Menu) *BasketHandler {
	return &BasketHandler{store: store, menu: menu}
}

func (h *BasketHandler) Get(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, dto.NewBasket(h.store.Items()))
}

func (h *BasketHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req dto.AddBasketItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.menu.Lookup(r.Context(), req.CoffeeID)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownCoffee) {
			WriteError(w, r, http.StatusNotFound, err.Error())
			return
		}
		WriteError(w, r, http.StatusBadGateway, "could not load coffees: "+err.Error())
		return
	}

	h.store.Add(c, req.Qty())
	WriteJSON(w, http.StatusOK, dto.NewBasket(h.store.Items()))
}

func (h *BasketHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := coffeeID(w, r)
	if !ok {
		return
	}
	var req dto.UpdateQuantityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	h.store.UpdateQuantity(id, *req.Quantity)
	WriteJSON(w, http.StatusOK, dto.NewBasket(h.store.Items()))
}

func (h *BasketHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := coffeeID(w, r)
	if !ok {
		return
	}
	h.store.Remove(id)
	WriteJSON(w, http.StatusOK, dto.NewBasket(h.store.Items()))
}

func (h *BasketHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.store.Clear()
	WriteJSON(w, http.StatusOK, dto.NewBasket(h.store.Items()))
}

func coffeeID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "coffeeId"))
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "coffeeId must be an integer")
		return 0, false
	}
	return id, true
}
