package devapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/LefterisXris/brew-bean-app/internal/coffee"
	"github.com/LefterisXris/brew-bean-app/internal/middleware"
)

type Handler struct {
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

func NewRouter(h *Handler, allowOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Recover(h.logger))
	r.Use(middleware.Logging(h.logger))
	r.Use(middleware.CORS(allowOrigins))

	r.Get("/coffees", h.ListCoffees)
	r.Get("/coffees/{id}", h.GetCoffee)
	r.Get("/orders", h.ListOrders)
	r.Get("/orders/{id}", h.GetOrder)
	r.Post("/orders", h.CreateOrder)

	return r
}

func (h *Handler) ListCoffees(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Coffees())
}

func (h *Handler) GetCoffee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.store.Coffee(id)
	if err != nil {
		middleware.WriteError(w, r, http.StatusNotFound, "coffee not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Orders())
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	o, err := h.store.Order(id)
	if err != nil {
		middleware.WriteError(w, r, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var e coffee.HistoryEntry
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, "invalid order body")
		return
	}

	created, err := h.store.Create(e)
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			middleware.WriteError(w, r, http.StatusUnprocessableEntity, verrs.Error())
			return
		}
		middleware.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "order stored", "order_id", created.ID(), "kind", created.Kind.String())
	writeJSON(w, http.StatusCreated, created)
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, "id must be an integer")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
