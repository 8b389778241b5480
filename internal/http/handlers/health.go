package handlers

import (
	"net/http"
	"sync"

	"github.com/LefterisXris/brew-bean-app/internal/clients"
	"github.com/LefterisXris/brew-bean-app/internal/http/dto"
)

const serviceName = "brew-bean"

type HealthHandler struct {
	Probes []clients.HealthProbe
}

func (h *HealthHandler) Self(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, dto.HealthResponse{Status: "ok", Service: serviceName})
}

func (h *HealthHandler) Upstreams(w http.ResponseWriter, r *http.Request) {
	results := make([]clients.HealthResult, len(h.Probes))

	var wg sync.WaitGroup
	wg.Add(len(h.Probes))
	for i := range h.Probes {
		i := i
		go func() {
			defer wg.Done()
			results[i] = clients.CheckHealth(r.Context(), h.Probes[i])
		}()
	}
	wg.Wait()

	status := "ok"
	for _, res := range results {
		if !res.OK {
			status = "degraded"
			break
		}
	}
	WriteJSON(w, http.StatusOK, dto.UpstreamsHealthResponse{Status: status, Service: serviceName, Upstream: results})
}
