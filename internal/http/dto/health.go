package dto

import "github.com/LefterisXris/brew-bean-app/internal/clients"

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type UpstreamsHealthResponse struct {
	Status   string                 `json:"status"`
	Service  string                 `json:"service"`
	Upstream []clients.HealthResult `json:"upstream"`
}
