package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"fleet-ops-backend/internal/auth"
	"fleet-ops-backend/internal/pipeline"
	"fleet-ops-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	pipeline *pipeline.Service
	verifier *auth.Verifier
	webpush  *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, pipe *pipeline.Service, verifier *auth.Verifier, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:    s,
		pipeline: pipe,
		verifier: verifier,
		webpush:  webpushOptions,
	}
}
