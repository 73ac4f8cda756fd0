// Package httpapi maps URL paths and query parameters onto the store, the
// ingestion manager and the scrapers, applying a uniform response envelope.
package httpapi

import (
	"github.com/go-chi/chi/v5"

	"github.com/nawanshaju/pitlane/internal/ingest"
	"github.com/nawanshaju/pitlane/internal/logger"
	"github.com/nawanshaju/pitlane/internal/scraper"
	"github.com/nawanshaju/pitlane/internal/store"
)

type Handler struct {
	Store   *store.DB
	Ingest  *ingest.Manager
	Scraper *scraper.Scraper
	Logger  *logger.Logger
}

func NewHandler(db *store.DB, manager *ingest.Manager, sc *scraper.Scraper, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	return &Handler{
		Store:   db,
		Ingest:  manager,
		Scraper: sc,
		Logger:  log.WithComponent("http"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)

	r.Route("/drivers", func(r chi.Router) {
		r.Get("/", h.DriversByYear)
		r.Get("/race-wins", h.DriverRaceWins)
		r.Get("/podiums", h.DriverPodiums)
		r.Get("/stats", h.DriverStats)
	})

	r.Route("/meetings", func(r chi.Router) {
		r.Get("/", h.MeetingsByYear)
		r.Get("/get-meeting", h.MeetingByKey)
		r.Get("/get-meeting-info", h.MeetingInfo)
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.SessionsForMeeting)
			r.Get("/get-session", h.SessionByKey)
			r.Get("/session-result", h.SessionResults)
			r.Get("/session-data", h.SessionData)
		})
	})
}
