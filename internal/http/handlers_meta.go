package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"lifeledger/internal/core"
	"lifeledger/internal/log"
	"lifeledger/internal/taxonomy"
)

type classifyResponse struct {
	Merchant string `json:"merchant"`
	Category string `json:"category"`
	Group    string `json:"group"`
}

// handleClassify previews what the writer would store for a merchant.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	merchant := sanitizeInput(r.URL.Query().Get("merchant"))
	if merchant == "" {
		BadRequestError("merchant is required").Write(w)
		return
	}
	category := taxonomy.Classify(merchant)
	NewJSONResponse().Body(classifyResponse{
		Merchant: merchant,
		Category: category,
		Group:    string(taxonomy.ResolveGroup(category, "")),
	}).Write(w)
}

type categoryJSON struct {
	Group         string   `json:"group"`
	Category      string   `json:"category"`
	SubCategories []string `json:"sub_categories,omitempty"`
}

type categoriesResponse struct {
	Calendar []string       `json:"calendar"`
	Ledger   []categoryJSON `json:"ledger"`
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	resp := categoriesResponse{}
	for _, c := range core.Categories() {
		resp.Calendar = append(resp.Calendar, string(c))
	}
	for _, spec := range taxonomy.All() {
		resp.Ledger = append(resp.Ledger, categoryJSON{
			Group:         string(spec.Group),
			Category:      spec.Category,
			SubCategories: spec.SubCategories,
		})
	}
	NewJSONResponse().Body(resp).Write(w)
}

type calendarJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

func (s *Server) handleCalendars(w http.ResponseWriter, r *http.Request) {
	infos, err := s.views.Calendars(r.Context())
	if err != nil {
		s.writeError(w, r, err, log.OpList)
		return
	}
	out := make([]calendarJSON, 0, len(infos))
	for _, c := range infos {
		out = append(out, calendarJSON{ID: c.ID, Name: c.Name, Color: c.Color})
	}
	NewJSONResponse().Body(out).Write(w)
}

type preferencesJSON struct {
	ExternalSyncEnabled bool     `json:"external_sync_enabled"`
	SelectedCalendarIDs []string `json:"selected_calendar_ids"`
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	p, err := s.prefs.Preferences(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err, log.OpRead)
		return
	}
	ids := p.SelectedCalendarIDs
	if ids == nil {
		ids = []string{}
	}
	NewJSONResponse().Body(preferencesJSON{
		ExternalSyncEnabled: p.ExternalSyncEnabled,
		SelectedCalendarIDs: ids,
	}).Write(w)
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req preferencesJSON
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		BadRequestError("decode preferences: " + err.Error()).Write(w)
		return
	}

	p := core.Preferences{ExternalSyncEnabled: req.ExternalSyncEnabled}
	for _, id := range req.SelectedCalendarIDs {
		if id = strings.TrimSpace(id); id != "" {
			p.SelectedCalendarIDs = append(p.SelectedCalendarIDs, id)
		}
	}
	if err := s.prefs.SavePreferences(r.Context(), userID, p); err != nil {
		s.writeError(w, r, err, log.OpUpdate)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
