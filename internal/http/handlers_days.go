package http

import (
	"net/http"

	"lifeledger/internal/core"
	"lifeledger/internal/log"
	"lifeledger/internal/services"
)

type eventJSON struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	Category    string `json:"category"`
	Type        string `json:"type,omitempty"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
	Location    string `json:"location,omitempty"`
	Memo        string `json:"memo,omitempty"`
	Amount      int64  `json:"amount"`
	IsReceived  bool   `json:"is_received"`
	IsPaid      bool   `json:"is_paid"`
	IsCompleted bool   `json:"is_completed"`
	Relation    string `json:"relation,omitempty"`
	Color       string `json:"color"`
	Writable    bool   `json:"writable"`
}

type totalsJSON struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Net     int64 `json:"net"`
}

type dayJSON struct {
	Date   string      `json:"date"`
	Events []eventJSON `json:"events"`
	Totals *totalsJSON `json:"totals,omitempty"`
}

type daysResponse struct {
	From          string             `json:"from"`
	To            string             `json:"to"`
	Filters       string             `json:"filters"`
	LedgerOnly    bool               `json:"ledger_only"`
	Days          []dayJSON          `json:"days"`
	Stats         services.ViewStats `json:"stats"`
	ExternalError string             `json:"external_error,omitempty"`
}

func toEventJSON(e core.UnifiedEvent) eventJSON {
	return eventJSON{
		ID:          e.ID,
		Source:      string(e.Source),
		Category:    string(e.Category),
		Type:        e.Type,
		Name:        e.Name,
		Date:        e.Date,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Location:    e.Location,
		Memo:        e.Memo,
		Amount:      e.Amount,
		IsReceived:  e.IsReceived,
		IsPaid:      e.IsPaid,
		IsCompleted: e.IsCompleted,
		Relation:    e.Relation,
		Color:       e.Color,
		Writable:    e.Writable(),
	}
}

func toDaysResponse(v *services.DayView) daysResponse {
	resp := daysResponse{
		From:       v.Window.From.String(),
		To:         v.Window.To.String(),
		Filters:    v.Filters.String(),
		LedgerOnly: v.Index.LedgerOnly,
		Days:       make([]dayJSON, 0, v.Index.Len()),
		Stats:      v.Stats,
	}
	if v.ExternalError != nil {
		resp.ExternalError = "external calendar unavailable"
	}
	for _, date := range v.Index.Dates() {
		bucket := v.Index.Day(date)
		day := dayJSON{Date: date, Events: make([]eventJSON, 0, len(bucket.Events))}
		for _, e := range bucket.Events {
			day.Events = append(day.Events, toEventJSON(e))
		}
		if t, ok := v.Index.Totals[date]; ok {
			day.Totals = &totalsJSON{Income: t.Income, Expense: t.Expense, Net: t.Net()}
		}
		resp.Days = append(resp.Days, day)
	}
	return resp
}

// handleDays serves the reconciled day index for a window.
func (s *Server) handleDays(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	q, err := ParseDaysQuery(r.URL.Query(), s.now(), s.opts.Location, s.opts.WindowMonths)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	view, err := s.views.DayView(r.Context(), userID, q.Window, q.Filters)
	if err != nil {
		s.writeError(w, r, err, log.OpList)
		return
	}
	NewJSONResponse().Body(toDaysResponse(view)).Write(w)
}
