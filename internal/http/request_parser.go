// This file implements parsing and validation of request data.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lifeledger/internal/core"
	"lifeledger/internal/services"
)

// HeaderUserID carries the caller's user id. Authentication is handled in
// front of this service.
const HeaderUserID = "X-User-ID"

const maxBodyBytes = 64 << 10

var errNoUser = errors.New("missing " + HeaderUserID + " header")

// UserID returns the caller's user id, or fallback when the header is
// absent.
func UserID(r *http.Request, fallback string) (string, error) {
	if id := sanitizeInput(r.Header.Get(HeaderUserID)); id != "" {
		return id, nil
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", errNoUser
}

// DaysQuery is a parsed GET /api/days request.
type DaysQuery struct {
	Window  core.Window
	Filters core.FilterSet
}

// ParseDaysQuery reads from, to and filters. Missing bounds default to
// today ± months in loc.
func ParseDaysQuery(q url.Values, now time.Time, loc *time.Location, months int) (DaysQuery, error) {
	local := now.In(loc)
	w := core.DefaultWindow(core.NewDate(local.Year(), int(local.Month()), local.Day()), months)

	if v := strings.TrimSpace(q.Get("from")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return DaysQuery{}, fmt.Errorf("from: %w", err)
		}
		w.From = d
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return DaysQuery{}, fmt.Errorf("to: %w", err)
		}
		w.To = d
	}
	if w.To.Before(w.From.Time) {
		return DaysQuery{}, fmt.Errorf("%w: to %s is before from %s", core.ErrInvalidDate, w.To, w.From)
	}

	filters, err := core.ParseFilters(q.Get("filters"))
	if err != nil {
		return DaysQuery{}, err
	}
	return DaysQuery{Window: w, Filters: filters}, nil
}

// recordRequest is the JSON body of POST and PUT /api/records.
type recordRequest struct {
	Source      string `json:"source"`
	Category    string `json:"category"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Location    string `json:"location"`
	Memo        string `json:"memo"`
	Amount      int64  `json:"amount"`
	IsReceived  bool   `json:"is_received"`
	IsPaid      bool   `json:"is_paid"`
	IsCompleted bool   `json:"is_completed"`
	Relation    string `json:"relation"`

	LedgerCategory string `json:"ledger_category"`
	SubCategory    string `json:"sub_category"`
	PaymentMethod  string `json:"payment_method"`
	Recurrence     string `json:"recurrence"`
}

// DecodeRecord reads a record body into a writer form. The id comes from
// the path on updates and is empty on creates.
func DecodeRecord(r *http.Request, userID, id string) (services.FormInput, error) {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	var req recordRequest
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return services.FormInput{}, errors.New("empty request body")
		}
		return services.FormInput{}, fmt.Errorf("decode record: %w", err)
	}
	if req.Amount < 0 {
		return services.FormInput{}, errors.New("amount must not be negative")
	}
	freq, err := services.ParseFrequency(req.Recurrence)
	if err != nil {
		return services.FormInput{}, err
	}

	return services.FormInput{
		UserID:         userID,
		ID:             id,
		Source:         core.Source(strings.ToLower(sanitizeInput(req.Source))),
		Category:       core.Category(strings.ToLower(sanitizeInput(req.Category))),
		Type:           sanitizeInput(req.Type),
		Name:           sanitizeInput(req.Name),
		Date:           sanitizeInput(req.Date),
		StartTime:      sanitizeInput(req.StartTime),
		EndTime:        sanitizeInput(req.EndTime),
		Location:       sanitizeInput(req.Location),
		Memo:           sanitizeInput(req.Memo),
		Amount:         req.Amount,
		IsReceived:     req.IsReceived,
		IsPaid:         req.IsPaid,
		IsCompleted:    req.IsCompleted,
		Relation:       sanitizeInput(req.Relation),
		LedgerCategory: sanitizeInput(req.LedgerCategory),
		SubCategory:    sanitizeInput(req.SubCategory),
		PaymentMethod:  sanitizeInput(req.PaymentMethod),
		Recurrence:     freq,
	}, nil
}

// sanitizeInput removes control characters except tab and newlines, and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
