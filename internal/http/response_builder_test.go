package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"lifeledger/internal/core"
)

func TestJSONResponseBuilder(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Custom", "1").
		Body(map[string]int{"n": 2}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Errorf("content type = %q", got)
	}
	if w.Header().Get("X-Custom") != "1" {
		t.Error("custom header missing")
	}
	if w.Body.String() != "{\"n\":2}\n" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestJSONResponseBuilderNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Body("ignored").Write(w)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("status = %d body = %q", w.Code, w.Body.String())
	}
}

func TestMethodNotAllowedError(t *testing.T) {
	w := httptest.NewRecorder()
	MethodNotAllowedError("GET, POST").Write(w)
	if w.Code != http.StatusMethodNotAllowed || w.Header().Get("Allow") != "GET, POST" {
		t.Errorf("status = %d allow = %q", w.Code, w.Header().Get("Allow"))
	}
}

func TestDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{core.ErrReadOnlySource, http.StatusConflict, "read_only_source"},
		{fmt.Errorf("validate: %w", core.ErrInvalidDate), http.StatusBadRequest, "invalid_date"},
		{fmt.Errorf("%w: category x", core.ErrUnknownWriteRoute), http.StatusUnprocessableEntity, "unknown_write_route"},
		{fmt.Errorf("delete ledger:9: %w", core.ErrNotFound), http.StatusNotFound, "not_found"},
		{&core.PartialRecurrenceError{GroupID: "g", Index: 4, Total: 12, InsertedIDs: []string{"event:1"}, Err: errors.New("x")}, http.StatusMultiStatus, "partial_recurrence"},
	}
	for _, tt := range tests {
		resp, ok := DomainError(tt.err)
		if !ok {
			t.Fatalf("%v: not a domain error", tt.err)
		}
		w := httptest.NewRecorder()
		resp.Write(w)
		if w.Code != tt.status {
			t.Errorf("%v: status = %d, want %d", tt.err, w.Code, tt.status)
		}
		var body errorBody
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body.Code != tt.code {
			t.Errorf("%v: code = %q, want %q", tt.err, body.Code, tt.code)
		}
		if tt.code == "partial_recurrence" && (body.FailedIndex == nil || *body.FailedIndex != 4 || body.Total != 12) {
			t.Errorf("partial details = %+v", body)
		}
	}

	if _, ok := DomainError(errors.New("boom")); ok {
		t.Error("plain errors are not domain errors")
	}
}
