package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"lifeledger/internal/core"
	"lifeledger/internal/services"
)

func TestParseDaysQuery(t *testing.T) {
	seoul := time.FixedZone("KST", 9*3600)
	// 2026-03-31 20:00 UTC is already April 1st in Seoul.
	now := time.Date(2026, 3, 31, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		query    string
		from, to string
		filters  string
		wantErr  bool
	}{
		{"defaults use local today", "", "2026-03-01", "2026-05-01", "ceremony,todo,schedule,expense", false},
		{"explicit window", "from=2026-01-01&to=2026-01-31", "2026-01-01", "2026-01-31", "ceremony,todo,schedule,expense", false},
		{"only from", "from=2026-04-01", "2026-04-01", "2026-05-01", "ceremony,todo,schedule,expense", false},
		{"filters", "filters=Expense,todo", "2026-03-01", "2026-05-01", "todo,expense", false},
		{"single day", "from=2026-03-01&to=2026-03-01", "2026-03-01", "2026-03-01", "ceremony,todo,schedule,expense", false},
		{"bad from", "from=03/01/2026", "", "", "", true},
		{"inverted", "from=2026-03-02&to=2026-03-01", "", "", "", true},
		{"unknown filter", "filters=birthday", "", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			got, err := ParseDaysQuery(q, now, seoul, 1)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Window.From.String() != tt.from || got.Window.To.String() != tt.to {
				t.Errorf("window = %s..%s, want %s..%s", got.Window.From, got.Window.To, tt.from, tt.to)
			}
			if got.Filters.String() != tt.filters {
				t.Errorf("filters = %q, want %q", got.Filters.String(), tt.filters)
			}
		})
	}
}

func TestParseDaysQueryInvertedIsInvalidDate(t *testing.T) {
	q, _ := url.ParseQuery("from=2026-03-02&to=2026-03-01")
	_, err := ParseDaysQuery(q, time.Now(), time.UTC, 1)
	if !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("err = %v, want ErrInvalidDate", err)
	}
}

func TestDecodeRecord(t *testing.T) {
	body := `{"source":" Events ","category":"Schedule","name":"  Standup\u0007 ","date":"2026-03-02","start_time":"09:30","amount":0,"recurrence":"WEEKLY"}`
	req := httptest.NewRequest(http.MethodPost, "/api/records", strings.NewReader(body))

	in, err := DecodeRecord(req, "u1", "")
	if err != nil {
		t.Fatalf("DecodeRecord: %v", err)
	}
	want := services.FormInput{
		UserID:     "u1",
		Source:     core.SourceEvents,
		Category:   core.CategorySchedule,
		Name:       "Standup",
		Date:       "2026-03-02",
		StartTime:  "09:30",
		Recurrence: services.FrequencyWeekly,
	}
	if in != want {
		t.Errorf("got %+v\nwant %+v", in, want)
	}
}

func TestDecodeRecordErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"not json", "category=todo"},
		{"unknown field", `{"category":"todo","owner":"x"}`},
		{"negative amount", `{"category":"expense","amount":-1}`},
		{"bad recurrence", `{"category":"schedule","recurrence":"hourly"}`},
		{"too large", `{"memo":"` + strings.Repeat("a", maxBodyBytes) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/records", strings.NewReader(tt.body))
			if _, err := DecodeRecord(req, "u1", ""); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := UserID(req, ""); err == nil {
		t.Error("expected error without header or fallback")
	}
	if id, _ := UserID(req, "owner"); id != "owner" {
		t.Errorf("fallback id = %q", id)
	}
	req.Header.Set(HeaderUserID, " u7 ")
	if id, _ := UserID(req, "owner"); id != "u7" {
		t.Errorf("header id = %q", id)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := map[string]string{
		"  plain  ":          "plain",
		"a\x00b\x1bc":        "abc",
		"line1\nline2\tend":  "line1\nline2\tend",
		"결혼식 축의금\x07": "결혼식 축의금",
	}
	for in, want := range tests {
		if got := sanitizeInput(in); got != want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", in, got, want)
		}
	}
}
