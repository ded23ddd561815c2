package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"lifeledger/internal/calendar"
	"lifeledger/internal/core"
	"lifeledger/internal/log"
	"lifeledger/internal/middleware/ratelimit"
	"lifeledger/internal/middleware/security"
	"lifeledger/internal/middleware/trace"
	"lifeledger/internal/services"
	"lifeledger/internal/stores"
)

// DayViewer produces reconciled day views. *services.CalendarService
// implements it.
type DayViewer interface {
	DayView(ctx context.Context, userID string, w core.Window, filters core.FilterSet) (*services.DayView, error)
	Calendars(ctx context.Context) ([]calendar.Info, error)
}

// RecordWriter routes mutations. *services.UnifiedWriter implements it.
type RecordWriter interface {
	Write(ctx context.Context, in services.FormInput, mode services.Mode) (services.WriteResult, error)
	Delete(ctx context.Context, userID, id string, source core.Source) error
}

// PreferenceStore reads and saves user preferences.
type PreferenceStore interface {
	stores.PreferenceReader
	stores.PreferenceWriter
}

// Options configures the server.
type Options struct {
	Addr string
	// DefaultUserID is used when a request has no X-User-ID header. Empty
	// makes the header mandatory.
	DefaultUserID      string
	Location           *time.Location
	WindowMonths       int
	RateLimitPerMinute int
	// Ready reports whether dependencies are reachable. Nil means always.
	Ready  func(ctx context.Context) error
	Logger *log.Logger
}

type Server struct {
	http.Server
	views   DayViewer
	writer  RecordWriter
	prefs   PreferenceStore
	opts    Options
	logger  *log.Logger
	limiter *ratelimit.Limiter
	tracer  *trace.Middleware
	now     func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(opts Options, views DayViewer, writer RecordWriter, prefs PreferenceStore) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.WindowMonths <= 0 {
		opts.WindowMonths = 6
	}
	logger := opts.Logger.WithComponent(log.ComponentHTTP)

	ips := security.MustClientIP(security.DefaultTrustedProxies)
	s := &Server{
		views:   views,
		writer:  writer,
		prefs:   prefs,
		opts:    opts,
		logger:  logger,
		limiter: ratelimit.NewLimiter(ratelimit.Config{Limit: opts.RateLimitPerMinute, Period: time.Minute}),
		tracer:  trace.NewMiddleware(logger, ips.Extract),
		now:     time.Now,
	}

	api := http.NewServeMux()
	api.HandleFunc("GET /api/days", s.handleDays)
	api.HandleFunc("POST /api/records", s.handleCreateRecord)
	api.HandleFunc("PUT /api/records/{id}", s.handleUpdateRecord)
	api.HandleFunc("DELETE /api/records/{id}", s.handleDeleteRecord)
	api.HandleFunc("GET /api/classify", s.handleClassify)
	api.HandleFunc("GET /api/categories", s.handleCategories)
	api.HandleFunc("GET /api/calendars", s.handleCalendars)
	api.HandleFunc("GET /api/preferences", s.handleGetPreferences)
	api.HandleFunc("PUT /api/preferences", s.handlePutPreferences)

	rateKey := func(r *http.Request) string {
		if id := r.Header.Get(HeaderUserID); id != "" {
			return "user:" + id
		}
		return "ip:" + ips.Extract(r)
	}
	limited := s.limiter.Middleware(rateKey, func(w http.ResponseWriter, r *http.Request, retry time.Duration) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded", log.FieldPath, r.URL.Path)
		secs := int(retry.Round(time.Second) / time.Second)
		if secs < 1 {
			secs = 1
		}
		ErrorResponse(http.StatusTooManyRequests, "rate_limited", "rate limit exceeded").
			Header("Retry-After", strconv.Itoa(secs)).
			Write(w)
	})(api)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("/api/", limited)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.tracer.Handler(headers.Handler(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops the server and the rate limiter cleanup loop.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// writeError answers err, logging anything that is not a domain error.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	if resp, ok := DomainError(err); ok {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Request rejected",
			log.FieldOperation, op, log.FieldError, err)
		resp.Write(w)
		return
	}
	log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
		log.FieldOperation, op, log.FieldError, err)
	InternalServerError().Write(w)
}

func (s *Server) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := UserID(r, s.opts.DefaultUserID)
	if err != nil {
		ErrorResponse(http.StatusUnauthorized, "no_user", err.Error()).Write(w)
		return "", false
	}
	return id, true
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	NewJSONResponse().Body(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.opts.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.opts.Ready(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			ErrorResponse(http.StatusServiceUnavailable, "not_ready", "not ready").Write(w)
			return
		}
	}
	NewJSONResponse().Body(map[string]string{"status": "ready"}).Write(w)
}
