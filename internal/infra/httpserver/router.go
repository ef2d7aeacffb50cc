package httpserver

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	appanalysis "github.com/bryanwahyu/reviewlens/internal/application/analysis"
	"github.com/bryanwahyu/reviewlens/internal/application/session"
	domai "github.com/bryanwahyu/reviewlens/internal/domain/ai"
	domain "github.com/bryanwahyu/reviewlens/internal/domain/analysis"
	"github.com/bryanwahyu/reviewlens/internal/middleware"
)

//go:embed templates/*.tmpl
var templates embed.FS

const (
	defaultCookieName = "reviewlens_session"
	maxBodyBytes      = 1 << 20
)

var errInvalidBody = errors.New("invalid request body")

// Options configures the optional parts of the router.
type Options struct {
	CookieName     string
	AllowedOrigins []string
	PromptVersion  string
	MaxInputChars  int
	Checkers       map[string]middleware.HealthChecker
	Metrics        *middleware.Metrics // nil disables /metrics
	Logger         *slog.Logger
}

type Router struct {
	sessions *session.Registry
	oneShot  func() *appanalysis.Controller
	page     *template.Template
	opts     Options
}

// NewRouter wires the page, the JSON API and the operational endpoints.
// oneShot builds a throwaway controller for each JSON API call.
func NewRouter(sessions *session.Registry, oneShot func() *appanalysis.Controller, opts Options) http.Handler {
	if opts.CookieName == "" {
		opts.CookieName = defaultCookieName
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	r := &Router{
		sessions: sessions,
		oneShot:  oneShot,
		page: template.Must(template.New("").
			Funcs(template.FuncMap{"percent": percent}).
			ParseFS(templates, "templates/*.tmpl")),
		opts: opts,
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RealIP)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.LoggingMiddleware(opts.Logger))
	if opts.Metrics != nil {
		mux.Use(opts.Metrics.Middleware)
		mux.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	mux.Get("/health", middleware.HealthHandler(opts.Checkers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)

	mux.Get("/", r.wrap(r.handleIndex))
	mux.Post("/analyze", r.wrap(r.handleSubmit))

	mux.Route("/api/v1", func(rt chi.Router) {
		rt.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		rt.Post("/analyze", r.wrap(r.handleAPIAnalyze))
		rt.Get("/state", r.wrap(r.handleAPIState))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrEmptyInput):
			http.Error(w, "text is required", http.StatusBadRequest)
		case errors.Is(err, errInvalidBody):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, domain.ErrInFlight):
			http.Error(w, "an analysis is already in progress", http.StatusConflict)
		case errors.Is(err, domain.ErrInputTooLong):
			http.Error(w, domain.MsgTooLong, http.StatusUnprocessableEntity)
		case errors.Is(err, domai.ErrQuotaExceeded):
			http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
		default:
			r.opts.Logger.Error("[HTTP] Handler failed",
				slog.String("path", req.URL.Path),
				slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}
}

// session returns the caller's controller, issuing a cookie for new sessions.
func (r *Router) session(w http.ResponseWriter, req *http.Request) *appanalysis.Controller {
	var id string
	if c, err := req.Cookie(r.opts.CookieName); err == nil {
		id = c.Value
	}
	newID, ctrl := r.sessions.Acquire(id)
	if newID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     r.opts.CookieName,
			Value:    newID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   req.TLS != nil,
		})
	}
	return ctrl
}

type pageData struct {
	State         domain.State
	Busy          bool
	MaxChars      int
	PromptVersion string
}

// GET /
func (r *Router) handleIndex(w http.ResponseWriter, req *http.Request) error {
	st := r.session(w, req).State()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	return r.page.ExecuteTemplate(w, "index.html.tmpl", pageData{
		State:         st,
		Busy:          st.Loading(),
		MaxChars:      r.opts.MaxInputChars,
		PromptVersion: r.opts.PromptVersion,
	})
}

// POST /analyze
// Blank submissions and submissions made while loading leave the state as it
// is; the page is shown again either way.
func (r *Router) handleSubmit(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)
	if err := req.ParseForm(); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}

	ctrl := r.session(w, req)
	_, err := ctrl.Start(req.PostFormValue("text"))
	switch {
	case err == nil,
		errors.Is(err, domain.ErrEmptyInput),
		errors.Is(err, domain.ErrInFlight),
		errors.Is(err, domain.ErrInputTooLong):
	default:
		return err
	}

	http.Redirect(w, req, "/", http.StatusSeeOther)
	return nil
}

// POST /api/v1/analyze
// Body: {"text": "<review>"}
// Runs the analysis to completion and returns the settled state. A model
// failure is reported as an error state with 502.
func (r *Router) handleAPIAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Text string `json:"text"`
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}

	st, err := r.oneShot().Run(req.Context(), body.Text)
	switch {
	case errors.Is(err, domain.ErrInputTooLong):
		return writeJSON(w, http.StatusUnprocessableEntity, st)
	case err != nil:
		return err
	case st.Status == domain.StatusError:
		return writeJSON(w, http.StatusBadGateway, st)
	}
	return writeJSON(w, http.StatusOK, st)
}

// GET /api/v1/state
// Callers without a session get the idle state; no session is created.
func (r *Router) handleAPIState(w http.ResponseWriter, req *http.Request) error {
	st := domain.Idle()
	if c, err := req.Cookie(r.opts.CookieName); err == nil {
		if ctrl, ok := r.sessions.Get(c.Value); ok {
			st = ctrl.State()
		}
	}
	return writeJSON(w, http.StatusOK, st)
}

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

func percent(confidence float64) string {
	return fmt.Sprintf("%.0f%%", confidence*100)
}
