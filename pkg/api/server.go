package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/panels/pkg/errors"
	"github.com/matzehuels/panels/pkg/keyboard"
	"github.com/matzehuels/panels/pkg/resize"
	"github.com/matzehuels/panels/pkg/store"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	// Keys handles POST /keys. Nil builds a dispatcher with default bindings.
	Keys *keyboard.Dispatcher
	// Queue applies resize plans. Nil builds one on a frame timer.
	Queue *resize.Queue
	// Plan configures the multi-panel resize passes.
	Plan   resize.PlanOptions
	Logger *log.Logger
}

// Server serves one store.
type Server struct {
	store  *store.Store
	keys   *keyboard.Dispatcher
	queue  *resize.Queue
	plan   resize.PlanOptions
	logger *log.Logger
}

// NewServer returns a server for st.
func NewServer(st *store.Store, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = st.Logger()
	}
	keys := opts.Keys
	if keys == nil {
		keys = keyboard.NewDispatcher(st, keyboard.Options{Logger: logger})
	}
	queue := opts.Queue
	if queue == nil {
		queue = resize.NewQueue(st, resize.QueueOptions{Logger: logger})
	}
	return &Server{store: st, keys: keys, queue: queue, plan: opts.Plan, logger: logger}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/state", s.handleState)

	r.Route("/panels", func(r chi.Router) {
		r.Get("/", s.handleListPanels)
		r.Post("/", s.handleAddPanel)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetPanel)
			r.Patch("/", s.handleUpdatePanel)
			r.Delete("/", s.handleRemovePanel)
			r.Post("/select", s.handleSelectPanel)
			r.Post("/duplicate", s.handleDuplicatePanel)
			r.Post("/center", s.handleCenterPanel)
		})
	})
	r.Delete("/selection", s.handleClearSelection)

	r.Post("/history/undo", s.handleUndo)
	r.Post("/history/redo", s.handleRedo)
	r.Post("/keys", s.handleKeys)
	r.Get("/grid", s.handleGetGrid)
	r.Put("/grid", s.handleUpdateGrid)
	r.Put("/viewport", s.handleSetViewport)

	r.Route("/workspaces", func(r chi.Router) {
		r.Get("/", s.handleListWorkspaces)
		r.Post("/", s.handleSaveWorkspace)
		r.Get("/{id}", s.handleGetWorkspace)
		r.Delete("/{id}", s.handleDeleteWorkspace)
		r.Post("/{id}/load", s.handleLoadWorkspace)
	})

	r.Route("/resize", func(r chi.Router) {
		r.Post("/proportional", s.handleProportional)
		r.Post("/group", s.handleGroup)
		r.Get("/queue", s.handleQueue)
	})

	r.Route("/render", func(r chi.Router) {
		r.Get("/svg", s.handleRenderSVG)
		r.Get("/dot", s.handleRenderDOT)
		r.Get("/preview", s.handleRenderPreview)
		r.Get("/adjacency", s.handleAdjacency)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// =============================================================================
// Encoding
// =============================================================================

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: errors.UserMessage(err)}})
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest, err, "invalid request body")
	}
	return nil
}
