package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"artisanstudio/internal/metrics"
	"artisanstudio/internal/providers/story"
	"artisanstudio/internal/usage"
)

// MaxBodyBytes caps the size of a craft submission.
const MaxBodyBytes = 1 << 20

// msgGenerateFailed is the only error text a client ever sees from the
// generation endpoints.
const msgGenerateFailed = "Failed to generate story"

// App holds the dependencies shared by the HTTP handlers.
type App struct {
	Generator        story.Generator
	Usage            usage.Recorder
	Metrics          *metrics.Registry
	Logger           zerolog.Logger
	StrictValidation bool

	pending sync.WaitGroup
}

// NewApp wires an App. A nil recorder becomes a no-op recorder.
func NewApp(gen story.Generator, rec usage.Recorder, reg *metrics.Registry, logger zerolog.Logger) *App {
	if rec == nil {
		rec = usage.NopRecorder{}
	}
	return &App{Generator: gen, Usage: rec, Metrics: reg, Logger: logger}
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) ok(w http.ResponseWriter, data any) {
	a.json(w, http.StatusOK, envelope{Success: true, Data: data})
}

func (a *App) fail(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, envelope{Success: false, Error: msg})
}

// WriteInternalError answers with the generic 500 envelope. The router's
// panic recovery uses it too.
func WriteInternalError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: msgGenerateFailed})
}
