package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"artisanstudio/internal/usage"
)

const maxStatsWindowHours = 24 * 30

// StatsSummary reports generation counts per source and provider over the
// last ?hours=N hours (default 24).
func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if raw := r.URL.Query().Get("hours"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxStatsWindowHours {
			a.fail(w, http.StatusBadRequest, "hours must be between 1 and 720")
			return
		}
		hours = n
	}
	rows, err := a.Usage.Summary(r.Context(), time.Duration(hours)*time.Hour)
	if errors.Is(err, usage.ErrDisabled) {
		a.fail(w, http.StatusServiceUnavailable, "usage statistics are not enabled")
		return
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("load usage summary")
		a.fail(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	a.ok(w, map[string]any{"windowHours": hours, "rows": rows})
}
