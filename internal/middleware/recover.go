package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Recoverer turns a handler panic into a logged error and a response written
// by onPanic. http.ErrAbortHandler is re-raised so net/http can abort the
// connection.
func Recoverer(onPanic func(http.ResponseWriter)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				zerolog.Ctx(r.Context()).Error().
					Interface("panic", rvr).
					Bytes("stack", debug.Stack()).
					Msg("handler panic recovered")
				if r.Header.Get("Connection") != "Upgrade" {
					onPanic(w)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
