package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
)

func (app *Middleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				app.log.Error(r.Context(), "panic recovered", fmt.Errorf("%v", p), "stack", string(debug.Stack()))
				w.Header().Set("Connection", "close")
				errorResponse(w, http.StatusInternalServerError, types.KindInternal, "the server encountered a problem and could not process your request")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
