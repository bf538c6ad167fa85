package database

import (
	"net/http"
)

// WithRequestScope creates middleware that scopes each request's context to the pool
// so repositories called by handlers find a Querier.
func WithRequestScope(db *DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(db.WithScope(r.Context())))
		})
	}
}
