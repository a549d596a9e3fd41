package middleware

import (
	"net/http"
	"strings"

	connectcors "connectrpc.com/cors"
)

var (
	corsMethods = joinUnique([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}, connectcors.AllowedMethods())
	corsHeaders = joinUnique([]string{"Accept", "Content-Type", "Authorization", RequestIDHeader}, connectcors.AllowedHeaders())
	corsExposed = joinUnique([]string{RequestIDHeader}, connectcors.ExposedHeaders())
)

// CORS reflects the caller's origin and answers preflight requests. Connect protocol headers
// come from connectrpc.com/cors.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		if origin := strings.TrimSpace(r.Header.Get("Origin")); origin != "" {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		} else {
			h.Set("Access-Control-Allow-Origin", "*")
		}
		h.Set("Access-Control-Allow-Methods", corsMethods)
		h.Set("Access-Control-Allow-Headers", corsHeaders)
		h.Set("Access-Control-Expose-Headers", corsExposed)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func joinUnique(lists ...[]string) string {
	seen := map[string]bool{}
	var out []string
	for _, list := range lists {
		for _, v := range list {
			key := strings.ToLower(v)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, v)
		}
	}
	return strings.Join(out, ", ")
}
