package middleware

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// SecurityHeaders adds security headers to all responses.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")

		next.ServeHTTP(w, r)
	})
}

// ValidateRequest rejects requests carrying common attack patterns.
func ValidateRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if containsAny(r.URL.Path, pathPatterns) || containsAny(r.URL.Path, scriptPatterns) {
			jsonError(w, http.StatusBadRequest, "invalid request")
			return
		}

		// Search text may legitimately contain "..", so only script patterns apply here.
		query, err := url.QueryUnescape(r.URL.RawQuery)
		if err != nil || containsAny(query, scriptPatterns) {
			jsonError(w, http.StatusBadRequest, "invalid request")
			return
		}

		next.ServeHTTP(w, r)
	})
}

var pathPatterns = []string{
	"..", // Path traversal
	"//", // Path manipulation
}

var scriptPatterns = []string{
	"<script",
	"javascript:",
	"vbscript:",
	"onload=",
	"onerror=",
}

func containsAny(input string, patterns []string) bool {
	if input == "" {
		return false
	}
	lower := strings.ToLower(input)
	for _, s := range patterns {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// jsonError writes the {"detail": ...} error body used across the API.
func jsonError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
