package middleware

import (
	"net/http"
	"strings"
)

// MethodOverrideField is read from the query string, then from the form.
const MethodOverrideField = "_method"

const maxOverrideFormMemory = 32 << 20

var overridable = map[string]bool{
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// MethodOverride turns a POST carrying _method=PUT (or PATCH, DELETE) into
// that method before routing. Multipart bodies are parsed here and stay
// available to the handler through r.MultipartForm.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			m := r.URL.Query().Get(MethodOverrideField)
			if m == "" {
				ct := r.Header.Get("Content-Type")
				switch {
				case strings.HasPrefix(ct, "multipart/form-data"):
					if err := r.ParseMultipartForm(maxOverrideFormMemory); err == nil {
						m = r.FormValue(MethodOverrideField)
					}
				case strings.HasPrefix(ct, "application/x-www-form-urlencoded"):
					m = r.FormValue(MethodOverrideField)
				}
			}
			if m = strings.ToUpper(strings.TrimSpace(m)); overridable[m] {
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}
