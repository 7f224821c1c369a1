package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowedMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsMaxAge         = "600"
)

// originMatcher holds the parsed CORS_ALLOWED_ORIGINS list. Entries are exact
// origins, "*" for any origin, or a leading-wildcard host such as
// "https://*.sciencehub.pl" that matches any subdomain.
type originMatcher struct {
	any      bool
	exact    map[string]struct{}
	suffixes []string // "https://" + ".sciencehub.pl"
	schemes  []string
}

func newOriginMatcher(origins []string) originMatcher {
	m := originMatcher{exact: make(map[string]struct{})}
	for _, origin := range origins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		switch {
		case origin == "":
		case origin == "*":
			m.any = true
		case strings.Contains(origin, "://*."):
			scheme, host, _ := strings.Cut(origin, "://*")
			m.schemes = append(m.schemes, scheme+"://")
			m.suffixes = append(m.suffixes, host)
		default:
			m.exact[origin] = struct{}{}
		}
	}
	return m
}

func (m originMatcher) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if m.any {
		return true
	}
	if _, ok := m.exact[origin]; ok {
		return true
	}
	for i, suffix := range m.suffixes {
		rest, ok := strings.CutPrefix(origin, m.schemes[i])
		if ok && strings.HasSuffix(rest, suffix) && len(rest) > len(suffix) {
			return true
		}
	}
	return false
}

// CORS lets the web client call the API from the configured origins and read
// the request id plus any exposedHeaders. Preflights from unknown origins are
// answered with 403 without reaching the router.
func CORS(allowedOrigins []string, exposedHeaders ...string) func(http.Handler) http.Handler {
	matcher := newOriginMatcher(allowedOrigins)
	allowHeaders := strings.Join([]string{"Authorization", "Content-Type", RequestIDHeader}, ", ")
	expose := strings.Join(append([]string{RequestIDHeader}, exposedHeaders...), ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			h := w.Header()
			h.Add("Vary", "Origin")

			if !matcher.allows(origin) {
				if preflight && origin != "" {
					http.Error(w, "origin not allowed", http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Expose-Headers", expose)
			if !preflight {
				next.ServeHTTP(w, r)
				return
			}
			h.Add("Vary", "Access-Control-Request-Method")
			h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Max-Age", corsMaxAge)
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
