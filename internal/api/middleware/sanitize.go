package middleware

import (
	"net/http"
	"strings"

	"github.com/cybershield/intel/internal/util"
)

const maxLoggedValue = 200

var sensitiveHeaders = map[string]struct{}{
	"authorization":       {},
	"cookie":              {},
	"set-cookie":          {},
	"proxy-authorization": {},
	"x-api-key":           {},
	"x-api-token":         {},
	"x-auth-token":        {},
	"x-forwarded-for":     {},
}

// SanitizeHeaders redacts credentials and cleans the remaining header
// values for logging.
func SanitizeHeaders(h http.Header) map[string][]string {
	if h == nil {
		return nil
	}
	out := make(map[string][]string, len(h))
	for k, vals := range h {
		if _, ok := sensitiveHeaders[strings.ToLower(k)]; ok {
			out[k] = []string{"<redacted>"}
			continue
		}
		cleaned := make([]string, 0, len(vals))
		for _, v := range vals {
			cleaned = append(cleaned, util.Truncate(util.SanitizeForLog(v), maxLoggedValue))
		}
		out[k] = cleaned
	}
	return out
}

// SanitizePath strips the query string and control characters from a path
// and bounds its length.
func SanitizePath(p string) string {
	if i := strings.IndexByte(p, '?'); i != -1 {
		p = p[:i]
	}
	return util.Truncate(util.SanitizeForLog(p), maxLoggedValue)
}
