package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/merchpos/merchpos/internal/auth"
)

// ownerFrom resolves the owner id scoping every store operation. Signed-out
// requests (auth disabled) run under the shared owner 0.
func ownerFrom(r *http.Request) uint {
	uid, _ := auth.UserIDFromContext(r.Context())
	return uid
}

// fields gives handlers a single accessor over either a JSON object body or
// a parsed form, the two submission styles the UI uses. JSON numbers and
// booleans come back as their plain string spelling so they pass through
// the same input gates as form text.
func fields(r *http.Request) (func(string) string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var m map[string]any
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			return nil, err
		}
		return func(k string) string {
			switch v := m[k].(type) {
			case string:
				return v
			case float64:
				return strconv.FormatFloat(v, 'f', -1, 64)
			case bool:
				return strconv.FormatBool(v)
			case nil:
				return ""
			default:
				return fmt.Sprintf("%v", v)
			}
		}, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return r.FormValue, nil
}

// confirmed reports whether the request carries the explicit confirmation
// irreversible operations require.
func confirmed(get func(string) string) bool {
	return get("confirm") == "true"
}
