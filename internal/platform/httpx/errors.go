package httpx

import (
	"errors"
	"net/http"
)

// ErrorRule maps one sentinel error to a problem response.
type ErrorRule struct {
	Target error
	Status int
	Title  string
}

// ErrorMap resolves domain errors to RFC7807 responses. The first matching rule wins.
type ErrorMap []ErrorRule

// Respond writes the problem response for err. Unmatched errors become a 500 without detail.
func (m ErrorMap) Respond(w http.ResponseWriter, err error) {
	for _, rule := range m {
		if errors.Is(err, rule.Target) {
			Problem(w, rule.Status, rule.Title, err.Error())
			return
		}
	}
	Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

// Status reports the HTTP status Respond would use for err.
func (m ErrorMap) Status(err error) int {
	for _, rule := range m {
		if errors.Is(err, rule.Target) {
			return rule.Status
		}
	}
	return http.StatusInternalServerError
}
