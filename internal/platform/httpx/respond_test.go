package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var errMissing = errors.New("missing")

func TestErrorMapRespond(t *testing.T) {
	m := ErrorMap{{Target: errMissing, Status: http.StatusNotFound, Title: "Not Found"}}

	rr := httptest.NewRecorder()
	m.Respond(rr, fmt.Errorf("lookup 7: %w", errMissing))
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

	var problem ProblemDetail
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&problem))
	require.Equal(t, "Not Found", problem.Title)
	require.Equal(t, "lookup 7: missing", problem.Detail)

	rr = httptest.NewRecorder()
	m.Respond(rr, errors.New("secret"))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.NotContains(t, rr.Body.String(), "secret")
	require.Equal(t, http.StatusInternalServerError, m.Status(errors.New("other")))
}

func TestDecodeJSON(t *testing.T) {
	var target struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"tea"}`))
	require.NoError(t, DecodeJSON(req, &target))
	require.Equal(t, "tea", target.Name)

	for _, body := range []string{`{"nope":1}`, `{"name":"a"} {}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		require.ErrorIs(t, DecodeJSON(req, &target), ErrBadRequest, body)
	}
}
