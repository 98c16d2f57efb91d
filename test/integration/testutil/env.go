package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// StartServer serves h on a local port for the duration of the test.
func StartServer(t *testing.T, h http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}
