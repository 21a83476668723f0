// Package testutil holds helpers shared by tests across packages.
package testutil

import (
	"net/http/httptest"
	"testing"

	"github.com/negokart/negokart-cli/internal/mockapi"
)

// StartDemoServer runs the in-memory demo backend on an httptest listener
// and tears it down with the test.
func StartDemoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(mockapi.NewServer().Handler())
	t.Cleanup(srv.Close)
	return srv
}
