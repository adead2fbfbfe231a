package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// MockServer creates a test HTTP server with the given handler.
// Returns the server URL. The server is automatically closed when the test finishes.
func MockServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return server.URL
}

// JSONResponse creates an http.HandlerFunc that returns body with the given status.
func JSONResponse(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}
}

// LookupIPJSON returns a JSON body resembling a lookup API IP response.
func LookupIPJSON(ip string) string {
	return fmt.Sprintf(`{
	"ip": "%s",
	"country": "US",
	"city": "Ashburn",
	"isp": "Example ISP",
	"risk": {"score": 12, "level": "low", "proxy": false, "vpn": false}
}`, ip)
}

// ReputationJSON returns a JSON body resembling an ipinfo response.
func ReputationJSON(ip string) string {
	return fmt.Sprintf(`{
	"ip": "%s",
	"hostname": "host.example.net",
	"city": "Ashburn",
	"region": "Virginia",
	"country": "US",
	"org": "AS14618 Amazon.com, Inc.",
	"privacy": {"vpn": false, "proxy": true, "tor": false, "hosting": true}
}`, ip)
}
