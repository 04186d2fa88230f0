package httputil

import (
	"net/http"
	"testing"
)

func TestNewClients(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)

	clients, err := NewClients("http://proxy.local:3128")
	if err != nil {
		t.Fatalf("new clients with proxy: %v", err)
	}
	u, err := clients.Fetch.Transport.(*http.Transport).Proxy(req)
	if err != nil || u == nil || u.Host != "proxy.local:3128" {
		t.Fatalf("expected configured proxy, got %v %v", u, err)
	}
	if clients.API.Timeout == 0 {
		t.Fatalf("expected API client timeout")
	}
}

func TestNewClients_BadProxy(t *testing.T) {
	if _, err := NewClients("://nope"); err == nil {
		t.Fatalf("expected parse error")
	}
}
