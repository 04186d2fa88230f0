package httputil

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type Clients struct {
	Fetch *http.Client // optionally proxied, for listing pages
	API   *http.Client // direct, for object storage
}

// NewClients builds the outbound clients. An empty proxyURL disables the proxy.
func NewClients(proxyURL string) (*Clients, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(u)
	}

	fetch := &http.Client{
		Timeout:   15 * time.Second,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	return &Clients{
		Fetch: fetch,
		API:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}
