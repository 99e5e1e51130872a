package customHttpClient

import (
	"net/http"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/config"
)

// one transport for every outbound client so container, email and liveness calls share idle connections
var customTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// NewPooledClient returns a client on the shared transport. timeout 0 means the caller's
// context is the only deadline.
func NewPooledClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: customTransport,
		Timeout:   timeout,
	}
}

func CloseIdleConnections() {
	customTransport.CloseIdleConnections()
}
