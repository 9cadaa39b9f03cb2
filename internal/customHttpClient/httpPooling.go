package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/TCC-RagBot/RagBot-Back/internal/config"
)

var (
	once   sync.Once
	client *http.Client
)

// Shared returns the pooled client the provider SDKs (Gemini, OpenAI) reuse so
// embedding and generation calls keep their connections warm.
func Shared() *http.Client {
	once.Do(func() {
		client = &http.Client{Transport: newTransport()}
	})
	return client
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = config.MaxIdleConns
	t.MaxIdleConnsPerHost = config.MaxIdleConnsPerHost
	t.IdleConnTimeout = config.IdleConnTimeout
	return t
}
