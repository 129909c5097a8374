package engine

import (
	"net/http"
)

// AuthenticatedTransport adiciona o header de autenticação às requisições HTTP
type AuthenticatedTransport struct {
	Base  http.RoundTripper
	Token string
}

func (t *AuthenticatedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clonar a requisição para não modificar a original
	reqCopy := req.Clone(req.Context())

	if t.Token != "" {
		reqCopy.Header.Set("Authorization", "Bearer "+t.Token)
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(reqCopy)
}
