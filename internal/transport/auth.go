package transport

import (
	"net/http"
)

// Authenticator applies authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request)
}

// NoAuth implements no authentication.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *http.Request) {}

// BearerAuth sends the token as a Bearer authorization header.
type BearerAuth struct {
	Token string
}

// Apply implements the Authenticator interface for BearerAuth.
func (a *BearerAuth) Apply(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+a.Token)
}

// HeaderAuth sends the token in a custom header.
type HeaderAuth struct {
	Header string
	Token  string
}

// Apply implements the Authenticator interface for HeaderAuth.
func (a *HeaderAuth) Apply(req *http.Request) {
	req.Header.Set(a.Header, a.Token)
}

// QueryAuth sends the token as a query parameter.
type QueryAuth struct {
	Param string
	Token string
}

// Apply implements the Authenticator interface for QueryAuth.
func (a *QueryAuth) Apply(req *http.Request) {
	if req.URL == nil {
		return
	}
	query := req.URL.Query()
	query.Set(a.Param, a.Token)
	req.URL.RawQuery = query.Encode()
}

// AuthFor picks an authenticator for a token. An empty token means no
// authentication; an empty or "Authorization" header means a Bearer token; a
// header starting with "?" names a query parameter.
func AuthFor(token, header string) Authenticator {
	switch {
	case token == "":
		return &NoAuth{}
	case header == "" || http.CanonicalHeaderKey(header) == "Authorization":
		return &BearerAuth{Token: token}
	case header[0] == '?':
		return &QueryAuth{Param: header[1:], Token: token}
	default:
		return &HeaderAuth{Header: header, Token: token}
	}
}
