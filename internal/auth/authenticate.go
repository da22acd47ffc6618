package auth

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Identity headers set by the gateway for downstream services.
const (
	HeaderUserID    = "X-User-Id"
	HeaderUserName  = "X-User-Name"
	HeaderUserRoles = "X-User-Roles"
)

// Authenticator extracts a principal from a request. It returns
// ErrNoCredential when the request carries none.
type Authenticator interface {
	Authenticate(r *http.Request) (Principal, error)
}

type JWTAuthenticator struct {
	Verifier *Verifier
}

func (a JWTAuthenticator) Authenticate(r *http.Request) (Principal, error) {
	authz := r.Header.Get("Authorization")
	if authz == "" {
		return Principal{}, ErrNoCredential
	}

	tok, ok := strings.CutPrefix(authz, "Bearer ")
	if !ok || tok == "" {
		return Principal{}, ErrInvalidToken
	}

	claims, err := a.Verifier.Parse(tok)
	if err != nil {
		return Principal{}, err
	}
	return a.Verifier.Principal(claims), nil
}

// Anonymous never finds a credential.
type Anonymous struct{}

func (Anonymous) Authenticate(*http.Request) (Principal, error) {
	return Principal{}, ErrNoCredential
}

// HeaderAuthenticator trusts identity headers injected by the gateway. Only
// use it when the service is reachable through the gateway alone.
type HeaderAuthenticator struct{}

func (HeaderAuthenticator) Authenticate(r *http.Request) (Principal, error) {
	id := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if id == "" {
		return Principal{}, ErrNoCredential
	}

	name := strings.TrimSpace(r.Header.Get(HeaderUserName))
	if name == "" {
		name = id
	}

	return Principal{
		Subject:  id,
		Username: name,
		Roles:    ParseRoles(r.Header.Get(HeaderUserRoles)),
	}, nil
}

// Authenticate attaches the principal to the request context. Requests with a
// missing or invalid credential continue anonymously; the gate decides.
func Authenticate(a Authenticator, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := a.Authenticate(r)
			switch {
			case err == nil:
				r = r.WithContext(WithPrincipal(r.Context(), p))
			case errors.Is(err, ErrNoCredential):
			default:
				log.Debug("credential rejected", zap.Error(err), zap.String("path", r.URL.Path))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// StripIdentityHeaders removes client supplied identity headers.
func StripIdentityHeaders(h http.Header) {
	h.Del(HeaderUserID)
	h.Del(HeaderUserName)
	h.Del(HeaderUserRoles)
}

// InjectIdentityHeaders writes p as identity headers for HeaderAuthenticator.
func InjectIdentityHeaders(h http.Header, p Principal) {
	StripIdentityHeaders(h)
	h.Set(HeaderUserID, p.Subject)
	if p.Username != "" {
		h.Set(HeaderUserName, p.Username)
	}
	if len(p.Roles) > 0 {
		h.Set(HeaderUserRoles, p.Roles.String())
	}
}
