package gateway

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"go.uber.org/zap"

	"MoviesApp/internal/auth"
	"MoviesApp/pkg/kit"
)

// EdgeIdentity replaces any client supplied identity headers with the ones
// derived from the verified credential. Requests without a valid credential
// are forwarded without identity.
func EdgeIdentity(a auth.Authenticator, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth.StripIdentityHeaders(r.Header)

			p, err := a.Authenticate(r)
			if err == nil {
				auth.InjectIdentityHeaders(r.Header, p)
			} else {
				log.Debug("forwarding anonymously", zap.Error(err), zap.String("path", r.URL.Path))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// NewReverseProxy forwards to target and answers 502 when it is unreachable.
func NewReverseProxy(target string, log *zap.Logger) (*httputil.ReverseProxy, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	p := httputil.NewSingleHostReverseProxy(u)
	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Warn("upstream failed", zap.String("target", target), zap.String("path", r.URL.Path), zap.Error(err))
		kit.WriteError(w, r, http.StatusBadGateway, "upstream unavailable", nil)
	}
	return p, nil
}
