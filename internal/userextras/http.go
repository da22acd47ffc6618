package userextras

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MoviesApp/internal/auth"
	"MoviesApp/pkg/kit"
)

// Server serves the current user's extras. Avatars are keyed by the
// principal subject.
type Server struct {
	Store          Store
	Gate           *auth.Gate
	Log            *zap.Logger
	AvatarsBaseURL string
}

type extrasResp struct {
	Updated   bool   `json:"updated"`
	Avatar    string `json:"avatar"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type setAvatarReq struct {
	Avatar string `json:"avatar"`
}

func (s *Server) Routes() http.Handler {
	if s.Log == nil {
		s.Log = zap.NewNop()
	}
	if s.Gate == nil {
		s.Gate = auth.NewGate(auth.DefaultPolicy(), s.Log, nil)
	}

	r := chi.NewRouter()
	r.With(s.Gate.Require(auth.OpGetUserExtras)).Get("/me", s.get)
	r.With(s.Gate.Require(auth.OpSetUserExtras)).Post("/me", s.set)
	return r
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusForbidden, "forbidden", nil)
		return
	}

	avatar, found, err := s.Store.Get(r.Context(), p.Subject)
	if err != nil {
		s.Log.Error("get avatar failed", zap.Error(err), zap.String("subject", p.Subject))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if !found {
		avatar = p.Username
	}

	kit.WriteJSON(w, http.StatusOK, s.response(avatar))
}

func (s *Server) set(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusForbidden, "forbidden", nil)
		return
	}

	var req setAvatarReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	var c kit.Checker
	avatar := c.Required("avatar", req.Avatar)
	if err := c.Err(); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "validation failed", err)
		return
	}

	if err := s.Store.Set(r.Context(), p.Subject, avatar); err != nil {
		s.Log.Error("set avatar failed", zap.Error(err), zap.String("subject", p.Subject))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, s.response(avatar))
}

func (s *Server) response(avatar string) extrasResp {
	resp := extrasResp{Updated: true, Avatar: avatar}
	if s.AvatarsBaseURL != "" {
		resp.AvatarURL = strings.TrimRight(s.AvatarsBaseURL, "/") + "/avataaars/svg?seed=" + url.QueryEscape(avatar)
	}
	return resp
}
