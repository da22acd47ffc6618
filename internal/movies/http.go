package movies

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MoviesApp/internal/auth"
	"MoviesApp/pkg/kit"
)

type Server struct {
	Service *Service
	Gate    *auth.Gate
	Log     *zap.Logger
}

// Routes mounts the movie endpoints. The authenticate stage must run before
// these handlers so the gate can see the principal.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.With(s.Gate.Require(auth.OpListMovies)).Get("/", s.list)
	r.With(s.Gate.Require(auth.OpGetMovie)).Get("/{id}", s.get)
	r.With(s.Gate.Require(auth.OpCreateMovie)).Post("/", s.create)
	r.With(s.Gate.Require(auth.OpDeleteMovie)).Delete("/{id}", s.delete)
	r.With(s.Gate.Require(auth.OpAddComment)).Post("/{id}/comments", s.addComment)

	return r
}

func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if err := s.Service.Ping(ctx); err != nil {
		s.Log.Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	movies, err := s.Service.ListMovies(r.Context())
	if err != nil {
		s.writeError(w, r, err, zap.String("op", "list"))
		return
	}
	kit.WriteJSON(w, http.StatusOK, movies)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	m, err := s.Service.GetMovie(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, zap.String("op", "get"), zap.String("id", id))
		return
	}
	kit.WriteJSON(w, http.StatusOK, m)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var req createMovieReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	in, err := req.validate()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	m, err := s.Service.CreateMovie(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, zap.String("op", "create"))
		return
	}

	if p, ok := auth.PrincipalFromContext(r.Context()); ok {
		s.Log.Info("movie created", zap.String("id", m.ID), zap.String("by", p.Username))
	}
	kit.WriteJSON(w, http.StatusCreated, m)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.Service.DeleteMovie(r.Context(), id); err != nil {
		s.writeError(w, r, err, zap.String("op", "delete"), zap.String("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req addCommentReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	text, err := req.validate()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := s.Service.AddComment(r.Context(), id, text)
	if err != nil {
		s.writeError(w, r, err, zap.String("op", "add_comment"), zap.String("id", id))
		return
	}
	kit.WriteJSON(w, http.StatusCreated, c)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, fields ...zap.Field) {
	var verr *kit.ValidationError

	switch {
	case errors.Is(err, ErrNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": chi.URLParam(r, "id")})
	case errors.As(err, &verr):
		kit.WriteError(w, r, http.StatusBadRequest, "validation failed", verr)
	case errors.Is(err, context.DeadlineExceeded):
		s.Log.Warn("store timeout", append(fields, zap.Error(err))...)
		kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
	default:
		s.Log.Error("store failed", append(fields, zap.Error(err))...)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
