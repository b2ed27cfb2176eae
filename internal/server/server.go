package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"qaforum/internal/metrics"
	"qaforum/internal/models"
)

const defaultRankingSize = 10

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the ambient parts of a Server. Zero values disable
// the corresponding feature.
type Options struct {
	Logger    zerolog.Logger
	Pinger    Pinger
	Metrics   *metrics.Collector
	Gatherer  prometheus.Gatherer
	RateLimit float64
	RateBurst int
}

// Server exposes the repositories as read-only JSON endpoints.
type Server struct {
	Store *models.Store

	log     zerolog.Logger
	pinger  Pinger
	metrics *metrics.Collector
	limiter *rate.Limiter
	router  chi.Router
}

func New(store *models.Store, opts Options) *Server {
	s := &Server{
		Store:   store,
		log:     opts.Logger,
		pinger:  opts.Pinger,
		metrics: opts.Metrics,
	}
	if opts.RateLimit > 0 && opts.RateBurst > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst)
	}
	s.router = s.routes(opts.Gatherer)
	return s
}

func (s *Server) routes(gatherer prometheus.Gatherer) chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.accessLog)
	r.Use(s.recoverer)
	r.Use(s.rateLimit)

	r.Get("/healthz", s.handleHealth)
	if gatherer != nil {
		r.Handle("/metrics", metrics.Handler(gatherer))
	}

	r.Route("/questions", func(r chi.Router) {
		r.Get("/", s.handleQuestions)
		r.Get("/most-followed", s.handleMostFollowed)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleQuestion)
			r.Get("/author", s.handleQuestionAuthor)
			r.Get("/replies", s.handleQuestionReplies)
			r.Get("/followers", s.handleQuestionFollowers)
		})
	})

	r.Route("/replies", func(r chi.Router) {
		r.Get("/", s.handleReplies)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleReply)
			r.Get("/author", s.handleReplyAuthor)
			r.Get("/question", s.handleReplyQuestion)
			r.Get("/parent", s.handleReplyParent)
			r.Get("/children", s.handleReplyChildren)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", s.handleUserByName)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleUser)
			r.Get("/questions", s.handleUserQuestions)
			r.Get("/replies", s.handleUserReplies)
			r.Get("/followed-questions", s.handleUserFollowedQuestions)
		})
	})

	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			s.serverError(w, r, err)
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// questions

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	ctx := r.Context()

	switch {
	case query.Has("title"):
		q, err := s.Store.Questions.FindByTitle(ctx, query.Get("title"))
		writeOne(s, w, r, q, err)
	case query.Has("body"):
		q, err := s.Store.Questions.FindByBody(ctx, query.Get("body"))
		writeOne(s, w, r, q, err)
	case query.Has("author_id"):
		authorID, ok := s.parseID(w, query.Get("author_id"))
		if !ok {
			return
		}
		qs, err := s.Store.Questions.FindByAuthorID(ctx, authorID)
		writeList(s, w, r, qs, err)
	default:
		s.writeError(w, http.StatusBadRequest, "one of title, body or author_id is required")
	}
}

func (s *Server) handleMostFollowed(w http.ResponseWriter, r *http.Request) {
	n := defaultRankingSize
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			s.writeError(w, http.StatusBadRequest, "n must be a non-negative integer")
			return
		}
		n = v
	}
	ranked, err := s.Store.Follows.RankedQuestions(r.Context(), n)
	writeList(s, w, r, ranked, err)
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	q, ok := s.loadQuestion(w, r)
	if ok {
		s.writeJSON(w, http.StatusOK, q)
	}
}

func (s *Server) handleQuestionAuthor(w http.ResponseWriter, r *http.Request) {
	q, ok := s.loadQuestion(w, r)
	if !ok {
		return
	}
	u, err := q.Author(r.Context())
	writeOne(s, w, r, u, err)
}

func (s *Server) handleQuestionReplies(w http.ResponseWriter, r *http.Request) {
	q, ok := s.loadQuestion(w, r)
	if !ok {
		return
	}
	rs, err := q.Replies(r.Context())
	writeList(s, w, r, rs, err)
}

func (s *Server) handleQuestionFollowers(w http.ResponseWriter, r *http.Request) {
	q, ok := s.loadQuestion(w, r)
	if !ok {
		return
	}
	us, err := q.Followers(r.Context())
	writeList(s, w, r, us, err)
}

func (s *Server) loadQuestion(w http.ResponseWriter, r *http.Request) (*models.Question, bool) {
	id, ok := s.parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return nil, false
	}
	q, err := s.Store.Questions.FindByID(r.Context(), id)
	return found(s, w, r, q, err)
}

// replies

func (s *Server) handleReplies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	ctx := r.Context()

	switch {
	case query.Has("user_id"):
		userID, ok := s.parseID(w, query.Get("user_id"))
		if !ok {
			return
		}
		rs, err := s.Store.Replies.FindByUserID(ctx, userID)
		writeList(s, w, r, rs, err)
	case query.Has("question_id"):
		questionID, ok := s.parseID(w, query.Get("question_id"))
		if !ok {
			return
		}
		rs, err := s.Store.Replies.FindByQuestionID(ctx, questionID)
		writeList(s, w, r, rs, err)
	default:
		rs, err := s.Store.Replies.FindAll(ctx)
		writeList(s, w, r, rs, err)
	}
}

func (s *Server) handleReply(w http.ResponseWriter, r *http.Request) {
	reply, ok := s.loadReply(w, r)
	if ok {
		s.writeJSON(w, http.StatusOK, reply)
	}
}

func (s *Server) handleReplyAuthor(w http.ResponseWriter, r *http.Request) {
	reply, ok := s.loadReply(w, r)
	if !ok {
		return
	}
	u, err := reply.Author(r.Context())
	writeOne(s, w, r, u, err)
}

func (s *Server) handleReplyQuestion(w http.ResponseWriter, r *http.Request) {
	reply, ok := s.loadReply(w, r)
	if !ok {
		return
	}
	q, err := reply.Question(r.Context())
	writeOne(s, w, r, q, err)
}

func (s *Server) handleReplyParent(w http.ResponseWriter, r *http.Request) {
	reply, ok := s.loadReply(w, r)
	if !ok {
		return
	}
	parent, err := reply.ParentReply(r.Context())
	writeOne(s, w, r, parent, err)
}

func (s *Server) handleReplyChildren(w http.ResponseWriter, r *http.Request) {
	reply, ok := s.loadReply(w, r)
	if !ok {
		return
	}
	children, err := reply.ChildReplies(r.Context())
	writeList(s, w, r, children, err)
}

func (s *Server) loadReply(w http.ResponseWriter, r *http.Request) (*models.Reply, bool) {
	id, ok := s.parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return nil, false
	}
	reply, err := s.Store.Replies.FindByID(r.Context(), id)
	return found(s, w, r, reply, err)
}

// users

func (s *Server) handleUserByName(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("fname") || !query.Has("lname") {
		s.writeError(w, http.StatusBadRequest, "fname and lname are required")
		return
	}
	u, err := s.Store.Users.FindByName(r.Context(), query.Get("fname"), query.Get("lname"))
	writeOne(s, w, r, u, err)
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	u, ok := s.loadUser(w, r)
	if ok {
		s.writeJSON(w, http.StatusOK, u)
	}
}

func (s *Server) handleUserQuestions(w http.ResponseWriter, r *http.Request) {
	u, ok := s.loadUser(w, r)
	if !ok {
		return
	}
	qs, err := u.AuthoredQuestions(r.Context())
	writeList(s, w, r, qs, err)
}

func (s *Server) handleUserReplies(w http.ResponseWriter, r *http.Request) {
	u, ok := s.loadUser(w, r)
	if !ok {
		return
	}
	rs, err := u.AuthoredReplies(r.Context())
	writeList(s, w, r, rs, err)
}

func (s *Server) handleUserFollowedQuestions(w http.ResponseWriter, r *http.Request) {
	u, ok := s.loadUser(w, r)
	if !ok {
		return
	}
	qs, err := u.FollowedQuestions(r.Context())
	writeList(s, w, r, qs, err)
}

func (s *Server) loadUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	id, ok := s.parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return nil, false
	}
	u, err := s.Store.Users.FindByID(r.Context(), id)
	return found(s, w, r, u, err)
}

// helpers

// found writes the error or 404 response and reports whether v can be used.
func found[T any](s *Server, w http.ResponseWriter, r *http.Request, v *T, err error) (*T, bool) {
	if err != nil {
		s.serverError(w, r, err)
		return nil, false
	}
	if v == nil {
		s.writeError(w, http.StatusNotFound, "not found")
		return nil, false
	}
	return v, true
}

func writeOne[T any](s *Server, w http.ResponseWriter, r *http.Request, v *T, err error) {
	if v, ok := found(s, w, r, v, err); ok {
		s.writeJSON(w, http.StatusOK, v)
	}
}

// writeList encodes an absent collection as [].
func writeList[T any](s *Server, w http.ResponseWriter, r *http.Request, v []T, err error) {
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if v == nil {
		v = []T{}
	}
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error().
		Err(err).
		Str("request_id", requestIDFrom(r.Context())).
		Str("path", r.URL.Path).
		Msg("request failed")
	s.writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) parseID(w http.ResponseWriter, raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Debug().Err(err).Int("status", status).Msg("failed to write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
