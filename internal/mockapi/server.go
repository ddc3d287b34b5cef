// Package mockapi serves an in-memory marketplace API with the same routes and
// payloads the client expects. It backs integration tests and the
// vinted-devserver command, and can inject failures and latency per route.
package mockapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/VolkanCARBUGA/VintedClone/internal/market"
)

type ctxKey int

const userKey ctxKey = iota

type fault struct {
	status int
}

// Server is an in-memory marketplace API.
type Server struct {
	mu     sync.Mutex
	data   *data
	faults map[string][]fault
	delays map[string]time.Duration

	router *chi.Mux
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger. Requests are not logged by default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.data.now = now
		}
	}
}

// New returns an empty Server.
func New(opts ...Option) *Server {
	s := &Server{
		data:   newData(),
		faults: make(map[string][]fault),
		delays: make(map[string]time.Duration),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// FailNext makes the next request to method+pattern answer status. Pattern is
// the route as registered, e.g. "/products/{id}/favorite".
func (s *Server) FailNext(method, pattern string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := routeKey(method, pattern)
	s.faults[key] = append(s.faults[key], fault{status: status})
}

// Delay holds every request to method+pattern for d before handling it. A
// zero d removes the delay.
func (s *Server) Delay(method, pattern string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := routeKey(method, pattern)
	if d <= 0 {
		delete(s.delays, key)
		return
	}
	s.delays[key] = d
}

// SeedUser registers an account and returns its summary.
func (s *Server) SeedUser(username, email, password string) market.UserSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.addUser(username, email, password).user.UserSummary
}

// IssueToken returns a bearer token for userID.
func (s *Server) IssueToken(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.issueToken(userID)
}

// SeedProduct lists a product for sellerID.
func (s *Server) SeedProduct(sellerID string, in market.ProductInput) market.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.productView(s.data.addProduct(sellerID, in), "")
}

// SeedMessage posts content from sender to receiver about productID,
// creating the conversation if needed. It returns the conversation id.
func (s *Server) SeedMessage(senderID, receiverID, productID, content string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.data.findConversation(senderID, receiverID, productID)
	if c == nil {
		c = s.data.newConversation(senderID, receiverID, productID)
	}
	s.data.appendMessage(c, senderID, content, nil)
	return c.id
}

// IsFavorite reports the server-side favorite flag.
func (s *Server) IsFavorite(userID, productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.favorites[userID][productID]
}

// IsFollowing reports whether follower follows followee.
func (s *Server) IsFollowing(follower, followee string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.follows[follower][followee]
}

// MarkSold flags a listing as sold. It reports whether the listing exists.
func (s *Server) MarkSold(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data.products[productID]
	if ok {
		p.Status = "sold"
	}
	return ok
}

// MessageCount returns the number of messages in a conversation.
func (s *Server) MessageCount(conversationID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.messages[conversationID])
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if s.logger != nil {
		r.Use(s.requestLogger)
	}
	r.Use(s.authenticate)

	r.Route("/api", func(r chi.Router) {
		s.handle(r, http.MethodPost, "/users/login", s.login)
		s.handle(r, http.MethodPost, "/users/register", s.register)
		s.handle(r, http.MethodPost, "/users/forgot-password", s.forgotPassword)
		s.handle(r, http.MethodPost, "/users/follow/{id}", s.requireUser(s.follow))
		s.handle(r, http.MethodDelete, "/users/follow/{id}", s.requireUser(s.unfollow))
		s.handle(r, http.MethodGet, "/users/{id}", s.getUser)
		s.handle(r, http.MethodPut, "/users/{id}", s.requireUser(s.updateUser))
		s.handle(r, http.MethodGet, "/users/{id}/followers", s.followers)
		s.handle(r, http.MethodGet, "/users/{id}/following", s.following)

		s.handle(r, http.MethodGet, "/products", s.listProducts)
		s.handle(r, http.MethodPost, "/products", s.requireUser(s.createProduct))
		s.handle(r, http.MethodGet, "/products/favorites", s.requireUser(s.listFavorites))
		s.handle(r, http.MethodGet, "/products/user/{id}", s.userProducts)
		s.handle(r, http.MethodGet, "/products/{id}", s.getProduct)
		s.handle(r, http.MethodPut, "/products/{id}", s.requireUser(s.updateProduct))
		s.handle(r, http.MethodDelete, "/products/{id}", s.requireUser(s.deleteProduct))
		s.handle(r, http.MethodPost, "/products/{id}/favorite", s.requireUser(s.addFavorite))
		s.handle(r, http.MethodDelete, "/products/{id}/favorite", s.requireUser(s.removeFavorite))

		s.handle(r, http.MethodGet, "/conversations", s.requireUser(s.listConversations))
		s.handle(r, http.MethodPost, "/conversations", s.requireUser(s.createConversation))
		s.handle(r, http.MethodGet, "/conversations/{id}", s.requireUser(s.getConversation))
		s.handle(r, http.MethodGet, "/conversations/{id}/messages", s.requireUser(s.listMessages))
		s.handle(r, http.MethodPost, "/messages", s.requireUser(s.sendMessage))
		s.handle(r, http.MethodPut, "/messages/{id}/read", s.requireUser(s.markRead))
	})
	return r
}

// handle registers h behind the fault and delay hooks for method+pattern.
func (s *Server) handle(r chi.Router, method, pattern string, h http.HandlerFunc) {
	key := routeKey(method, pattern)
	r.Method(method, pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		f, delay := s.takeFault(key)
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-req.Context().Done():
				return
			}
		}
		if f != nil {
			writeError(w, f.status, http.StatusText(f.status))
			return
		}
		h(w, req)
	}))
}

func (s *Server) takeFault(key string) (*fault, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delay := s.delays[key]
	queue := s.faults[key]
	if len(queue) == 0 {
		return nil, delay
	}
	f := queue[0]
	if len(queue) == 1 {
		delete(s.faults, key)
	} else {
		s.faults[key] = queue[1:]
	}
	return &f, delay
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if found && token != "" {
			s.mu.Lock()
			userID, ok := s.data.tokens[token]
			s.mu.Unlock()
			if !ok {
				unauthorized(w, "Invalid or expired token")
				return
			}
			r = r.WithContext(context.WithValue(r.Context(), userKey, userID))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireUser(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if viewer(r) == "" {
			unauthorized(w, "Authentication required")
			return
		}
		h(w, r)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func viewer(r *http.Request) string {
	id, _ := r.Context().Value(userKey).(string)
	return id
}

func routeKey(method, pattern string) string {
	return strings.ToUpper(method) + " " + pattern
}
