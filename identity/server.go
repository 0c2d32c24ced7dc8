package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/password"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type account struct {
	user User
	hash string
}

// Server is a minimal REST identity backend: POST /auth/login exchanges credentials
// for a bearer token and GET /users/me returns the profile the token belongs to.
// Accounts live in memory.
type Server struct {
	tokens  *jwt.Manager
	hasher  *password.Argon2
	logger  *zap.Logger
	limiter LoginLimiter

	mu      sync.RWMutex
	byID    map[string]*account
	byEmail map[string]string
}

// NewServer returns an empty server. A nil logger disables logging.
func NewServer(tokens *jwt.Manager, hasher *password.Argon2, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		tokens:  tokens,
		hasher:  hasher,
		logger:  logger,
		byID:    make(map[string]*account),
		byEmail: make(map[string]string),
	}
}

// WithLoginLimiter throttles failed logins through l and returns s.
func (s *Server) WithLoginLimiter(l LoginLimiter) *Server {
	s.limiter = l
	return s
}

// Register stores a new account and returns the profile with its assigned id.
func (s *Server) Register(u User, plain string) (User, error) {
	email := normalizeEmail(u.Email)
	if email == "" {
		return User{}, errors.New("identity: email required")
	}
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return User{}, fmt.Errorf("identity: hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[email]; ok {
		return User{}, ErrUserExists
	}
	u.ID = uuid.NewString()
	u.Email = email
	s.byID[u.ID] = &account{user: u, hash: hash}
	s.byEmail[email] = u.ID
	return u, nil
}

// UpdateProfile replaces the stored profile of an existing account, keeping id and email.
func (s *Server) UpdateProfile(u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.byID[u.ID]
	if !ok {
		return fmt.Errorf("identity: unknown user %q", u.ID)
	}
	u.Email = acc.user.Email
	acc.user = u
	return nil
}

// Delete removes an account; subsequent profile reads with its tokens return 404.
func (s *Server) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if acc, ok := s.byID[id]; ok {
		delete(s.byEmail, acc.user.Email)
		delete(s.byID, id)
	}
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+DefaultLoginPath, s.handleLogin)
	mux.HandleFunc("GET "+DefaultMePath, s.handleMe)
	return mux
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	email := normalizeEmail(req.Email)
	if s.limiter != nil {
		if err := s.limiter.Check(r.Context(), email); err != nil {
			if errors.Is(err, ErrRateLimited) {
				writeError(w, http.StatusTooManyRequests, ErrRateLimited.Error())
				return
			}
			s.logger.Error("login limiter check failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "login unavailable")
			return
		}
	}

	s.mu.RLock()
	acc, ok := s.byID[s.byEmail[email]]
	var (
		user User
		hash string
	)
	if ok {
		user, hash = acc.user, acc.hash
	}
	s.mu.RUnlock()

	if !ok {
		s.rejectLogin(w, r, email)
		return
	}
	match, err := s.hasher.Verify(req.Password, hash)
	if err != nil || !match {
		s.rejectLogin(w, r, email)
		return
	}
	if s.limiter != nil {
		if err := s.limiter.Reset(r.Context(), email); err != nil {
			s.logger.Warn("login limiter reset failed", zap.Error(err))
		}
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		s.logger.Error("issue access token failed", zap.String("user_id", user.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "token issuance failed")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token})
}

func (s *Server) rejectLogin(w http.ResponseWriter, r *http.Request, email string) {
	if s.limiter != nil {
		if err := s.limiter.Fail(r.Context(), email); err != nil {
			s.logger.Warn("login limiter record failed", zap.Error(err))
		}
	}
	writeError(w, http.StatusUnauthorized, ErrInvalidCredentials.Error())
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		writeError(w, http.StatusUnauthorized, ErrUnauthorized.Error())
		return
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		s.logger.Debug("rejected bearer token",
			zap.String("request_id", r.Header.Get(RequestIDHeader)),
			zap.Error(err),
		)
		writeError(w, http.StatusUnauthorized, ErrUnauthorized.Error())
		return
	}

	s.mu.RLock()
	acc, found := s.byID[claims.Subject]
	var user User
	if found {
		user = acc.user
	}
	s.mu.RUnlock()

	if !found {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}
	token := strings.TrimSpace(value[len(bearer):])
	return token, token != ""
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
