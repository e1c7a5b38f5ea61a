package claim

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"
)

// SessionCookieName is the cookie carrying the session ID
const SessionCookieName = "claims_session"

// Server handles HTTP requests for the claims form
type Server struct {
	service   *Service
	sessions  *SessionStore
	basicAuth BasicAuth
	mux       *http.ServeMux

	// SecureCookie marks the session cookie Secure. Set it when the app is served over HTTPS.
	SecureCookie bool
}

// BasicAuth holds basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// NewServer creates a new Server with default mux
func NewServer(service *Service, sessions *SessionStore, basicAuth BasicAuth) *Server {
	return NewServerWithMux(service, sessions, basicAuth, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(service *Service, sessions *SessionStore, basicAuth BasicAuth, mux *http.ServeMux) *Server {
	s := &Server{
		service:   service,
		sessions:  sessions,
		basicAuth: basicAuth,
		mux:       mux,
	}
	s.registerRoutes()
	return s
}

// authenticate checks basic auth credentials
func (s *Server) authenticate(r *http.Request) bool {
	if s.basicAuth.Username == "" && s.basicAuth.Password == "" {
		return true // No auth required if not configured
	}

	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}

	// Both comparisons always run
	userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(s.basicAuth.Username))
	passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(s.basicAuth.Password))
	return userMatch&passMatch == 1
}

// requireAuth middleware
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			w.Header().Set("WWW-Authenticate", `Basic realm="Claims Pre-check"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// session returns the caller's session, starting a new one if needed
func (s *Server) session(w http.ResponseWriter, r *http.Request) *Session {
	var id string
	if c, err := r.Cookie(SessionCookieName); err == nil {
		id = c.Value
	}

	sess, created := s.sessions.GetOrCreate(id)
	if created {
		slog.Info("Session started", "session_id", sess.ID)
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   s.SecureCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

// registerRoutes registers all routes on the server's mux
// Routes must be registered from most specific to least specific to avoid conflicts
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /static/app.css", s.requireAuth(s.handleStaticCSS))

	// API endpoints
	s.mux.HandleFunc("POST /api/claims", s.requireAuth(s.handleAPISubmitClaim))
	s.mux.HandleFunc("GET /api/session", s.requireAuth(s.handleAPISession))
	s.mux.HandleFunc("GET /api/history", s.requireAuth(s.handleAPIListHistory))
	s.mux.HandleFunc("DELETE /api/history", s.requireAuth(s.handleAPIClearHistory))
	s.mux.HandleFunc("GET /api/audit/{id}", s.requireAuth(s.handleAPIGetAudit))
	s.mux.HandleFunc("GET /api/audit", s.requireAuth(s.handleAPIListAudit))

	// Form actions
	s.mux.HandleFunc("POST /claims", s.requireAuth(s.handleSubmitClaim))
	s.mux.HandleFunc("POST /history/clear", s.requireAuth(s.handleClearHistory))

	// HTML interface (register last as it's the catch-all)
	s.mux.HandleFunc("GET /{$}", s.requireAuth(s.handleIndex))
}

// Start starts the HTTP server.
// WriteTimeout leaves room for the decision service timeout.
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      45 * time.Second,
	}
	return srv.ListenAndServe()
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
