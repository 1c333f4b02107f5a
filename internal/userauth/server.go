package userauth

import (
	"encoding/json"
	"net/http"

	"github.com/golden-vcr/implicit/internal/strategy"
	"github.com/golden-vcr/server-common/entry"
	"github.com/gorilla/mux"
)

const (
	StartPath    = "/auth/start"
	CallbackPath = "/auth/callback"
)

// Authenticator represents the implicit grant strategy that drives each request
type Authenticator interface {
	Name() string
	Authenticate(req *http.Request, opts *strategy.AuthenticateOptions) strategy.Result
}

type Server struct {
	authenticator Authenticator
	csrf          *csrfBuffer
}

func NewServer(authenticator Authenticator) *Server {
	return &Server{
		authenticator: authenticator,
		csrf:          newCsrfBuffer(),
	}
}

func (s *Server) RegisterRoutes(r *mux.Router) {
	r.Path(StartPath).Methods("GET").HandlerFunc(s.handleStartAuth)
	r.Path(CallbackPath).Methods("GET").HandlerFunc(s.handleFinishAuth)
}

// handleStartAuth (GET /auth/start) redirects the user to the authorization server
func (s *Server) handleStartAuth(res http.ResponseWriter, req *http.Request) {
	result := s.authenticator.Authenticate(req, &strategy.AuthenticateOptions{
		State: s.csrf.generate(),
	})
	s.writeResult(res, req, result)
}

// handleFinishAuth (GET /auth/callback) receives the user on their way back from the
// authorization server
func (s *Server) handleFinishAuth(res http.ResponseWriter, req *http.Request) {
	// With no query params, we're still waiting on the user agent to relay the
	// credentials that were delivered in the URL fragment
	if req.URL.RawQuery == "" {
		res.Header().Set("Content-Type", "text/html; charset=utf-8")
		res.Write([]byte(fragmentRelayPage))
		return
	}

	// Verify the CSRF token carried in the 'state' parameter
	tokenValue := req.URL.Query().Get("state")
	if tokenValue == "" {
		http.Error(res, "'state' value not found in URL query params", http.StatusBadRequest)
		return
	}
	if !s.csrf.check(tokenValue) {
		http.Error(res, "CSRF token verification failed", http.StatusBadRequest)
		return
	}

	// If the user arrived here without credentials, the strategy will send them back to
	// the authorization server, so they need a fresh CSRF token for the return trip
	opts := &strategy.AuthenticateOptions{}
	q := req.URL.Query()
	if !q.Has(strategy.ParamError) && q.Get(strategy.ParamAccessToken) == "" {
		opts.State = s.csrf.generate()
	}

	result := s.authenticator.Authenticate(req, opts)
	s.writeResult(res, req, result)
}

// writeResult renders the result of an authentication attempt as an HTTP response
func (s *Server) writeResult(res http.ResponseWriter, req *http.Request, result strategy.Result) {
	logger := entry.Log(req).With("provider", s.authenticator.Name())

	if result.IsRedirect() {
		res.Header().Set("location", result.Redirect)
		res.WriteHeader(http.StatusSeeOther)
		return
	}

	outcome := result.Outcome
	switch outcome.Kind {
	case strategy.OutcomeSuccess:
		logger.Info("Authenticated user", "user", outcome.User)
		writeJSON(res, http.StatusOK, successResponse{User: outcome.User, Info: outcome.Info})
	case strategy.OutcomeFail:
		logger.Info("Authentication failed", "info", outcome.Info)
		writeJSON(res, http.StatusUnauthorized, failResponse{Error: "authentication failed", Info: outcome.Info})
	default:
		logger.Error("Failed to authenticate user", "error", outcome.Err)
		http.Error(res, outcome.Err.Error(), http.StatusInternalServerError)
	}
}

type successResponse struct {
	User interface{} `json:"user"`
	Info interface{} `json:"info,omitempty"`
}

type failResponse struct {
	Error string      `json:"error"`
	Info  interface{} `json:"info,omitempty"`
}

func writeJSON(res http.ResponseWriter, status int, body interface{}) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	if err := json.NewEncoder(res).Encode(body); err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
	}
}

const fragmentRelayPage = `<!DOCTYPE html><html><head><title>Signing in...</title></head><body><script>
var fragment = window.location.hash.substring(1);
if (fragment) {
	window.location.replace(window.location.pathname + "?" + fragment);
} else {
	document.body.textContent = "No credentials were returned by the authorization server.";
}
</script></body></html>`
