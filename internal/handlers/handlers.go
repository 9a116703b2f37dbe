package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"budgetwise/internal/auth"
	"budgetwise/internal/config"
	"budgetwise/internal/models"
	"budgetwise/internal/storage"
)

// Context key type to avoid collisions.
type contextKey string

const (
	// UserContextKey is the context key for the authenticated user.
	UserContextKey contextKey = "user"
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "session"
	// SessionDuration is how long sessions last (30 days).
	SessionDuration = 30 * 24 * time.Hour
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db            *storage.DB
	creds         *auth.Service
	sessionSecret string
	templateDir   string
	secureCookie  bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *storage.DB, cfg *config.Config) *Handlers {
	return &Handlers{
		db:            db,
		creds:         auth.NewService(db),
		sessionSecret: cfg.SessionSecret,
		templateDir:   cfg.TemplateDir,
		secureCookie:  cfg.SecureCookie,
	}
}

// GetUserFromContext retrieves the authenticated user from request context.
func GetUserFromContext(r *http.Request) *models.User {
	if user, ok := r.Context().Value(UserContextKey).(*models.User); ok {
		return user
	}
	return nil
}

// lookupSession resolves the session cookie to a user, if any.
func (h *Handlers) lookupSession(r *http.Request) (*models.User, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, http.ErrNoCookie
	}
	return h.db.ValidateSession(auth.HashToken(h.sessionSecret, cookie.Value))
}

// AuthMiddleware gates page views. Requests without a valid session
// are redirected to the entry page.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.lookupSession(r)
		if err != nil {
			h.clearSessionCookie(w)
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// APIAuthMiddleware gates JSON endpoints. Requests without a valid
// session get a structured 401 instead of a redirect.
func (h *Handlers) APIAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.lookupSession(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authResponse is the JSON body for signup and login results.
type authResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

// signupRequest is the normalized signup payload, decoded from either
// a JSON or a form body.
type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest is the normalized login payload.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func decodeSignup(r *http.Request) (signupRequest, error) {
	if isJSONRequest(r) {
		var req signupRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return signupRequest{}, err
	}
	return signupRequest{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}, nil
}

func decodeLogin(r *http.Request) (loginRequest, error) {
	if isJSONRequest(r) {
		var req loginRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return loginRequest{}, err
	}
	return loginRequest{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}, nil
}

// Index renders the entry page with the login and signup forms.
// Logged-in users go straight to the dashboard.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	if user, err := h.lookupSession(r); err == nil && user != nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	h.render(w, "index.html", nil)
}

// Signup handles account creation. On success the new user is logged
// in immediately.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	req, err := decodeSignup(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, authResponse{Status: "error", Message: "Invalid request body"})
		return
	}

	user, err := h.creds.Register(req.Name, req.Email, req.Password)
	if err != nil {
		if auth.IsKind(err, auth.KindValidation) || auth.IsKind(err, auth.KindDuplicateEmail) {
			writeJSON(w, http.StatusBadRequest, authResponse{Status: "error", Message: err.Error()})
			return
		}
		log.Printf("Signup error: %v", err)
		writeJSON(w, http.StatusInternalServerError, authResponse{Status: "error", Message: "Internal server error"})
		return
	}

	if err := h.establishSession(w, user); err != nil {
		log.Printf("Failed to establish session: %v", err)
		writeJSON(w, http.StatusInternalServerError, authResponse{Status: "error", Message: "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Status: "success", Message: "Account created!", Redirect: "/dashboard"})
}

// Login handles authentication and session establishment.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLogin(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, authResponse{Status: "error", Message: "Invalid request body"})
		return
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, authResponse{Status: "error", Message: "Email and password required"})
		return
	}

	user, err := h.creds.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, authResponse{Status: "error", Message: err.Error()})
			return
		}
		log.Printf("Login error: %v", err)
		writeJSON(w, http.StatusInternalServerError, authResponse{Status: "error", Message: "Internal server error"})
		return
	}

	if err := h.establishSession(w, user); err != nil {
		log.Printf("Failed to establish session: %v", err)
		writeJSON(w, http.StatusInternalServerError, authResponse{Status: "error", Message: "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Status: "success", Message: "Login successful!", Redirect: "/dashboard"})
}

// Logout handles user logout.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.db.DeleteSession(auth.HashToken(h.sessionSecret, cookie.Value)); err != nil {
			log.Printf("Failed to delete session: %v", err)
		}
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// establishSession creates a session row for the user and sets the
// cookie. A new login simply supersedes any cookie the client held.
func (h *Handlers) establishSession(w http.ResponseWriter, user *models.User) error {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(SessionDuration)
	if err := h.db.CreateSession(auth.HashToken(h.sessionSecret, token), user.ID, expiresAt); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func (h *Handlers) render(w http.ResponseWriter, viewName string, data any) {
	tmpl, err := template.ParseFiles(filepath.Join(h.templateDir, "base.html"), filepath.Join(h.templateDir, viewName))
	if err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Template execution error: %v", err)
	}
}
