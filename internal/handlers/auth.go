package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/taskdesk/apiserver/internal/auth"
	"github.com/taskdesk/apiserver/internal/services"
	"github.com/taskdesk/apiserver/internal/store"
	"github.com/taskdesk/apiserver/types"
	"go.uber.org/zap"
)

const (
	registeredMessage = "user registered"
	loggedInMessage   = "user logged in"
)

// AuthHandler provides registration, login and the current-user endpoint.
type AuthHandler struct {
	userService *services.UserService
	tokens      *auth.TokenIssuer
	validate    *validator.Validate
	log         *zap.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, tokens *auth.TokenIssuer, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{
		userService: userService,
		tokens:      tokens,
		validate:    newValidator(),
		log:         log,
	}
}

// AuthRouter registers auth routes on the given router. Only /me sits behind
// the gate.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.With(handler.RequireAuth).Get("/me", handler.Me)
}

// RequireAuth verifies the bearer token, loads its user and attaches it to
// the request context.
func (h *AuthHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			respondError(w, r, h.log, errUnauthenticated, nil)
			return
		}

		userID, err := h.tokens.Verify(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				respondError(w, r, h.log, apiError{http.StatusBadRequest, CodeInvalidToken, "invalid token", err.Error()}, err)
				return
			}
			respondError(w, r, h.log, errInternal, err)
			return
		}

		user, err := h.userService.GetByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondError(w, r, h.log, apiError{http.StatusNotFound, CodeNotFound, "user not found", ""}, err)
				return
			}
			respondError(w, r, h.log, errInternal, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user.Public())))
	})
}

// Register creates a new user account and returns a token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, errInvalidRequest, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	fields, err := missingFields(h.validate, req)
	if err != nil {
		respondError(w, r, h.log, errInternal, err)
		return
	}
	if len(fields) > 0 {
		respondError(w, r, h.log, missingField(fields), nil)
		return
	}

	user, err := h.userService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		var missing *services.MissingFieldError
		switch {
		case errors.As(err, &missing):
			respondError(w, r, h.log, missingField(missing.Fields), err)
		case errors.Is(err, store.ErrDuplicateEmail):
			respondError(w, r, h.log, apiError{http.StatusBadRequest, CodeDuplicateEmail, "email already exists", ""}, err)
		default:
			respondError(w, r, h.log, errInternal, err)
		}
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, registeredMessage, user)
}

// Login verifies credentials and returns a token. Unknown emails and wrong
// passwords produce the same response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, errInvalidRequest, err)
		return
	}

	user, err := h.userService.Authenticate(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			respondError(w, r, h.log, apiError{http.StatusBadRequest, CodeInvalidCredentials, "invalid credentials", ""}, nil)
			return
		}
		respondError(w, r, h.log, errInternal, err)
		return
	}

	h.respondWithToken(w, r, http.StatusOK, loggedInMessage, user)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, r, h.log, errUnauthenticated, nil)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, message string, user types.User) {
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		respondError(w, r, h.log, errInternal, err)
		return
	}
	writeJSON(w, status, AuthResponse{
		Message: message,
		ID:      user.ID.String(),
		Name:    user.Name,
		Email:   user.Email,
		Token:   token,
	})
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Token   string `json:"token"`
}

// bearerToken extracts the credential of an "Authorization: Bearer" header.
// Any other scheme counts as no token.
func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
