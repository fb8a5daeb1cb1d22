package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/taskdesk/apiserver/types"
	"go.uber.org/zap"
)

// Error codes carried in ErrorResponse.Code.
const (
	CodeMissingField       = "MissingField"
	CodeDuplicateEmail     = "DuplicateEmail"
	CodeInvalidCredentials = "InvalidCredentials"
	CodeUnauthenticated    = "Unauthenticated"
	CodeInvalidToken       = "InvalidToken"
	CodeNotFound           = "NotFound"
	CodeForbidden          = "Forbidden"
	CodeInvalidRequest     = "InvalidRequest"
	CodeInternalError      = "InternalError"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

// MessageResponse is returned by endpoints that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

type apiError struct {
	status  int
	code    string
	message string
	detail  string
}

var (
	errUnauthenticated = apiError{http.StatusUnauthorized, CodeUnauthenticated, "no token, authorization denied", ""}
	errInvalidRequest  = apiError{http.StatusBadRequest, CodeInvalidRequest, "invalid request", ""}
	errNotFound        = apiError{http.StatusNotFound, CodeNotFound, "not found", ""}
	errForbidden       = apiError{http.StatusForbidden, CodeForbidden, "forbidden", ""}
	errInternal        = apiError{http.StatusInternalServerError, CodeInternalError, "internal server error", ""}
)

func missingField(fields []string) apiError {
	return apiError{
		status:  http.StatusBadRequest,
		code:    CodeMissingField,
		message: "missing required fields",
		detail:  strings.Join(fields, ", "),
	}
}

type contextKey string

const contextUserKey contextKey = "user"

func withUser(ctx context.Context, user types.User) context.Context {
	return context.WithValue(ctx, contextUserKey, user)
}

// UserFromContext returns the user attached by RequireAuth.
func UserFromContext(ctx context.Context) (types.User, bool) {
	user, ok := ctx.Value(contextUserKey).(types.User)
	return user, ok
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// respondError writes e and logs it. Server errors are logged with their
// cause; client errors only at debug level.
func respondError(w http.ResponseWriter, r *http.Request, log *zap.Logger, e apiError, cause error) {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("uri", r.RequestURI),
		zap.Int("status", e.status),
		zap.String("code", e.code),
	}
	if cause != nil {
		fields = append(fields, zap.Error(cause))
	}
	if e.status >= http.StatusInternalServerError {
		log.Error("request failed", fields...)
	} else {
		log.Debug("request rejected", fields...)
	}
	writeJSON(w, e.status, ErrorResponse{Error: e.message, Code: e.code, Detail: e.detail})
}

// decodeJSON reads the request body into dst. An empty body leaves dst
// untouched, as if it were {}.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// missingFields validates req and returns the JSON names of every field that
// failed a required check.
func missingFields(v *validator.Validate, req any) ([]string, error) {
	err := v.Struct(req)
	if err == nil {
		return nil, nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, err
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field())
	}
	return fields, nil
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
