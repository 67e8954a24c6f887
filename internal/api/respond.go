package api

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hpungsan/inklings/internal/errors"
)

var validate = validator.New()

// errorBody mirrors the MCP error payload so clients can share one decoder.
type errorBody struct {
	Error errorObject `json:"error"`
}

type errorObject struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
	Status  int              `json:"status"`
	Details map[string]any   `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes err as a JSON error body. Errors without a code are
// reported as INTERNAL with a generic message.
func respondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	obj := errorObject{
		Code:    errors.ErrInternal,
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
	}
	if iErr, ok := errors.As(err); ok {
		obj.Code = iErr.Code
		obj.Message = iErr.Message
		obj.Status = iErr.Status
		if iErr.Code != errors.ErrInternal {
			obj.Details = iErr.Details
		}
	}

	level := slog.LevelDebug
	if obj.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.Log(r.Context(), level, "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", obj.Status,
		"error", err,
	)

	respondJSON(w, obj.Status, errorBody{Error: obj})
}

// decodeRequest reads a JSON body into v and validates it.
func decodeRequest(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid JSON body: %v", err))
	}
	return validateRequest(v)
}

func validateRequest(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.NewInvalidRequest(err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.NewInvalidRequest(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	name := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "datetime":
		return name + " must be YYYY-MM-DD"
	case "gte":
		return fmt.Sprintf("%s must be >= %s", name, fe.Param())
	default:
		return fmt.Sprintf("%s failed %q", name, fe.Tag())
	}
}
