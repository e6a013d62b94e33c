// Package handler holds the HTTP plumbing shared by the storefront,
// admin, and webhook handlers: JSON encoding, request decoding with
// validation, and the domain error to HTTP status mapping.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/insany/shop/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RespondJSON writes v as a JSON response.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	// Headers are already written; an encode failure here means the
	// client went away.
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON reads and validates a JSON request body into dst. dst must
// be a pointer to a struct with validator tags.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.Errorf(domain.EINVALID, "", "Invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return domain.Errorf(domain.EINVALID, "", "Invalid field %q: failed %q validation", f.Field(), f.Tag())
		}
		return domain.Errorf(domain.EINVALID, "", "Invalid request body")
	}
	return nil
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ErrorResponse maps a domain error onto an HTTP status and writes the
// JSON error envelope. Internal causes are logged, never returned.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	status := ErrorCodeToHTTPStatus(code)

	logger := zerolog.Ctx(r.Context())
	if status >= 500 {
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		logger.Debug().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request rejected")
	}

	var body errorBody
	body.Error.Code = code
	body.Error.Message = domain.ErrorMessage(err)
	RespondJSON(w, status, body)
}

// ErrorCodeToHTTPStatus maps domain error codes onto HTTP statuses.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EPAYMENT:
		return http.StatusPaymentRequired
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.ENOTIMPL:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// PathValue is a typed wrapper over Request.PathValue that turns an
// empty segment into a domain error.
func PathValue(r *http.Request, name string) (string, error) {
	v := r.PathValue(name)
	if v == "" {
		return "", domain.Errorf(domain.EINVALID, "", "Missing path parameter %q", name)
	}
	return v, nil
}
