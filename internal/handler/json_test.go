package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/insany/shop/internal/domain"
)

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{domain.EINVALID, http.StatusBadRequest},
		{domain.EUNAUTHORIZED, http.StatusUnauthorized},
		{domain.EPAYMENT, http.StatusPaymentRequired},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.ECONFLICT, http.StatusConflict},
		{domain.ENOTIMPL, http.StatusNotImplemented},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{"something_else", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := ErrorCodeToHTTPStatus(tt.code); got != tt.want {
				t.Errorf("ErrorCodeToHTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestErrorResponse(t *testing.T) {
	t.Run("domain error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/products/nope", nil)

		ErrorResponse(rec, req, domain.ErrProductNotFound)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
		var body struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Error.Code != domain.ENOTFOUND {
			t.Errorf("error code = %q, want %q", body.Error.Code, domain.ENOTFOUND)
		}
		if body.Error.Message != "Product not found" {
			t.Errorf("message = %q", body.Error.Message)
		}
	})

	t.Run("internal error hides cause", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		ErrorResponse(rec, req, errors.New("pq: connection refused"))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
		if strings.Contains(rec.Body.String(), "connection refused") {
			t.Error("internal error details leaked into response")
		}
	})
}

func TestDecodeJSON(t *testing.T) {
	type addRequest struct {
		Slug     string `json:"slug" validate:"required"`
		Quantity int    `json:"quantity" validate:"required,min=1"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"slug":"tee","quantity":2}`, false},
		{"missing required field", `{"quantity":2}`, true},
		{"quantity below minimum", `{"slug":"tee","quantity":0}`, true},
		{"unknown field", `{"slug":"tee","quantity":1,"bogus":true}`, true},
		{"malformed json", `{`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst addRequest
			err := DecodeJSON(req, &dst)
			if (err != nil) != tt.wantErr {
				t.Errorf("DecodeJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && domain.ErrorCode(err) != domain.EINVALID {
				t.Errorf("ErrorCode() = %q, want %q", domain.ErrorCode(err), domain.EINVALID)
			}
		})
	}
}
