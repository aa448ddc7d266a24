package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRespondErrorStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", NewValidationError("patrimonio", MsgBlank), http.StatusBadRequest},
		{"bare validation", fmt.Errorf("wrap: %w", ErrValidation), http.StatusBadRequest},
		{"not found", fmt.Errorf("asset: %w", ErrNotFound), http.StatusNotFound},
		{"duplicate", fmt.Errorf("asset: %w", ErrDuplicate), http.StatusConflict},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, tc.err)
			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, tc.status < http.StatusInternalServerError, IsClientError(tc.err))
		})
	}
}

func TestRespondErrorValidationBody(t *testing.T) {
	verr := NewValidationError("patrimonio", MsgBlank)
	verr.Fields.Add("category", MsgRequired)

	rec := httptest.NewRecorder()
	RespondError(rec, fmt.Errorf("assets: %w", verr))

	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, map[string][]string{
		"patrimonio": {MsgBlank},
		"category":   {MsgRequired},
	}, body)
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, errors.New("pq: connection refused"))

	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, "Internal Error", problem.Title)
	require.Empty(t, problem.Detail)
}

func TestUnauthorizedSetsChallenge(t *testing.T) {
	rec := httptest.NewRecorder()
	Unauthorized(rec, "token expired")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, `Bearer realm="patrimonio"`, rec.Header().Get("WWW-Authenticate"))
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestValidationErrorMessage(t *testing.T) {
	verr := &ValidationError{Fields: FieldErrors{"b": {"second"}, "a": {"first"}}}
	require.Equal(t, "validation failed: a: first; b: second", verr.Error())
	require.True(t, verr.Fields.Has("a"))
	require.False(t, verr.Fields.Has("c"))
	require.Equal(t, "validation failed", (&ValidationError{}).Error())
}

func TestDecodeJSON(t *testing.T) {
	type fieldValue struct {
		Field string `json:"field"`
	}
	type payload struct {
		Patrimonio  string       `json:"patrimonio"`
		Category    int64        `json:"category"`
		FieldValues []fieldValue `json:"field_values"`
	}

	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"empty", "", "non_field_errors"},
		{"malformed", "{", "non_field_errors"},
		{"wrong type", `{"category":"x"}`, "category"},
		{"trailing value", `{"patrimonio":"X-2","category":1}{"junk":true}`, "non_field_errors"},
		{"trailing garbage", `{"patrimonio":"X-2"} x`, "non_field_errors"},
		{"nested wrong type", `{"field_values":[{"field":1}]}`, "field_values"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var dst payload
			err := DecodeJSON(req, &dst)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.True(t, verr.Fields.Has(tc.field), "fields: %v", verr.Fields)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"field_values":[{"field":1}]}`))
	var nested payload
	var verr *ValidationError
	require.ErrorAs(t, DecodeJSON(req, &nested), &verr)
	require.Equal(t, FieldErrors{"field_values": {"field: Expected string."}}, verr.Fields)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{\"patrimonio\":\"PC-01\",\"category\":1}\n"))
	var dst payload
	require.NoError(t, DecodeJSON(req, &dst))
	require.Equal(t, payload{Patrimonio: "PC-01", Category: 1}, dst)
}
