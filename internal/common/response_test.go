package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

func TestDataEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	Data(rr, http.StatusCreated, map[string]string{"id": "es-kopi"})

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.JSONEq(t, `{"data":{"id":"es-kopi"}}`, rr.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	type linePayload struct {
		ItemID   string `json:"itemId"`
		Quantity int    `json:"quantity"`
	}

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/carts/c1/lines", strings.NewReader(`{"itemId":"es-kopi","quantity":2}`))
		var dst linePayload
		require.NoError(t, DecodeJSON(req, &dst))
		require.Equal(t, linePayload{ItemID: "es-kopi", Quantity: 2}, dst)
	})

	cases := []struct {
		name      string
		body      string
		message   string
		detailKey string
	}{
		{"empty body", "", "request body is empty", ""},
		{"syntax error", `{"itemId" "es-kopi"}`, "invalid payload", "offset"},
		{"wrong type", `{"quantity":"two"}`, "invalid payload", "quantity"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/carts/c1/lines", strings.NewReader(tc.body))
			var dst linePayload
			err := DecodeJSON(req, &dst)
			appErr, ok := AsAppError(err)
			require.True(t, ok)
			require.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)

			rr := httptest.NewRecorder()
			require.True(t, WriteAppError(rr, err))
			require.Equal(t, http.StatusBadRequest, rr.Code)
			env := decodeError(t, rr)
			require.Equal(t, CodeBadRequest, env.Error.Code)
			require.Equal(t, tc.message, env.Error.Message)
			if tc.detailKey == "" {
				require.Empty(t, env.Error.Details)
				return
			}
			require.Contains(t, env.Error.Details, tc.detailKey)
		})
	}
}

func TestWriteAppError(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		rr := httptest.NewRecorder()
		require.True(t, WriteAppError(rr, &AppError{}))
		require.Equal(t, http.StatusInternalServerError, rr.Code)
		env := decodeError(t, rr)
		require.Equal(t, CodeInternal, env.Error.Code)
		require.Equal(t, http.StatusText(http.StatusInternalServerError), env.Error.Message)
	})

	t.Run("wrapped", func(t *testing.T) {
		missing := errors.New("payment method not found")
		err := errors.Join(errors.New("load"), NotFound(missing))
		rr := httptest.NewRecorder()
		require.True(t, WriteAppError(rr, err))
		require.Equal(t, http.StatusNotFound, rr.Code)
		env := decodeError(t, rr)
		require.Equal(t, CodeNotFound, env.Error.Code)
		require.Equal(t, "payment method not found", env.Error.Message)
		require.ErrorIs(t, err, missing)
	})

	t.Run("invalid carries details", func(t *testing.T) {
		rr := httptest.NewRecorder()
		require.True(t, WriteAppError(rr, Invalid("invalid category", map[string]string{"name": "required"}, nil)))
		require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		env := decodeError(t, rr)
		require.Equal(t, CodeValidation, env.Error.Code)
		require.Equal(t, map[string]any{"name": "required"}, env.Error.Details)
	})

	t.Run("type error names the field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/carts/c1/lines", strings.NewReader(`{"quantity":"two"}`))
		var dst struct {
			Quantity int `json:"quantity"`
		}
		appErr, ok := AsAppError(DecodeJSON(req, &dst))
		require.True(t, ok)
		require.Equal(t, map[string]string{"quantity": "expected int"}, appErr.Details)
	})

	t.Run("plain error", func(t *testing.T) {
		rr := httptest.NewRecorder()
		require.False(t, WriteAppError(rr, errors.New("boom")))
		require.Equal(t, 0, rr.Body.Len())
	})
}
