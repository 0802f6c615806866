package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lucerne-re/policy-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRecovery(t *testing.T) {
	handler := middleware.Recovery(zap.NewNop())

	t.Run("panic becomes a 500", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/panic", nil)

		handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		})).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"error":"Internal server error"}`, rr.Body.String())
	})

	t.Run("normal requests pass through", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)

		handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("abort sentinel is re-raised", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/abort", nil)

		assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
			handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(http.ErrAbortHandler)
			})).ServeHTTP(rr, req)
		})
	})
}
