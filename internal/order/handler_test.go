// AngelaMos | 2026
// handler_test.go

package order

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/food-orders/internal/authz"
	"github.com/carterperez-dev/food-orders/internal/middleware"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	t      *testing.T
	router chi.Router
	actors map[string]authz.Actor
}

// fakeAuth resolves the actor from the bearer token name.
func (s *testServer) fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := s.actors[middleware.ExtractToken(r)]
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(middleware.WithActor(r.Context(), actor)))
	})
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	svc, _, _ := newTestService(t)

	s := &testServer{
		t:      t,
		router: chi.NewRouter(),
		actors: map[string]authz.Actor{"alice": alice, "bob": bob, "root": root},
	}
	NewHandler(svc).RegisterRoutes(s.router, s.fakeAuth, nil)
	return s
}

func (s *testServer) do(method, path, token, body string) (int, envelope) {
	s.t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestHandler_OrderFlow(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodPost, "/orders", "alice", "")
	require.Equal(t, http.StatusCreated, code)
	created := decodeData[OrderResponse](t, env)
	assert.Equal(t, StatusPending, created.Status)
	assert.Equal(t, "0.00", created.Price)

	base := "/orders/" + strconv.FormatInt(created.ID, 10)

	code, env = s.do(http.MethodPost, base+"/items", "alice",
		`{"flavor":"cheese","quantity":2,"size":"M","unit_price":"10.0"}`)
	require.Equal(t, http.StatusCreated, code)
	first := decodeData[AddItemResponse](t, env)
	assert.Equal(t, "20.00", first.OrderPrice)

	code, env = s.do(http.MethodPost, base+"/items", "alice",
		`{"flavor":"pepperoni","quantity":1,"size":"L","unit_price":15}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "35.00", decodeData[AddItemResponse](t, env).OrderPrice)

	code, env = s.do(http.MethodDelete,
		"/orders/items/"+strconv.FormatInt(first.ItemID, 10), "alice", "")
	require.Equal(t, http.StatusOK, code)
	removed := decodeData[RemoveItemResponse](t, env)
	assert.Equal(t, 1, removed.RemainingItems)
	assert.Equal(t, "15.00", removed.Order.Price)

	code, env = s.do(http.MethodGet, base, "root", "")
	require.Equal(t, http.StatusOK, code)
	viewed := decodeData[OrderResponse](t, env)
	assert.Equal(t, 1, viewed.ItemCount)
	require.Len(t, viewed.Items, 1)
	assert.Equal(t, "pepperoni", viewed.Items[0].Flavor)

	code, env = s.do(http.MethodPost, base+"/finalize", "alice", "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	code, _ = s.do(http.MethodPost, base+"/finalize", "root", "")
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(http.MethodPost, base+"/cancel", "alice", "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "STATE_CONFLICT", env.Error.Code)
	assert.Contains(t, env.Error.Message, "COMPLETED")

	code, env = s.do(http.MethodPost, base+"/items", "alice",
		`{"flavor":"cheese","quantity":1,"size":"S","unit_price":"5"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, env.Error.Message, "COMPLETED")
}

func TestHandler_ErrorMapping(t *testing.T) {
	s := newTestServer(t)

	_, env := s.do(http.MethodPost, "/orders", "alice", "")
	created := decodeData[OrderResponse](t, env)
	base := "/orders/" + strconv.FormatInt(created.ID, 10)

	tests := []struct {
		name    string
		method  string
		path    string
		token   string
		body    string
		status  int
		code    string
		message string
	}{
		{"non-admin list all", http.MethodGet, "/orders", "alice", "", http.StatusForbidden, "FORBIDDEN", ""},
		{"non-admin view", http.MethodGet, base, "alice", "", http.StatusForbidden, "FORBIDDEN", ""},
		{"non-owner cancel", http.MethodPost, base + "/cancel", "bob", "", http.StatusForbidden, "FORBIDDEN", ""},
		{"missing order", http.MethodPost, "/orders/999/cancel", "alice", "", http.StatusNotFound, "NOT_FOUND", "order not found"},
		{"missing item", http.MethodDelete, "/orders/items/999", "alice", "", http.StatusNotFound, "NOT_FOUND", "item not found"},
		{"missing target user", http.MethodPost, "/orders/users/999", "root", "", http.StatusNotFound, "NOT_FOUND", "target user not found"},
		{"bad order id", http.MethodGet, "/orders/abc", "root", "", http.StatusBadRequest, "VALIDATION_FAILED", "invalid order id"},
		{"bad status filter", http.MethodGet, "/orders/mine?status=SHIPPED", "alice", "", http.StatusBadRequest, "VALIDATION_FAILED", ""},
		{"malformed body", http.MethodPost, base + "/items", "alice", "{", http.StatusBadRequest, "VALIDATION_FAILED", "invalid request body"},
		{"zero quantity", http.MethodPost, base + "/items", "alice",
			`{"flavor":"cheese","quantity":0,"size":"M","unit_price":"1"}`, http.StatusBadRequest, "VALIDATION_FAILED", ""},
		{"negative price", http.MethodPost, base + "/items", "alice",
			`{"flavor":"cheese","quantity":1,"size":"M","unit_price":"-1"}`, http.StatusBadRequest, "VALIDATION_FAILED", "unit price must not be negative"},
		{"missing price", http.MethodPost, base + "/items", "alice",
			`{"flavor":"cheese","quantity":2,"size":"M"}`, http.StatusBadRequest, "VALIDATION_FAILED", ""},
		{"null price", http.MethodPost, base + "/items", "alice",
			`{"flavor":"cheese","quantity":2,"size":"M","unit_price":null}`, http.StatusBadRequest, "VALIDATION_FAILED", ""},
		{"sub-cent price", http.MethodPost, base + "/items", "alice",
			`{"flavor":"cheese","quantity":1,"size":"M","unit_price":"9.999"}`, http.StatusBadRequest, "VALIDATION_FAILED", "unit price must have at most 2 decimal places"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, code)
			require.NotNil(t, env.Error)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Error.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, env.Error.Message)
			}
		})
	}
}

func TestHandler_Lists(t *testing.T) {
	s := newTestServer(t)

	s.do(http.MethodPost, "/orders", "alice", "")
	s.do(http.MethodPost, "/orders", "bob", "")
	s.do(http.MethodPost, "/orders/users/"+strconv.FormatInt(alice.ID, 10), "root", "")

	code, env := s.do(http.MethodGet, "/orders/mine", "alice", "")
	require.Equal(t, http.StatusOK, code)
	mine := decodeData[[]OrderResponse](t, env)
	assert.Len(t, mine, 2)
	for _, o := range mine {
		assert.Equal(t, alice.ID, o.UserID)
	}

	code, env = s.do(http.MethodGet, "/orders?status=PENDING", "root", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decodeData[[]OrderResponse](t, env), 3)

	code, env = s.do(http.MethodGet, "/orders?status=CANCELED", "root", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decodeData[[]OrderResponse](t, env))
}

func TestHandler_ItemCountMatchesPrice(t *testing.T) {
	s := newTestServer(t)

	_, env := s.do(http.MethodPost, "/orders", "alice", "")
	created := decodeData[OrderResponse](t, env)
	base := "/orders/" + strconv.FormatInt(created.ID, 10)

	code, _ := s.do(http.MethodPost, base+"/items", "alice",
		`{"flavor":"cheese","quantity":2,"size":"M","unit_price":"10"}`)
	require.Equal(t, http.StatusCreated, code)

	code, env = s.do(http.MethodGet, "/orders/mine", "alice", "")
	require.Equal(t, http.StatusOK, code)
	mine := decodeData[[]OrderResponse](t, env)
	require.Len(t, mine, 1)
	assert.Equal(t, "20.00", mine[0].Price)
	assert.Equal(t, 1, mine[0].ItemCount)

	code, env = s.do(http.MethodGet, "/orders", "root", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, decodeData[[]OrderResponse](t, env)[0].ItemCount)

	code, env = s.do(http.MethodPost, base+"/cancel", "alice", "")
	require.Equal(t, http.StatusOK, code)
	canceled := decodeData[OrderResponse](t, env)
	assert.Equal(t, StatusCanceled, canceled.Status)
	assert.Equal(t, "20.00", canceled.Price)
	assert.Equal(t, 1, canceled.ItemCount)
}

func TestHandler_RequiresActor(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(http.MethodPost, "/orders", "mallory", "")
	assert.Equal(t, http.StatusUnauthorized, code)
}
