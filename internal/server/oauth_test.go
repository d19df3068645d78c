package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/riff/internal/shared"
	"golang.org/x/oauth2"
)

func testOAuthConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/callback",
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}
}

func TestOAuthHandler(t *testing.T) {
	t.Run("SuccessfulExchange", func(t *testing.T) {
		tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token": "granted", "token_type": "Bearer", "expires_in": 3600}`))
		}))
		defer tokenServer.Close()

		handler := NewOAuthHandler(testOAuthConfig(tokenServer.URL), "state123")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=state123&code=authcode", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}

		select {
		case result := <-handler.Result():
			if result.Error() != nil {
				t.Fatalf("unexpected error: %v", result.Error())
			}
			if result.Token.AccessToken != "granted" {
				t.Errorf("unexpected token: %+v", result.Token)
			}
		case <-time.After(time.Second):
			t.Fatal("no result delivered")
		}
	})

	t.Run("StateMismatch", func(t *testing.T) {
		handler := NewOAuthHandler(testOAuthConfig("http://unused"), "expected")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=forged&code=authcode", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		result := <-handler.Result()
		if !errors.Is(result.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", result.Error())
		}
	})

	t.Run("ProviderDeniedAuthorization", func(t *testing.T) {
		handler := NewOAuthHandler(testOAuthConfig("http://unused"), "state123")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=state123&error=access_denied&error_description=nope", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		result := <-handler.Result()
		if !errors.Is(result.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", result.Error())
		}
	})

	t.Run("SecondCallbackRejected", func(t *testing.T) {
		tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token": "granted", "token_type": "Bearer"}`))
		}))
		defer tokenServer.Close()

		handler := NewOAuthHandler(testOAuthConfig(tokenServer.URL), "state123")

		first := httptest.NewRecorder()
		handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/callback?state=state123&code=code1", nil))
		<-handler.Result()

		second := httptest.NewRecorder()
		handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/callback?state=state123&code=code2", nil))
		if second.Code != http.StatusBadRequest {
			t.Errorf("replayed callback should be rejected, got %d", second.Code)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("MethodFiltering", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("pong"))
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Body.String() != "pong" {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("MiddlewareOrder", func(t *testing.T) {
		router := NewBasicRouter()
		var order []string

		tag := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router.Use(tag("outer"), tag("inner"))
		router.Handle(http.MethodGet, "/x", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
		if len(order) != 3 || order[0] != "outer" || order[1] != "inner" || order[2] != "handler" {
			t.Errorf("unexpected middleware order: %v", order)
		}
	})

	t.Run("UnknownPathNotFound", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("MiddlewareAddedAfterHandleStillApplies", func(t *testing.T) {
		router := NewBasicRouter()
		var hit bool

		router.Handle(http.MethodGet, "/x", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hit = true
				next.ServeHTTP(w, r)
			})
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
		if !hit {
			t.Error("middleware registered after the route was not applied")
		}
	})

	t.Run("HandlerRegistersAllRoutes", func(t *testing.T) {
		tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer tokenServer.Close()

		router := NewBasicRouter()
		router.Handler(NewOAuthHandler(testOAuthConfig(tokenServer.URL), "s"))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=wrong", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("callback route not registered, got %d", rec.Code)
		}
	})
}
