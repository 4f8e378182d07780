package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func TestJWTAuthSetsActor(t *testing.T) {
	token, err := SignToken("dev", "u1", "u1@solifin.example", "admin", time.Hour)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	var got struct {
		id    string
		admin bool
	}
	h := JWTAuth("dev")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, ok := ActorFromContext(r.Context())
		if !ok {
			t.Errorf("no actor in context")
		}
		got.id, got.admin = a.UserID, a.Admin
	}))

	req := httptest.NewRequest(http.MethodGet, "/my-page", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK || got.id != "u1" || !got.admin {
		t.Fatalf("unexpected result: code=%d actor=%+v", w.Code, got)
	}
}

func TestJWTAuthRejects(t *testing.T) {
	wrong, _ := SignToken("other", "u1", "", "", time.Hour)
	expired, _ := SignToken("dev", "u1", "", "", -time.Hour)
	h := JWTAuth("dev")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("handler must not run")
	}))

	for _, header := range []string{"", "Basic abc", "Bearer " + wrong, "Bearer " + expired} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%q: expected 401 got %d", header, w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json" {
			t.Fatalf("expected json content-type got %q", ct)
		}
	}
}

func TestRequireAdmin(t *testing.T) {
	token, _ := SignToken("dev", "u1", "", "", time.Hour)
	h := JWTAuth("dev")(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("handler must not run")
	})))
	req := httptest.NewRequest(http.MethodPatch, "/advertisements/a/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", w.Code)
	}
}

func overrideRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(MethodOverride)
	r.Post("/items/{id}", func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, "post") })
	r.Put("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "put:"+r.FormValue("titre"))
	})
	return r
}

func TestMethodOverrideQuery(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("titre", "Riz")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/items/1?_method=put", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	overrideRouter().ServeHTTP(w, req)
	if w.Body.String() != "put:Riz" {
		t.Fatalf("expected put:Riz got %q", w.Body.String())
	}
}

func TestMethodOverrideFormField(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("titre", "Huile")
	_ = mw.WriteField("_method", "PUT")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/items/1", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	overrideRouter().ServeHTTP(w, req)
	if w.Body.String() != "put:Huile" {
		t.Fatalf("expected put:Huile got %q", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/items/1?_method=GET", strings.NewReader(""))
	w = httptest.NewRecorder()
	overrideRouter().ServeHTTP(w, req)
	if w.Body.String() != "post" {
		t.Fatalf("GET must not be an override target, got %q", w.Body.String())
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPatch, "/job-offers/j/state", nil))
	if !strings.Contains(buf.String(), `"status":409`) || !strings.Contains(buf.String(), `"level":"WARN"`) {
		t.Fatalf("unexpected log line %s", buf.String())
	}
}
