package httpserver_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/repo/repotest"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/logging"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const cookieName = "accessToken"

type server struct {
	e      *echo.Echo
	repo   *repo.GormRepo
	events *mykafka.Recorder
}

func newServer(t *testing.T) *server {
	t.Helper()

	r := repotest.NewRepo(t)
	rec := &mykafka.Recorder{}
	deny := tokens.NewMemoryDenylist()
	opts := pkgdb.DefaultTxOptions()

	authSvc := &service.AuthService{
		Repo:      r,
		Events:    rec,
		Denylist:  deny,
		JWTSecret: []byte("handler-test-secret"),
		TokenTTL:  time.Hour,
	}
	catalog := &service.CatalogService{Repo: r, Events: rec, TxOpts: opts}
	cart := &service.CartService{Repo: r, Events: rec, TxOpts: opts}

	e := echo.New()
	e.Validator = httpserver.NewValidator()
	e.HTTPErrorHandler = httpserver.ErrorHandler
	e.Use(loggingmw.RequestLogger(logging.Discard()))

	httpserver.Register(e, &httpserver.Deps{
		Auth:     &httpserver.AuthHTTP{Svc: authSvc, CookieName: cookieName},
		Cart:     &httpserver.CartHTTP{Svc: cart},
		Order:    &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Events: rec, TxOpts: opts}},
		Address:  &httpserver.AddressHTTP{Svc: &service.AddressService{Repo: r, TxOpts: opts}},
		Category: &httpserver.CategoryHTTP{Svc: catalog},
		Product:  &httpserver.ProductHTTP{Svc: catalog},
		User:     &httpserver.UserHTTP{Svc: &service.UserService{Repo: r, Events: rec, TxOpts: opts}},
		AuthMW:   authmw.NewAuthMiddleware(authSvc.JWTSecret, cookieName, deny, authSvc),
		DB:       r,
	})

	return &server{e: e, repo: r, events: rec}
}

// do sends body as JSON and authenticates with token as a bearer header.
func (s *server) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// login registers username with roles and returns its session token.
func (s *server) login(t *testing.T, username string, roles ...string) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/auth/signup", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
		"roles":    roles,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/auth/signin", map[string]string{
		"username": username,
		"password": "secret123",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == cookieName {
			return ck.Value
		}
	}
	t.Fatalf("no %s cookie in signin response", cookieName)
	return ""
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func path(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
