package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/accounts-service/internal/core/domain"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in domain.RegistrationInput) (*domain.AuthResult, error)
	loginFn    func(ctx context.Context, email, password string) (*domain.AuthResult, error)
	refreshFn  func(ctx context.Context, token string) (*domain.TokenPair, error)
}

func (s *stubAuthService) Register(ctx context.Context, in domain.RegistrationInput) (*domain.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) RefreshToken(ctx context.Context, token string) (*domain.TokenPair, error) {
	return s.refreshFn(ctx, token)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in domain.RegistrationInput) (*domain.AuthResult, error) {
			if in.FullName != "Jane Doe" || in.BirthDate != "2000-01-01" || in.Email != "jane@x.com" || in.Password != "secret1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.AuthResult{
				User:         domain.PublicUser{ID: "u1", FullName: in.FullName, Email: in.Email, Role: domain.RoleUser, IsActive: true},
				AccessToken:  "access",
				RefreshToken: "refresh",
			}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/auth/register",
		`{"full_name":"Jane Doe","birth_date":"2000-01-01","email":"jane@x.com","password":"secret1"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	resp := decodeEnvelope(t, rec)
	if resp["success"] != true || resp["message"] != "User registered successfully" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	data, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data in response")
	}
	if data["accessToken"] != "access" || data["refreshToken"] != "refresh" {
		t.Fatalf("unexpected tokens: %+v", data)
	}
	user, ok := data["user"].(map[string]any)
	if !ok || user["role"] != "user" {
		t.Fatalf("unexpected user payload: %+v", data["user"])
	}
	if _, leaked := user["password"]; leaked {
		t.Fatalf("password must not be serialised")
	}
}

func TestAuthHandler_Register_ServiceErrorPropagates(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in domain.RegistrationInput) (*domain.AuthResult, error) {
			return nil, domain.ErrDuplicateEmail
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := jsonContext(e, http.MethodPost, "/auth/register", `{"email":"jane@x.com"}`)
	if err := handler.Register(c); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthHandler_Register_TooLong(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in domain.RegistrationInput) (*domain.AuthResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	body := `{"full_name":"` + strings.Repeat("a", 256) + `","email":"jane@x.com"}`
	c, _ := jsonContext(e, http.MethodPost, "/auth/register", body)

	err := handler.Register(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "full_name" {
		t.Fatalf("expected validation error on full_name, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in domain.RegistrationInput) (*domain.AuthResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := jsonContext(e, http.MethodPost, "/auth/register", "not-json")
	if code := httpCode(t, handler.Register(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*domain.AuthResult, error) {
			if email != "jane@x.com" || password != "secret1" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &domain.AuthResult{
				User:         domain.PublicUser{ID: "u1", Email: email, Role: domain.RoleAdmin, IsActive: true},
				AccessToken:  "access",
				RefreshToken: "refresh",
			}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/auth/login", `{"email":"jane@x.com","password":"secret1"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp["message"] != "Login successful" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
	data := resp["data"].(map[string]any)
	if data["accessToken"] != "access" {
		t.Fatalf("expected token, got %v", data["accessToken"])
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*domain.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/auth/login", `{"email":"jane@x.com","password":"bad"}`)
	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("handler must leave rendering to the error handler")
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*domain.AuthResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := jsonContext(e, http.MethodPost, "/auth/login", "{")
	if code := httpCode(t, handler.Login(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestAuthHandler_Refresh_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		refreshFn: func(ctx context.Context, token string) (*domain.TokenPair, error) {
			if token != "refresh-1" {
				t.Fatalf("unexpected token %q", token)
			}
			return &domain.TokenPair{AccessToken: "access-2", RefreshToken: "refresh-2"}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/auth/refresh", `{"refreshToken":"refresh-1"}`)
	if err := handler.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	resp := decodeEnvelope(t, rec)
	data := resp["data"].(map[string]any)
	if data["accessToken"] != "access-2" || data["refreshToken"] != "refresh-2" {
		t.Fatalf("unexpected pair: %+v", data)
	}
	if _, ok := data["user"]; ok {
		t.Fatalf("refresh must not return a user")
	}
}

func TestAuthHandler_Refresh_FailuresAre401(t *testing.T) {
	for _, svcErr := range []error{domain.ErrInvalidToken, domain.ErrUserNotFound, domain.ErrAccountBlocked} {
		e := newTestEcho()
		stub := &stubAuthService{
			refreshFn: func(ctx context.Context, token string) (*domain.TokenPair, error) {
				return nil, svcErr
			},
		}
		handler := NewAuthHandler(stub)

		c, _ := jsonContext(e, http.MethodPost, "/auth/refresh", `{"refreshToken":"x"}`)
		if code := httpCode(t, handler.Refresh(c)); code != http.StatusUnauthorized {
			t.Fatalf("%v: expected 401, got %d", svcErr, code)
		}
	}
}

func TestAuthHandler_Refresh_MissingToken(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		refreshFn: func(ctx context.Context, token string) (*domain.TokenPair, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := jsonContext(e, http.MethodPost, "/auth/refresh", `{}`)
	if code := httpCode(t, handler.Refresh(c)); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestAuthHandler_Refresh_InternalErrorPassesThrough(t *testing.T) {
	e := newTestEcho()
	boom := errors.New("boom")
	stub := &stubAuthService{
		refreshFn: func(ctx context.Context, token string) (*domain.TokenPair, error) {
			return nil, boom
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := jsonContext(e, http.MethodPost, "/auth/refresh", `{"refreshToken":"x"}`)
	if err := handler.Refresh(c); !errors.Is(err, boom) {
		t.Fatalf("expected internal error to pass through, got %v", err)
	}
}
