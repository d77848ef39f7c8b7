package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/autolenis/autolenis-backend/pkg/auth"
	"github.com/autolenis/autolenis-backend/pkg/config"
	"github.com/autolenis/autolenis-backend/pkg/enums"
	"github.com/autolenis/autolenis-backend/pkg/logger"
)

func jwtConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "autolenis-test",
		ExpirationMinutes: 5,
	}
}

func TestAuthSeedsActorContext(t *testing.T) {
	cfg := jwtConfig()
	userID := uuid.New()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: userID,
		Role:   enums.RoleDealer,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	var gotUser, gotRole string
	handler := Auth(cfg, logger.New(logger.Options{ServiceName: "test"}))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser = UserIDFromContext(r.Context())
			gotRole = RoleFromContext(r.Context())
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auctions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotUser != userID.String() {
		t.Fatalf("expected user id %s, got %q", userID, gotUser)
	}
	if gotRole != string(enums.RoleDealer) {
		t.Fatalf("expected dealer role, got %q", gotRole)
	}
}

func TestAuthRejectsMissingAndBadTokens(t *testing.T) {
	cfg := jwtConfig()
	handler := Auth(cfg, logger.New(logger.Options{ServiceName: "test"}))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run without valid credentials")
		}))

	for name, header := range map[string]string{
		"missing": "",
		"empty":   "Bearer ",
		"garbage": "Bearer not-a-jwt",
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auctions", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}

func TestRequireRoleBlocksOtherRoles(t *testing.T) {
	handler := RequireRole("admin", logger.New(logger.Options{ServiceName: "test"}))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/thing", nil)
	req = req.WithContext(WithRole(req.Context(), "buyer"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for buyer, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/admin/v1/thing", nil)
	req = req.WithContext(WithRole(req.Context(), "admin"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for admin, got %d", rec.Code)
	}
}
