package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"thinksync/internal/configs"
	"thinksync/internal/pkg/errs"
)

func testDeps() *AppDeps {
	return &AppDeps{
		Config: &configs.AppConfig{
			Environment: "development",
			Port:        8080,
			JWTSecret:   "test-secret",
		},
	}
}

func doRequest(t *testing.T, router http.Handler, method, target string, body string) (*httptest.ResponseRecorder, int) {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("%s %s returned non-JSON body %q: %v", method, target, rec.Body.String(), err)
	}
	return rec, envelope.Code
}

func TestHealthEndpoint(t *testing.T) {
	router := Router(testDeps())

	rec, code := doRequest(t, router, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", rec.Code)
	}
	if code != 0 {
		t.Fatalf("health business code = %d, want 0", code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := Router(testDeps())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want 200", rec.Code)
	}
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	router := Router(testDeps())

	cases := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/api/boards"},
		{http.MethodGet, "/api/mindmaps"},
		{http.MethodGet, "/api/auth/me"},
	}

	for _, tc := range cases {
		rec, code := doRequest(t, router, tc.method, tc.target, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s status = %d, want 401", tc.method, tc.target, rec.Code)
		}
		if code != errs.ErrUnauthorized {
			t.Fatalf("%s %s business code = %d, want %d", tc.method, tc.target, code, errs.ErrUnauthorized)
		}
	}
}

func TestExportRoutesDisabledWithoutBucket(t *testing.T) {
	router := Router(testDeps())

	_, code := doRequest(t, router, http.MethodPost,
		"/api/exports/boards/1b4e28ba-2fa1-11d2-883f-0016d3cca427/presign-upload",
		`{"mimeType":"image/png","fileSize":1024}`)

	if code != errs.ErrExportDisabled {
		t.Fatalf("business code = %d, want %d", code, errs.ErrExportDisabled)
	}
}

func TestRegisterRejectsBadUsername(t *testing.T) {
	router := Router(testDeps())

	_, code := doRequest(t, router, http.MethodPost, "/api/auth/register",
		`{"username":"No Spaces Allowed","password":"hunter22"}`)

	if code != errs.ErrInvalidUsername {
		t.Fatalf("business code = %d, want %d", code, errs.ErrInvalidUsername)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	router := Router(testDeps())

	_, code := doRequest(t, router, http.MethodPost, "/api/auth/register",
		`{"username":"validname","password":"abc"}`)

	if code != errs.ErrInvalidPassword {
		t.Fatalf("business code = %d, want %d", code, errs.ErrInvalidPassword)
	}
}
