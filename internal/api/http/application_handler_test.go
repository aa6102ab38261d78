package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"membership-backend/internal/domain"
	"membership-backend/internal/security"
	"membership-backend/internal/service"
	"membership-backend/internal/service/mocks"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testApplication() *domain.Application {
	return &domain.Application{
		ID:               "app-1",
		Token:            "tok",
		ApplicantName:    "Alice",
		ApplicantEmail:   "alice@x.com",
		SponsorEmail:     "bob@x.com",
		SponsorMemberID:  "member-1",
		Status:           domain.ApplicationStatusPending,
		VerificationCode: "123456",
		CreatedAt:        testTime,
		ExpiresAt:        testTime.Add(7 * 24 * time.Hour),
	}
}

type routerFixture struct {
	svc    *mocks.MockApplicationService
	tokens security.TokenManager
	router http.Handler
}

func newRouterFixture() *routerFixture {
	svc := new(mocks.MockApplicationService)
	tokens := security.NewTokenManager("test-secret", time.Hour)
	return &routerFixture{
		svc:    svc,
		tokens: tokens,
		router: NewRouter(svc, tokens, []string{"https://members.example.org"}),
	}
}

func (f *routerFixture) do(t *testing.T, method, path, body, memberID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if memberID != "" {
		token, err := f.tokens.GenerateAccessToken(memberID, "", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthz(t *testing.T) {
	f := newRouterFixture()
	rec := f.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestCreateApplication(t *testing.T) {
	body := `{"applicant_name":"Alice","applicant_email":"alice@x.com","sponsor_email":"bob@x.com",
		"profile":{"address":"1 Main St","professional_qualification":"MSc","area_of_interest":"Go"}}`

	t.Run("Created", func(t *testing.T) {
		f := newRouterFixture()
		f.svc.On("CreateApplication", mock.Anything, mock.MatchedBy(func(in domain.ApplicationInput) bool {
			return in.ApplicantName == "Alice" && in.Profile.Address == "1 Main St"
		})).Return(testApplication(), true, nil)

		rec := f.do(t, http.MethodPost, "/applications", body, "")
		assert.Equal(t, http.StatusCreated, rec.Code)

		out := decode(t, rec)
		assert.Equal(t, true, out["created"])
		app := out["application"].(map[string]any)
		assert.Equal(t, "", app["token"])
		assert.NotContains(t, app, "verification_code")
	})

	t.Run("ExistingPending", func(t *testing.T) {
		f := newRouterFixture()
		f.svc.On("CreateApplication", mock.Anything, mock.Anything).Return(testApplication(), false, nil)

		rec := f.do(t, http.MethodPost, "/applications", body, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Validation", func(t *testing.T) {
		f := newRouterFixture()
		verr := &domain.ValidationError{}
		verr.Add("applicant_email", "is not a valid email address")
		f.svc.On("CreateApplication", mock.Anything, mock.Anything).Return(nil, false, verr)

		rec := f.do(t, http.MethodPost, "/applications", body, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		out := decode(t, rec)
		assert.Equal(t, "validation failed", out["error"])
		assert.Equal(t, "is not a valid email address", out["fields"].(map[string]any)["applicant_email"])
	})

	t.Run("MalformedBody", func(t *testing.T) {
		f := newRouterFixture()
		rec := f.do(t, http.MethodPost, "/applications", "{", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		f.svc.AssertNotCalled(t, "CreateApplication", mock.Anything, mock.Anything)
	})
}

func TestGetApplication(t *testing.T) {
	f := newRouterFixture()
	f.svc.On("GetApplication", mock.Anything, "tok").Return(testApplication(), nil)
	f.svc.On("GetApplication", mock.Anything, "gone").Return(nil, domain.ErrNotFound)

	rec := f.do(t, http.MethodGet, "/applications/tok", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PENDING", decode(t, rec)["application"].(map[string]any)["status"])

	rec = f.do(t, http.MethodGet, "/applications/gone", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApproveApplication(t *testing.T) {
	t.Run("RequiresToken", func(t *testing.T) {
		f := newRouterFixture()
		rec := f.do(t, http.MethodPost, "/applications/tok/approve", `{"verification_code":"123456"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		f.svc.AssertNotCalled(t, "ApproveApplication", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("RejectsBadBearer", func(t *testing.T) {
		f := newRouterFixture()
		req := httptest.NewRequest(http.MethodPost, "/applications/tok/approve", strings.NewReader(`{}`))
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Success", func(t *testing.T) {
		f := newRouterFixture()
		approved := testApplication()
		approved.Status = domain.ApplicationStatusApproved
		member := &domain.Member{ID: "member-2", Email: "alice@x.com", Active: true}
		f.svc.On("ApproveApplication", mock.Anything, "tok", "member-1", "123456").
			Return(&service.ApprovalResult{Application: approved, Member: member}, nil)

		rec := f.do(t, http.MethodPost, "/applications/tok/approve", `{"verification_code":"123456"}`, "member-1")
		assert.Equal(t, http.StatusOK, rec.Code)
		out := decode(t, rec)
		assert.Equal(t, "APPROVED", out["application"].(map[string]any)["status"])
		assert.Equal(t, "member-2", out["member"].(map[string]any)["id"])
	})

	t.Run("StatusMapping", func(t *testing.T) {
		tests := []struct {
			err    error
			status int
		}{
			{domain.ErrNotFound, http.StatusNotFound},
			{domain.ErrInvalidState, http.StatusConflict},
			{domain.ErrLinkExpired, http.StatusGone},
			{domain.ErrInvalidCode, http.StatusUnprocessableEntity},
			{domain.ErrSponsorNotFound, http.StatusNotFound},
			{domain.ErrSponsorInactive, http.StatusForbidden},
			{domain.ErrNotAuthorized, http.StatusForbidden},
			{domain.ErrSelfApproval, http.StatusForbidden},
			{domain.ErrRateLimitExceeded, http.StatusTooManyRequests},
			{&domain.StorageError{Op: "approve", Err: errors.New("connection reset")}, http.StatusInternalServerError},
		}
		for _, tt := range tests {
			f := newRouterFixture()
			f.svc.On("ApproveApplication", mock.Anything, "tok", "member-1", "000000").Return(nil, tt.err)

			rec := f.do(t, http.MethodPost, "/applications/tok/approve", `{"verification_code":"000000"}`, "member-1")
			assert.Equal(t, tt.status, rec.Code, "error %v", tt.err)
		}
	})

	t.Run("InternalErrorHidesDetail", func(t *testing.T) {
		f := newRouterFixture()
		f.svc.On("ApproveApplication", mock.Anything, "tok", "member-1", "000000").
			Return(nil, &domain.StorageError{Op: "approve", Err: errors.New("password authentication failed")})

		rec := f.do(t, http.MethodPost, "/applications/tok/approve", `{"verification_code":"000000"}`, "member-1")
		assert.Equal(t, "internal error", decode(t, rec)["error"])
	})
}

func TestRejectApplication(t *testing.T) {
	f := newRouterFixture()
	rejected := testApplication()
	rejected.Status = domain.ApplicationStatusRejected
	f.svc.On("RejectApplication", mock.Anything, "tok", "member-1").Return(rejected, nil)

	rec := f.do(t, http.MethodPost, "/applications/tok/reject", "", "member-1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "REJECTED", decode(t, rec)["application"].(map[string]any)["status"])
}

func TestCORS(t *testing.T) {
	f := newRouterFixture()
	req := httptest.NewRequest(http.MethodOptions, "/applications/tok/approve", nil)
	req.Header.Set("Origin", "https://members.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, "https://members.example.org", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
