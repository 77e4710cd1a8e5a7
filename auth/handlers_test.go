package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/vidtube-go/apperror"
	"github.com/user/vidtube-go/upload"
)

type fakeAuthService struct {
	checkErr    error
	registered  *NewUser
	registerErr error
	loginResp   *LoginResponse
	loginErr    error
	refreshWith string
	refreshErr  error
	loggedOut   uuid.UUID
}

func (f *fakeAuthService) CheckAvailable(context.Context, string, string) error { return f.checkErr }

func (f *fakeAuthService) Register(_ context.Context, in NewUser) (*User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	f.registered = &in
	return &User{ID: uuid.New(), Username: in.Username, Email: in.Email, FullName: in.FullName, Avatar: in.AvatarURL}, nil
}

func (f *fakeAuthService) Login(context.Context, LoginRequest) (*LoginResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAuthService) Refresh(_ context.Context, token string) (*TokenPair, error) {
	f.refreshWith = token
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil
}

func (f *fakeAuthService) Logout(_ context.Context, id uuid.UUID) error {
	f.loggedOut = id
	return nil
}

func (f *fakeAuthService) ChangePassword(context.Context, uuid.UUID, ChangePasswordRequest) error {
	return nil
}

type fakeMedia struct {
	uploads []string
	deleted []string
}

func (f *fakeMedia) Upload(_ context.Context, localPath, folder string) (string, error) {
	if localPath == "" {
		return "", nil
	}
	url := "https://cdn.example.com/" + folder + "/" + filepath.Base(localPath)
	f.uploads = append(f.uploads, url)
	return url, nil
}

func (f *fakeMedia) Delete(_ context.Context, url string) {
	if url != "" {
		f.deleted = append(f.deleted, url)
	}
}

func registerRequest(t *testing.T, fields map[string]string, withAvatar bool) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if withAvatar {
		fw, err := mw.CreateFormFile("avatar", "me.png")
		require.NoError(t, err)
		_, _ = fw.Write([]byte("png"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serveRegister(t *testing.T, h *Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	mw := upload.Fields(filepath.Join(t.TempDir(), "scratch"), 1<<20,
		upload.Field{Name: "avatar", MaxCount: 1},
		upload.Field{Name: "coverImage", MaxCount: 1},
	)
	rec := httptest.NewRecorder()
	mw(h.HandleRegister()).ServeHTTP(rec, req)
	return rec
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

var validRegistration = map[string]string{
	"fullName": "Alice Liddell",
	"email":    "alice@example.com",
	"username": "Alice",
	"password": "wonderland",
}

func TestHandleRegister(t *testing.T) {
	svc := &fakeAuthService{}
	m := &fakeMedia{}
	h := NewHandler(svc, m, testAuthConfig())

	rec := serveRegister(t, h, registerRequest(t, validRegistration, true))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := envelope(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Alice", data["username"])
	assert.NotContains(t, data, "password")
	assert.NotContains(t, data, "refreshToken")

	require.NotNil(t, svc.registered)
	assert.Len(t, m.uploads, 1, "no cover image was sent")
	assert.Empty(t, svc.registered.CoverImageURL)
}

func TestHandleRegisterValidation(t *testing.T) {
	t.Run("blank field", func(t *testing.T) {
		fields := map[string]string{}
		for k, v := range validRegistration {
			fields[k] = v
		}
		fields["fullName"] = "   "

		rec := serveRegister(t, NewHandler(&fakeAuthService{}, &fakeMedia{}, testAuthConfig()), registerRequest(t, fields, true))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "All fields are required", envelope(t, rec)["message"])
	})

	t.Run("missing avatar", func(t *testing.T) {
		m := &fakeMedia{}
		rec := serveRegister(t, NewHandler(&fakeAuthService{}, m, testAuthConfig()), registerRequest(t, validRegistration, false))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Avatar file is required", envelope(t, rec)["message"])
		assert.Empty(t, m.uploads)
	})

	t.Run("taken username uploads nothing", func(t *testing.T) {
		m := &fakeMedia{}
		svc := &fakeAuthService{checkErr: apperror.NewConflictError("User with email or username already exists", nil)}
		rec := serveRegister(t, NewHandler(svc, m, testAuthConfig()), registerRequest(t, validRegistration, true))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Empty(t, m.uploads)
	})

	t.Run("insert failure deletes uploaded avatar", func(t *testing.T) {
		m := &fakeMedia{}
		svc := &fakeAuthService{registerErr: apperror.NewConflictError("User with email or username already exists", nil)}
		rec := serveRegister(t, NewHandler(svc, m, testAuthConfig()), registerRequest(t, validRegistration, true))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, m.uploads, m.deleted)
	})
}

func TestHandleLoginSetsCookies(t *testing.T) {
	user := testUser()
	svc := &fakeAuthService{loginResp: &LoginResponse{
		User:      user,
		TokenPair: TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"},
	}}
	h := NewHandler(svc, &fakeMedia{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", strings.NewReader(`{"username":"alice","password":"pw"}`))
	rec := httptest.NewRecorder()
	h.HandleLogin()(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c
	}
	require.Contains(t, cookies, AccessTokenCookie)
	require.Contains(t, cookies, RefreshTokenCookie)
	assert.Equal(t, "access-1", cookies[AccessTokenCookie].Value)
	assert.True(t, cookies[AccessTokenCookie].HttpOnly)
	assert.Equal(t, "refresh-1", cookies[RefreshTokenCookie].Value)

	data := envelope(t, rec)["data"].(map[string]any)
	assert.Equal(t, "access-1", data["accessToken"])
	assert.Equal(t, "refresh-1", data["refreshToken"])
	assert.Equal(t, "alice", data["user"].(map[string]any)["username"])
}

func TestHandleLoginWrongPassword(t *testing.T) {
	svc := &fakeAuthService{loginErr: apperror.NewAuthError("Invalid user credentials", nil)}
	h := NewHandler(svc, &fakeMedia{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", strings.NewReader(`{"email":"alice@example.com","password":"nope"}`))
	rec := httptest.NewRecorder()
	h.HandleLogin()(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestHandleRefreshTokenPrefersCookie(t *testing.T) {
	svc := &fakeAuthService{}
	h := NewHandler(svc, &fakeMedia{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", strings.NewReader(`{"refreshToken":"from-body"}`))
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "from-cookie"})
	rec := httptest.NewRecorder()
	h.HandleRefreshToken()(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "from-cookie", svc.refreshWith)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", strings.NewReader(`{"refreshToken":"from-body"}`))
	rec = httptest.NewRecorder()
	h.HandleRefreshToken()(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "from-body", svc.refreshWith)
}

func TestHandleLogoutClearsCookies(t *testing.T) {
	svc := &fakeAuthService{}
	h := NewHandler(svc, &fakeMedia{}, testAuthConfig())
	id := Identity{UserID: uuid.New(), Username: "alice"}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	req = req.WithContext(NewContextWithIdentity(req.Context(), id))
	rec := httptest.NewRecorder()
	h.HandleLogout()(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id.UserID, svc.loggedOut)
	for _, c := range rec.Result().Cookies() {
		assert.Empty(t, c.Value)
		assert.Negative(t, c.MaxAge)
	}
}

type fakeResolver struct {
	id  Identity
	err error
}

func (f fakeResolver) ResolveAccessToken(_ context.Context, token string) (Identity, error) {
	if token != "good" {
		return Identity{}, apperror.NewAuthError("Invalid access token", nil)
	}
	return f.id, f.err
}

func TestMiddleware(t *testing.T) {
	want := Identity{UserID: uuid.New(), Username: "alice"}
	var got Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = IdentityFromContext(r.Context())
	})
	h := Middleware(fakeResolver{id: want})(next)

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Unauthorized request", envelope(t, rec)["message"])
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer forged")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid access token", envelope(t, rec)["message"])
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, want, got)
	})

	t.Run("cookie", func(t *testing.T) {
		got = Identity{}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "good"})
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, want, got)
	})
}

func TestOptionalMiddleware(t *testing.T) {
	var ok bool
	h := OptionalMiddleware(fakeResolver{id: Identity{UserID: uuid.New()}})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = IdentityFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, ok)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, ok)
}
