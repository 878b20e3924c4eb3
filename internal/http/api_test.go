package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"mesto-api/internal/auth"
	"mesto-api/internal/domain"
	"mesto-api/internal/repository/sqlite"
	"mesto-api/internal/service"
)

func newTestRouter(t *testing.T) (*gin.Engine, *auth.TokenManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := t.Context()
	userRepo := sqlite.NewUserRepository(db)
	require.NoError(t, userRepo.Init(ctx))
	cardRepo := sqlite.NewCardRepository(db)
	require.NoError(t, cardRepo.Init(ctx))

	tokens := auth.NewTokenManager("test-secret", 7*24*time.Hour)
	users := service.NewUserService(userRepo, auth.NewHasher(4), tokens)
	cards := service.NewCardService(cardRepo)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	router := gin.New()
	handler := NewHandler(users, cards, tokens, nil, logger, 100, 100)
	handler.RegisterRoutes(router)
	return router, tokens
}

func do(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), into))
}

func signUp(t *testing.T, router *gin.Engine, email, password string) string {
	t.Helper()

	rec := do(t, router, http.MethodPost, "/signup", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestSignUpMeAndDuplicate(t *testing.T) {
	router, tokens := newTestRouter(t)

	token := signUp(t, router, "a@b.com", "secret1")

	subject, err := tokens.Verify(token)
	require.NoError(t, err)

	rec := do(t, router, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me UserResponse
	decode(t, rec, &me)
	require.Equal(t, subject, me.ID)
	require.Equal(t, "a@b.com", me.Email)

	rec = do(t, router, http.MethodPost, "/signup", "", gin.H{"email": "a@b.com", "password": "another"})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestSignIn(t *testing.T) {
	router, _ := newTestRouter(t)
	signUp(t, router, "a@b.com", "secret1")

	rec := do(t, router, http.MethodPost, "/signin", "", gin.H{"email": "a@b.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)

	// identical response for unknown email and wrong password
	wrong := do(t, router, http.MethodPost, "/signin", "", gin.H{"email": "a@b.com", "password": "nope"})
	unknown := do(t, router, http.MethodPost, "/signin", "", gin.H{"email": "x@b.com", "password": "secret1"})
	require.Equal(t, http.StatusUnauthorized, wrong.Code)
	require.Equal(t, http.StatusUnauthorized, unknown.Code)
	require.Equal(t, wrong.Body.String(), unknown.Body.String())
}

func TestAuthMiddleware(t *testing.T) {
	router, _ := newTestRouter(t)

	for name, header := range map[string]string{
		"missing":    "",
		"not bearer": "Token abc",
		"garbage":    "Bearer not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestExpiredToken(t *testing.T) {
	router, _ := newTestRouter(t)
	signUp(t, router, "a@b.com", "secret1")

	expired := auth.NewTokenManager("test-secret", -time.Hour)
	token, err := expired.Issue("whoever")
	require.NoError(t, err)

	rec := do(t, router, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateProfile_IgnoresIDInPayload(t *testing.T) {
	router, tokens := newTestRouter(t)

	tokenA := signUp(t, router, "a@b.com", "secret1")
	tokenB := signUp(t, router, "b@b.com", "secret2")
	idB, err := tokens.Verify(tokenB)
	require.NoError(t, err)

	// an id-like field in the payload must not redirect the mutation
	rec := do(t, router, http.MethodPatch, "/users/me", tokenA, gin.H{
		"_id":   idB,
		"name":  "Marie",
		"about": "Chemist",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"name":"Marie","about":"Chemist"}`, rec.Body.String())

	rec = do(t, router, http.MethodGet, fmt.Sprintf("/users/%s", idB), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var userB UserResponse
	decode(t, rec, &userB)
	require.Equal(t, domain.DefaultName, userB.Name)
}

func TestUpdateAvatar(t *testing.T) {
	router, _ := newTestRouter(t)
	token := signUp(t, router, "a@b.com", "secret1")

	rec := do(t, router, http.MethodPatch, "/users/me/avatar", token, gin.H{"avatar": "https://example.com/a.png"})
	require.Equal(t, http.StatusOK, rec.Code)
	var user UserResponse
	decode(t, rec, &user)
	require.Equal(t, "https://example.com/a.png", user.Avatar)

	rec = do(t, router, http.MethodPatch, "/users/me/avatar", token, gin.H{"avatar": "nope"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUser_UnknownID(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/users/unknown-id", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"message":"user with the given id not found"}`, rec.Body.String())
}

func TestUnmatchedRoute(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"message":"not found"}`, rec.Body.String())
}

func TestListUsers(t *testing.T) {
	router, _ := newTestRouter(t)
	signUp(t, router, "a@b.com", "secret1")
	signUp(t, router, "b@b.com", "secret2")

	rec := do(t, router, http.MethodGet, "/users", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []UserResponse `json:"data"`
	}
	decode(t, rec, &resp)
	require.Len(t, resp.Data, 2)
}

func TestCardLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	owner := signUp(t, router, "owner@b.com", "secret1")
	other := signUp(t, router, "other@b.com", "secret2")

	rec := do(t, router, http.MethodPost, "/cards", owner, gin.H{
		"name": "Baikal",
		"link": "https://example.com/baikal.jpg",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var card CardResponse
	decode(t, rec, &card)

	rec = do(t, router, http.MethodPut, "/cards/"+card.ID+"/likes", other, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &card)
	require.Len(t, card.Likes, 1)

	rec = do(t, router, http.MethodDelete, "/cards/"+card.ID, other, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, router, http.MethodDelete, "/cards/"+card.ID+"/likes", other, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &card)
	require.Empty(t, card.Likes)

	rec = do(t, router, http.MethodDelete, "/cards/"+card.ID, owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodDelete, "/cards/"+card.ID, owner, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/cards", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestCardsRequireAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/cards", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userRepo := sqlite.NewUserRepository(db)
	require.NoError(t, userRepo.Init(t.Context()))
	cardRepo := sqlite.NewCardRepository(db)
	require.NoError(t, cardRepo.Init(t.Context()))

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	router := gin.New()
	NewHandler(
		service.NewUserService(userRepo, auth.NewHasher(4), tokens),
		service.NewCardService(cardRepo),
		tokens, nil, logger,
		1, 2, // two requests burst, then limited
	).RegisterRoutes(router)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := do(t, router, http.MethodPost, "/signin", "", gin.H{"email": "a@b.com", "password": "x"})
		codes = append(codes, rec.Code)
	}
	require.Equal(t, http.StatusUnauthorized, codes[0])
	require.Equal(t, http.StatusUnauthorized, codes[1])
	require.Equal(t, http.StatusTooManyRequests, codes[2])
}
