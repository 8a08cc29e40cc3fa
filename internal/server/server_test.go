package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/mathgym/internal/account"
	mock_store "github.com/abhisek/mathgym/internal/mocks/store"
	"github.com/abhisek/mathgym/internal/store"
	"github.com/abhisek/mathgym/internal/taskgen"
)

type testEnv struct {
	handler http.Handler
	users   *mock_store.MockUserRepo
	scores  *mock_store.MockScoreRepo
	tokens  *account.Issuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctrl := gomock.NewController(t)
	users := mock_store.NewMockUserRepo(ctrl)
	scores := mock_store.NewMockScoreRepo(ctrl)

	tokens, err := account.NewIssuer("0123456789abcdef0123456789abcdef", time.Hour)
	require.NoError(t, err)
	accounts, err := account.NewService(users, tokens, account.Options{Admin: "Developer", BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)

	tasks, err := taskgen.NewDispatcher(taskgen.NewRand(42), taskgen.DefaultConfig())
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(Options{CORSOrigins: []string{"http://localhost:3000"}, LeaderboardLimit: 50}, tasks, accounts, users, scores, logger)
	return &testEnv{handler: srv.Handler(), users: users, scores: scores, tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, path, body, user string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		tok, err := e.tokens.Issue(user)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestRequestIDPropagated(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/task", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/task", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestTask(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 50; i++ {
		rec := env.do(t, http.MethodGet, "/api/task", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeJSON[taskResponse](t, rec)

		assert.NotEmpty(t, got.Task)
		assert.NotEmpty(t, got.Hint)
		require.True(t, taskgen.Category(got.Category).Valid(), got.Category)

		want, err := taskgen.ParseAnswer(taskgen.AnswerKind(got.Kind), got.Expected)
		require.NoError(t, err)
		assert.InDelta(t, want.Float64(), got.Answer, 1e-9)

		recomputed, err := taskgen.Recompute(taskgen.Category(got.Category), got.Task)
		require.NoError(t, err)
		assert.True(t, recomputed.Equal(want), "payload answer matches the prompt")
	}
}

func TestTaskByCategory(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/task?category=geometry", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeJSON[taskResponse](t, rec)
	assert.Equal(t, "geometry", got.Category)
	assert.Equal(t, "exact", got.Kind)

	rec = env.do(t, http.MethodGet, "/api/task?category=calculus", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantCorrect bool
	}{
		{"exact integer", `{"answer":"42","expected":"42","kind":"exact"}`, http.StatusOK, true},
		{"exact fraction as decimal", `{"answer":"2.5","expected":"5/2","kind":"exact"}`, http.StatusOK, true},
		{"exact with comma", `{"answer":"2,5","expected":"5/2","kind":"exact"}`, http.StatusOK, true},
		{"exact wrong", `{"answer":"2.49","expected":"5/2","kind":"exact"}`, http.StatusOK, false},
		{"approximate rounded", `{"answer":"0.8333","expected":"0.83","kind":"approximate"}`, http.StatusOK, true},
		{"approximate off", `{"answer":"0.84","expected":"0.83","kind":"approximate"}`, http.StatusOK, false},
		{"malformed answer", `{"answer":"abc","expected":"1","kind":"exact"}`, http.StatusBadRequest, false},
		{"unknown kind", `{"answer":"1","expected":"1","kind":"fuzzy"}`, http.StatusBadRequest, false},
		{"missing field", `{"answer":"1"}`, http.StatusBadRequest, false},
		{"not json", `answer=1`, http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(t, http.MethodPost, "/api/check", tt.body, "")
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantCorrect, decodeJSON[checkResponse](t, rec).Correct)
			}
		})
	}
}

func TestRegister(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		env := newTestEnv(t)
		env.users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		rec := env.do(t, http.MethodPost, "/api/register", `{"username":"Alice","password":"secret12"}`, "")
		require.Equal(t, http.StatusCreated, rec.Code)
		tok := decodeJSON[tokenResponse](t, rec).Token
		sub, err := env.tokens.Parse(tok)
		require.NoError(t, err)
		assert.Equal(t, "Alice", sub)
	})

	t.Run("rule violation", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/api/register", `{"username":"alice","password":"secret12"}`, "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeJSON[errorBody](t, rec).Error, "заглавной")
	})

	t.Run("duplicate", func(t *testing.T) {
		env := newTestEnv(t)
		env.users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(store.ErrUserExists)
		rec := env.do(t, http.MethodPost, "/api/register", `{"username":"Alice","password":"secret12"}`, "")
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, msgUserExists, decodeJSON[errorBody](t, rec).Error)
	})
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret12"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		env := newTestEnv(t)
		env.users.EXPECT().Get(gomock.Any(), "Alice").Return(&store.User{Username: "Alice", PasswordHash: string(hash)}, nil)
		rec := env.do(t, http.MethodPost, "/api/login", `{"username":"Alice","password":"secret12"}`, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, decodeJSON[tokenResponse](t, rec).Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		env := newTestEnv(t)
		env.users.EXPECT().Get(gomock.Any(), "Alice").Return(&store.User{Username: "Alice", PasswordHash: string(hash)}, nil)
		rec := env.do(t, http.MethodPost, "/api/login", `{"username":"Alice","password":"nope1234"}`, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, msgInvalidLogin, decodeJSON[errorBody](t, rec).Error)
	})
}

func TestUpdateStars(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		user       string
		setup      func(m *mock_store.MockScoreRepo)
		wantStatus int
		wantError  string
	}{
		{
			name: "stores score",
			body: `{"stars":12}`,
			user: "Alice",
			setup: func(m *mock_store.MockScoreRepo) {
				m.EXPECT().SubmitScore(gomock.Any(), "Alice", int64(12)).Return(nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "zero allowed",
			body: `{"stars":0}`,
			user: "Alice",
			setup: func(m *mock_store.MockScoreRepo) {
				m.EXPECT().SubmitScore(gomock.Any(), "Alice", int64(0)).Return(nil)
			},
			wantStatus: http.StatusOK,
		},
		{name: "negative", body: `{"stars":-1}`, user: "Alice", wantStatus: http.StatusBadRequest, wantError: msgBadStars},
		{name: "fractional", body: `{"stars":1.5}`, user: "Alice", wantStatus: http.StatusBadRequest, wantError: msgBadStars},
		{name: "string", body: `{"stars":"5"}`, user: "Alice", wantStatus: http.StatusBadRequest, wantError: msgBadStars},
		{name: "missing", body: `{}`, user: "Alice", wantStatus: http.StatusBadRequest, wantError: msgBadStars},
		{name: "anonymous", body: `{"stars":5}`, wantStatus: http.StatusUnauthorized, wantError: msgUnauthorized},
		{
			name: "deleted user",
			body: `{"stars":5}`,
			user: "Ghost",
			setup: func(m *mock_store.MockScoreRepo) {
				m.EXPECT().SubmitScore(gomock.Any(), "Ghost", int64(5)).Return(store.ErrUserNotFound)
			},
			wantStatus: http.StatusUnauthorized,
			wantError:  msgUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.setup != nil {
				tt.setup(env.scores)
			}
			rec := env.do(t, http.MethodPost, "/api/update_stars", tt.body, tt.user)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decodeJSON[errorBody](t, rec).Error)
				return
			}
			assert.True(t, decodeJSON[successResponse](t, rec).Success)
		})
	}
}

func TestUpdateStarsRejectsForgedToken(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/api/update_stars", strings.NewReader(`{"stars":5}`))
	req.Header.Set("Authorization", "Bearer forged.token.value")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeleteUser(t *testing.T) {
	t.Run("admin deletes", func(t *testing.T) {
		env := newTestEnv(t)
		env.users.EXPECT().Delete(gomock.Any(), "Alice").Return(nil)
		rec := env.do(t, http.MethodPost, "/api/delete_user", `{"username":"Alice"}`, "Developer")
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("non admin", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/api/delete_user", `{"username":"Bob"}`, "Alice")
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Только Developer может удалять", decodeJSON[errorBody](t, rec).Error)
	})

	t.Run("admin protected", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/api/delete_user", `{"username":"Developer"}`, "Developer")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Нельзя удалить Developer", decodeJSON[errorBody](t, rec).Error)
	})

	t.Run("missing user", func(t *testing.T) {
		env := newTestEnv(t)
		env.users.EXPECT().Delete(gomock.Any(), "Ghost").Return(store.ErrUserNotFound)
		rec := env.do(t, http.MethodPost, "/api/delete_user", `{"username":"Ghost"}`, "Developer")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRating(t *testing.T) {
	env := newTestEnv(t)
	seen := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	env.scores.EXPECT().Leaderboard(gomock.Any(), 50).Return([]store.ScoreEntry{
		{Username: "Developer", Stars: 9999},
		{Username: "Alice", Stars: 12, LastActive: &seen},
	}, nil)

	rec := env.do(t, http.MethodGet, "/api/rating", "", "Alice")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeJSON[ratingResponse](t, rec)
	assert.Equal(t, "Alice", got.Current)
	require.Len(t, got.Users, 2)
	assert.Equal(t, "Developer", got.Users[0].Username)
	assert.Nil(t, got.Users[0].LastActive)
	require.NotNil(t, got.Users[1].LastActive)
	assert.True(t, seen.Equal(*got.Users[1].LastActive))

	rec = env.do(t, http.MethodGet, "/api/rating", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	env.users.EXPECT().Get(gomock.Any(), "Developer").Return(&store.User{Username: "Developer", Stars: 9999}, nil)

	rec := env.do(t, http.MethodGet, "/api/me", "", "Developer")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeJSON[meResponse](t, rec)
	assert.Equal(t, int64(9999), got.Stars)
	assert.True(t, got.Admin)
}

func TestModes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/modes", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeJSON[[]Mode](t, rec)
	require.Len(t, got, 3)
	assert.Equal(t, "speed", got[0].Name)

	rec = env.do(t, http.MethodGet, "/api/modes/marathon", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Марафон", decodeJSON[Mode](t, rec).Title)

	rec = env.do(t, http.MethodGet, "/api/modes/zen", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	tasks, err := taskgen.NewDispatcher(taskgen.NewRand(1), taskgen.DefaultConfig())
	require.NoError(t, err)
	srv := New(Options{ShutdownTimeout: time.Second}, tasks, nil, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/task")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
