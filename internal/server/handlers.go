package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/abhisek/mathgym/internal/account"
	"github.com/abhisek/mathgym/internal/numeric"
	"github.com/abhisek/mathgym/internal/store"
	"github.com/abhisek/mathgym/internal/taskgen"
)

// User-facing error messages.
const (
	msgInternal     = "Внутренняя ошибка сервера"
	msgBadRequest   = "Некорректный запрос"
	msgUnauthorized = "Не авторизован"
	msgBadStars     = "Некорректные звёзды"
	msgInvalidLogin = "Неверный логин или пароль"
	msgUserExists   = "Пользователь уже существует"
	msgUserNotFound = "Пользователь не найден"
	msgBadAnswer    = "Ответ должен быть числом"
	msgBadCategory  = "Неизвестная категория"
	msgUnknownMode  = "Неизвестный режим"
	msgForbiddenFmt = "Только %s может удалять"
	msgProtectedFmt = "Нельзя удалить %s"
)

type tokenResponse struct {
	Token string `json:"token"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type taskResponse struct {
	Task     string  `json:"task"`
	Answer   float64 `json:"answer"`
	Hint     string  `json:"hint"`
	Category string  `json:"category"`
	Kind     string  `json:"kind"`
	Expected string  `json:"expected"`
}

type checkRequest struct {
	Answer   string `json:"answer"`
	Expected string `json:"expected"`
	Kind     string `json:"kind"`
}

type checkResponse struct {
	Correct bool `json:"correct"`
}

type starsRequest struct {
	Stars json.Number `json:"stars"`
}

type deleteUserRequest struct {
	Username string `json:"username"`
}

type ratingEntry struct {
	Username   string     `json:"username"`
	Stars      int64      `json:"stars"`
	LastActive *time.Time `json:"last_active"`
}

type ratingResponse struct {
	Users   []ratingEntry `json:"users"`
	Current string        `json:"current"`
}

type meResponse struct {
	Username   string     `json:"username"`
	Stars      int64      `json:"stars"`
	LastActive *time.Time `json:"last_active"`
	Admin      bool       `json:"admin"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds account.Credentials
	if !s.decode(w, r, credentialsSchema, &creds) {
		return
	}

	token, err := s.accounts.Register(r.Context(), creds)
	var inputErr *account.InvalidInputError
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, tokenResponse{Token: token})
	case errors.As(err, &inputErr):
		writeError(w, http.StatusBadRequest, inputErr.Error())
	case errors.Is(err, store.ErrUserExists):
		writeError(w, http.StatusConflict, msgUserExists)
	default:
		s.internalError(w, r, "register", err)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds account.Credentials
	if !s.decode(w, r, credentialsSchema, &creds) {
		return
	}

	token, err := s.accounts.Login(r.Context(), creds)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, tokenResponse{Token: token})
	case errors.Is(err, account.ErrInvalidLogin):
		writeError(w, http.StatusUnauthorized, msgInvalidLogin)
	default:
		s.internalError(w, r, "login", err)
	}
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	var (
		task *taskgen.Task
		err  error
	)
	if c := r.URL.Query().Get("category"); c != "" {
		category := taskgen.Category(c)
		if !category.Valid() {
			writeError(w, http.StatusBadRequest, msgBadCategory)
			return
		}
		task, err = s.tasks.NextOf(category)
	} else {
		task, err = s.tasks.Next()
	}
	if err != nil {
		s.internalError(w, r, "generate task", err)
		return
	}

	writeJSON(w, http.StatusOK, taskResponse{
		Task:     task.Prompt,
		Answer:   task.Answer.Float64(),
		Hint:     task.Hint,
		Category: string(task.Category),
		Kind:     string(task.Answer.Kind()),
		Expected: task.Answer.String(),
	})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if !s.decode(w, r, checkSchema, &req) {
		return
	}

	want, err := taskgen.ParseAnswer(taskgen.AnswerKind(req.Kind), req.Expected)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	ok, err := taskgen.Verify(strings.TrimSpace(req.Answer), want)
	if errors.Is(err, taskgen.ErrMalformedAnswer) {
		writeError(w, http.StatusBadRequest, msgBadAnswer)
		return
	}
	if err != nil {
		s.internalError(w, r, "verify answer", err)
		return
	}
	writeJSON(w, http.StatusOK, checkResponse{Correct: ok})
}

func (s *Server) handleModes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, modes)
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	m, ok := findMode(r.PathValue("name"))
	if !ok {
		writeError(w, http.StatusNotFound, msgUnknownMode)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	username := usernameFrom(r.Context())
	u, err := s.users.Get(r.Context(), username)
	if errors.Is(err, store.ErrUserNotFound) {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	if err != nil {
		s.internalError(w, r, "load user", err)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{
		Username:   u.Username,
		Stars:      u.Stars,
		LastActive: u.LastActive,
		Admin:      s.accounts.IsAdmin(u.Username),
	})
}

func (s *Server) handleUpdateStars(w http.ResponseWriter, r *http.Request) {
	var req starsRequest
	if err := decodeBody(w, r, starsSchema, &req); err != nil {
		if errors.Is(err, errBadRequest) {
			writeError(w, http.StatusBadRequest, msgBadStars)
			return
		}
		s.internalError(w, r, "decode stars", err)
		return
	}
	stars, ok := wholeNumber(req.Stars)
	if !ok || stars < 0 {
		writeError(w, http.StatusBadRequest, msgBadStars)
		return
	}

	err := s.scores.SubmitScore(r.Context(), usernameFrom(r.Context()), stars)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	case errors.Is(err, store.ErrNegativeScore):
		writeError(w, http.StatusBadRequest, msgBadStars)
	case errors.Is(err, store.ErrUserNotFound):
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
	default:
		s.internalError(w, r, "submit score", err)
	}
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	actor := usernameFrom(r.Context())
	if !s.accounts.IsAdmin(actor) {
		writeError(w, http.StatusForbidden, fmt.Sprintf(msgForbiddenFmt, s.accounts.Admin()))
		return
	}

	var req deleteUserRequest
	if !s.decode(w, r, deleteUserSchema, &req) {
		return
	}

	err := s.accounts.Delete(r.Context(), actor, req.Username)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	case errors.Is(err, account.ErrForbidden):
		writeError(w, http.StatusForbidden, fmt.Sprintf(msgForbiddenFmt, s.accounts.Admin()))
	case errors.Is(err, account.ErrProtectedUser):
		writeError(w, http.StatusBadRequest, fmt.Sprintf(msgProtectedFmt, s.accounts.Admin()))
	case errors.Is(err, store.ErrUserNotFound):
		writeError(w, http.StatusNotFound, msgUserNotFound)
	default:
		s.internalError(w, r, "delete user", err)
	}
}

func (s *Server) handleRating(w http.ResponseWriter, r *http.Request) {
	board, err := s.scores.Leaderboard(r.Context(), s.opts.LeaderboardLimit)
	if err != nil {
		s.internalError(w, r, "leaderboard", err)
		return
	}
	entries := make([]ratingEntry, 0, len(board))
	for _, e := range board {
		entries = append(entries, ratingEntry{
			Username:   e.Username,
			Stars:      e.Stars,
			LastActive: e.LastActive,
		})
	}
	writeJSON(w, http.StatusOK, ratingResponse{
		Users:   entries,
		Current: usernameFrom(r.Context()),
	})
}

// requireUser rejects requests without a valid bearer token and stores the
// authenticated username in the request context.
func (s *Server) requireUser(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		username, err := s.accounts.Authenticate(strings.TrimSpace(token))
		if err != nil {
			writeError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		next(w, r.WithContext(withUsername(r.Context(), username)))
	})
}

// decode writes a 400 and returns false when the body is unusable.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, schema requestSchema, dst any) bool {
	err := decodeBody(w, r, schema, dst)
	if err == nil {
		return true
	}
	if errors.Is(err, errBadRequest) {
		writeError(w, http.StatusBadRequest, msgBadRequest)
	} else {
		s.internalError(w, r, "decode body", err)
	}
	return false
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	s.logger.Error(op+" failed", "request_id", RequestID(r.Context()), "error", err)
	writeError(w, http.StatusInternalServerError, msgInternal)
}

// wholeNumber converts a JSON number such as 5 or 5.0 to an int64.
func wholeNumber(n json.Number) (int64, bool) {
	r, err := numeric.ParseRat(n.String())
	if err != nil || !r.IsInt() {
		return 0, false
	}
	return r.Num(), true
}
