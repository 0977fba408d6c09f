package auth

import (
	"context"
	"errors"
	"testing"

	errs "naval_exe/internal/errors"
	"naval_exe/internal/repository"
)

func newTestHandler() *AuthUsecaseHandler {
	return NewUserUsecaseHandler(repository.NewMapUserStorage(), repository.NewSessionMapStorage())
}

func TestRegisterAndLogin(t *testing.T) {
	h := newTestHandler()
	ctx := context.Background()

	sessionID, err := h.RegisterUser(ctx, "alice", "alice@example.com", "secret")
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if sessionID == "" {
		t.Fatal("регистрация должна сразу выдавать сессию")
	}

	userID, err := h.GetUserIdFromSession(ctx, sessionID)
	if err != nil || userID == "" {
		t.Fatalf("GetUserIdFromSession: %q, %v", userID, err)
	}

	if _, err := h.RegisterUser(ctx, "alice", "other@example.com", "x"); !errors.Is(err, errs.ErrUserExists) {
		t.Errorf("повторная регистрация: %v, ожидали ErrUserExists", err)
	}

	loginSession, err := h.LoginUser(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if loginSession == sessionID {
		t.Error("каждый вход выдаёт новую сессию")
	}
}

func TestLoginErrors(t *testing.T) {
	h := newTestHandler()
	ctx := context.Background()

	if _, err := h.LoginUser(ctx, "ghost", "x"); !errors.Is(err, errs.ErrUserNotFound) {
		t.Errorf("вход без регистрации: %v, ожидали ErrUserNotFound", err)
	}

	if _, err := h.RegisterUser(ctx, "bob", "bob@example.com", "secret"); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if _, err := h.LoginUser(ctx, "bob", "wrong"); !errors.Is(err, errs.ErrWrongPassword) {
		t.Errorf("неверный пароль: %v, ожидали ErrWrongPassword", err)
	}
}

func TestLogout(t *testing.T) {
	h := newTestHandler()
	ctx := context.Background()

	sessionID, err := h.RegisterUser(ctx, "carol", "carol@example.com", "secret")
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}

	if err := h.LogoutUser(ctx, sessionID); err != nil {
		t.Fatalf("LogoutUser: %v", err)
	}
	if _, err := h.GetUserIdFromSession(ctx, sessionID); !errors.Is(err, errs.ErrSessionNotFound) {
		t.Errorf("после выхода сессия должна умереть: %v", err)
	}
	if err := h.LogoutUser(ctx, sessionID); !errors.Is(err, errs.ErrSessionNotFound) {
		t.Errorf("повторный выход: %v, ожидали ErrSessionNotFound", err)
	}
}

func TestCheckAuthorized(t *testing.T) {
	h := newTestHandler()
	ctx := context.Background()

	sessionID, err := h.RegisterUser(ctx, "dave", "dave@example.com", "secret")
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}

	ok, u := h.CheckAuthorized(ctx, sessionID)
	if !ok || u.Username != "dave" {
		t.Errorf("CheckAuthorized: ok=%v, user=%+v", ok, u)
	}

	ok, _ = h.CheckAuthorized(ctx, "no-such-session")
	if ok {
		t.Error("чужая сессия не должна проходить")
	}
}
