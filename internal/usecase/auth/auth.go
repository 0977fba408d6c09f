package auth

import (
	"context"

	userDomain "naval_exe/internal/domain/user"
	errs "naval_exe/internal/errors"
	"naval_exe/internal/random"
)

type UserStorage interface {
	CheckExists(ctx context.Context, username string) bool
	GetUser(ctx context.Context, username string) (userDomain.User, bool)
	GetUserByID(ctx context.Context, id string) (userDomain.User, bool)
	CreateUser(ctx context.Context, username, email, password string) (userDomain.User, error)
}

type SessionStorage interface {
	GetUserIdBySession(ctx context.Context, sessionID string) (userID string, ok bool)
	StoreSession(ctx context.Context, sessionID string, userID string)
	DeleteSession(ctx context.Context, sessionID string) (ok bool)
}

type AuthUsecaseHandler struct {
	userStorage    UserStorage
	sessionStorage SessionStorage
}

func NewUserUsecaseHandler(u UserStorage, s SessionStorage) *AuthUsecaseHandler {
	return &AuthUsecaseHandler{
		userStorage:    u,
		sessionStorage: s,
	}
}

func (a *AuthUsecaseHandler) RegisterUser(ctx context.Context, username, email, password string) (sessionID string, err error) {
	newUser, err := a.userStorage.CreateUser(ctx, username, email, password)
	if err != nil {
		return "", err
	}
	sessionID = random.RandString(64)
	a.sessionStorage.StoreSession(ctx, sessionID, newUser.ID)
	return sessionID, nil
}

func (a *AuthUsecaseHandler) LoginUser(ctx context.Context, providedUsername, providedPassword string) (sessionID string, err error) {
	if !a.userStorage.CheckExists(ctx, providedUsername) {
		return "", errs.ErrUserNotFound
	}
	userFromDb, _ := a.userStorage.GetUser(ctx, providedUsername)
	if providedPassword != userFromDb.PasswordHash {
		return "", errs.ErrWrongPassword
	}
	sessionID = random.RandString(64)
	a.sessionStorage.StoreSession(ctx, sessionID, userFromDb.ID)
	return sessionID, nil
}

// LogoutUser возвращает nil либо ErrSessionNotFound.
func (a *AuthUsecaseHandler) LogoutUser(ctx context.Context, sessionID string) error {
	if _, ok := a.sessionStorage.GetUserIdBySession(ctx, sessionID); !ok {
		return errs.ErrSessionNotFound
	}
	if ok := a.sessionStorage.DeleteSession(ctx, sessionID); !ok {
		return errs.ErrSessionNotFound
	}
	return nil
}

func (a *AuthUsecaseHandler) GetUserIdFromSession(ctx context.Context, sessionID string) (string, error) {
	userID, ok := a.sessionStorage.GetUserIdBySession(ctx, sessionID)
	if !ok {
		return "", errs.ErrSessionNotFound
	}
	return userID, nil
}

func (a *AuthUsecaseHandler) CheckAuthorized(ctx context.Context, sessionID string) (bool, userDomain.User) {
	userID, found := a.sessionStorage.GetUserIdBySession(ctx, sessionID)
	if !found {
		return false, userDomain.User{}
	}
	u, ok := a.userStorage.GetUserByID(ctx, userID)
	if !ok {
		return false, userDomain.User{}
	}
	return true, u
}
