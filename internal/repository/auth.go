package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"naval_exe/internal/domain/user"
	errs "naval_exe/internal/errors"
)

// Хранилища в памяти — для тестов и локального запуска без Mongo/Redis.

type UserMapStorage struct {
	mu    sync.RWMutex
	users map[string]user.User
}

func NewMapUserStorage() *UserMapStorage {
	return &UserMapStorage{users: make(map[string]user.User)}
}

func (u *UserMapStorage) CheckExists(_ context.Context, username string) bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	for _, v := range u.users {
		if v.Username == username {
			return true
		}
	}
	return false
}

func (u *UserMapStorage) GetUser(_ context.Context, username string) (user.User, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	for _, v := range u.users {
		if v.Username == username {
			return v, true
		}
	}
	return user.User{}, false
}

func (u *UserMapStorage) GetUserByID(_ context.Context, id string) (user.User, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	v, ok := u.users[id]
	return v, ok
}

func (u *UserMapStorage) CreateUser(ctx context.Context, username, email, password string) (user.User, error) {
	if u.CheckExists(ctx, username) {
		return user.User{}, errs.ErrUserExists
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	newUser := user.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
		PasswordHash: password,
	}
	u.users[newUser.ID] = newUser
	return newUser, nil
}

type SessionMapStorage struct {
	mu       sync.RWMutex
	sessions map[string]string
}

func NewSessionMapStorage() *SessionMapStorage {
	return &SessionMapStorage{
		sessions: make(map[string]string),
	}
}

func (s *SessionMapStorage) GetUserIdBySession(_ context.Context, sessionID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.sessions[sessionID]
	return v, ok
}

func (s *SessionMapStorage) StoreSession(_ context.Context, sessionID string, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = userID
}

func (s *SessionMapStorage) DeleteSession(_ context.Context, sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.sessions[sessionID]; !found {
		return false
	}
	delete(s.sessions, sessionID)
	return true
}
