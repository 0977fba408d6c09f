package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"naval_exe/internal/adapters"
	"naval_exe/internal/domain/user"
	errs "naval_exe/internal/errors"
)

type MongoUserStorage struct {
	adapter *adapters.AdapterMongo
	log     *zap.SugaredLogger
}

func NewMongoUserStorage(adapter *adapters.AdapterMongo, log *zap.SugaredLogger) *MongoUserStorage {
	return &MongoUserStorage{adapter: adapter, log: log}
}

func (m *MongoUserStorage) CheckExists(ctx context.Context, username string) bool {
	_, ok := m.GetUser(ctx, username)
	return ok
}

func (m *MongoUserStorage) GetUser(ctx context.Context, username string) (user.User, bool) {
	collection := m.adapter.Database.Collection("users")

	var result user.User
	err := collection.FindOne(ctx, bson.M{"username": username}).Decode(&result)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			m.log.Error(err)
		}
		return user.User{}, false
	}
	return result, true
}

func (m *MongoUserStorage) GetUserByID(ctx context.Context, id string) (user.User, bool) {
	collection := m.adapter.Database.Collection("users")

	var result user.User
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&result)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			m.log.Error(err)
		}
		return user.User{}, false
	}
	return result, true
}

func (m *MongoUserStorage) CreateUser(ctx context.Context, username, email, password string) (user.User, error) {
	if _, found := m.GetUser(ctx, username); found {
		return user.User{}, errs.ErrUserExists
	}

	newUser := user.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
		PasswordHash: password,
	}

	_, err := m.adapter.Database.Collection("users").InsertOne(ctx, newUser)
	if err != nil {
		m.log.Error(err)
		return user.User{}, errs.ErrInternal
	}
	return newUser, nil
}
