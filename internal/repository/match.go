package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"naval_exe/internal/domain/match"
	errs "naval_exe/internal/errors"
	"naval_exe/internal/statuses"
)

const mongoTimeout = 5 * time.Second

// MatchMongoStorage хранит партии в Mongo (коллекции matches, player_slots,
// ships, shots) и ведёт ленту выстрелов в Redis.
type MatchMongoStorage struct {
	log   *zap.SugaredLogger
	mongo *mongo.Database
	redis *redis.Client
}

func NewMatchMongoStorage(log *zap.SugaredLogger, mongoDB *mongo.Database, redisClient *redis.Client) *MatchMongoStorage {
	return &MatchMongoStorage{
		log:   log,
		mongo: mongoDB,
		redis: redisClient,
	}
}

func (s *MatchMongoStorage) PutMatch(ctx context.Context, m match.Match) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	_, err := s.mongo.Collection("matches").InsertOne(ctx, m)
	if err != nil {
		s.log.Errorf("не удалось сохранить партию %s: %v", m.ID, err)
	}
	return err
}

func (s *MatchMongoStorage) GetMatch(ctx context.Context, matchID string) (match.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	var m match.Match
	err := s.mongo.Collection("matches").FindOne(ctx, bson.M{"_id": matchID}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return match.Match{}, errs.ErrMatchNotFound
	}
	if err != nil {
		s.log.Error(err)
		return match.Match{}, err
	}
	return m, nil
}

func (s *MatchMongoStorage) UpdateMatch(ctx context.Context, m match.Match) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	res, err := s.mongo.Collection("matches").ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		s.log.Errorf("не удалось обновить партию %s: %v", m.ID, err)
		return err
	}
	if res.MatchedCount == 0 {
		return errs.ErrMatchNotFound
	}
	return nil
}

func (s *MatchMongoStorage) DeleteMatch(ctx context.Context, matchID string) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	_, err := s.mongo.Collection("matches").DeleteOne(ctx, bson.M{"_id": matchID})
	if err != nil {
		return err
	}
	s.redis.Del(context.Background(), shotFeedKey(matchID))
	return nil
}

func (s *MatchMongoStorage) PutSlot(ctx context.Context, slot match.PlayerSlot) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	_, err := s.mongo.Collection("player_slots").InsertOne(ctx, slot)
	return err
}

func (s *MatchMongoStorage) UpdateSlot(ctx context.Context, slot match.PlayerSlot) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	res, err := s.mongo.Collection("player_slots").ReplaceOne(ctx, bson.M{"_id": slot.ID}, slot)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errs.ErrMatchNotFound
	}
	return nil
}

func (s *MatchMongoStorage) DeleteSlot(ctx context.Context, slotID string) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	_, err := s.mongo.Collection("player_slots").DeleteOne(ctx, bson.M{"_id": slotID})
	return err
}

func (s *MatchMongoStorage) SlotsByMatch(ctx context.Context, matchID string) ([]match.PlayerSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.mongo.Collection("player_slots").Find(ctx, bson.M{"match_id": matchID}, opts)
	if err != nil {
		s.log.Error(err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var slots []match.PlayerSlot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (s *MatchMongoStorage) SlotByMatchAndUser(ctx context.Context, matchID, userID string) (match.PlayerSlot, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	var slot match.PlayerSlot
	err := s.mongo.Collection("player_slots").
		FindOne(ctx, bson.M{"match_id": matchID, "user_id": userID}).
		Decode(&slot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return match.PlayerSlot{}, false, nil
	}
	if err != nil {
		s.log.Error(err)
		return match.PlayerSlot{}, false, err
	}
	return slot, true, nil
}

func (s *MatchMongoStorage) PutShips(ctx context.Context, ships []match.Ship) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	docs := make([]interface{}, 0, len(ships))
	for _, ship := range ships {
		docs = append(docs, ship)
	}
	_, err := s.mongo.Collection("ships").InsertMany(ctx, docs)
	return err
}

func (s *MatchMongoStorage) UpdateShip(ctx context.Context, ship match.Ship) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	res, err := s.mongo.Collection("ships").ReplaceOne(ctx, bson.M{"_id": ship.ID}, ship)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errs.ErrMatchNotFound
	}
	return nil
}

func (s *MatchMongoStorage) ShipsBySlot(ctx context.Context, slotID string) ([]match.Ship, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	cursor, err := s.mongo.Collection("ships").Find(ctx, bson.M{"slot_id": slotID})
	if err != nil {
		s.log.Error(err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var ships []match.Ship
	if err := cursor.All(ctx, &ships); err != nil {
		return nil, err
	}
	return ships, nil
}

func (s *MatchMongoStorage) DeleteShipsBySlot(ctx context.Context, slotID string) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	_, err := s.mongo.Collection("ships").DeleteMany(ctx, bson.M{"slot_id": slotID})
	return err
}

func (s *MatchMongoStorage) CountUnsunkShips(ctx context.Context, slotID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	count, err := s.mongo.Collection("ships").CountDocuments(ctx, bson.M{"slot_id": slotID, "sunk": false})
	if err != nil {
		s.log.Error(err)
		return 0, err
	}
	return int(count), nil
}

func (s *MatchMongoStorage) PutShot(ctx context.Context, shot match.Shot) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	_, err := s.mongo.Collection("shots").InsertOne(ctx, shot)
	return err
}

func (s *MatchMongoStorage) ShotsByMatch(ctx context.Context, matchID string) ([]match.Shot, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.mongo.Collection("shots").Find(ctx, bson.M{"match_id": matchID}, opts)
	if err != nil {
		s.log.Error(err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var shots []match.Shot
	if err := cursor.All(ctx, &shots); err != nil {
		return nil, err
	}
	return shots, nil
}

func (s *MatchMongoStorage) HasShot(ctx context.Context, matchID, attackerID, defenderID, coordinate string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	err := s.mongo.Collection("shots").FindOne(ctx, bson.M{
		"match_id":    matchID,
		"attacker_id": attackerID,
		"defender_id": defenderID,
		"coordinate":  coordinate,
	}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *MatchMongoStorage) DeleteShotsByMatch(ctx context.Context, matchID string) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	_, err := s.mongo.Collection("shots").DeleteMany(ctx, bson.M{"match_id": matchID})
	return err
}

func (s *MatchMongoStorage) OpenMatches(ctx context.Context) ([]match.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.mongo.Collection("matches").Find(ctx, bson.M{"status": statuses.StatusWaiting}, opts)
	if err != nil {
		s.log.Error(err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var matches []match.Match
	if err := cursor.All(ctx, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *MatchMongoStorage) MatchesByUser(ctx context.Context, userID string) ([]match.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	cursor, err := s.mongo.Collection("player_slots").Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		s.log.Error(err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var slots []match.PlayerSlot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(slots))
	for _, slot := range slots {
		ids = append(ids, slot.MatchID)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	matchCursor, err := s.mongo.Collection("matches").Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		s.log.Error(err)
		return nil, err
	}
	defer matchCursor.Close(ctx)

	var matches []match.Match
	if err := matchCursor.All(ctx, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func shotFeedKey(matchID string) string {
	return "shots:" + matchID
}

// Лента выстрелов в Redis: быстрый хвост для поллинга без похода в Mongo.
func (s *MatchMongoStorage) AppendShotFeed(ctx context.Context, matchID string, entry []byte) error {
	return s.redis.RPush(ctx, shotFeedKey(matchID), entry).Err()
}

func (s *MatchMongoStorage) LoadShotFeed(ctx context.Context, matchID string, limit int64) ([]string, error) {
	start := int64(0)
	if limit > 0 {
		start = -limit
	}
	entries, err := s.redis.LRange(ctx, shotFeedKey(matchID), start, -1).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return entries, err
}
