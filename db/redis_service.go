package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-redis/redis/v8"
)

const (
	notifiedKey = "absensi:notified" // Hash: student id -> absence count at last notification
)

// RedisService remembers which absence counts were already notified, so a
// student is not re-notified on every attendance write.
type RedisService struct {
	Client *redis.Client
	Logger *log.Logger
}

// NewRedisService creates a new RedisService instance
func NewRedisService(client *redis.Client, logger *log.Logger) *RedisService {
	return &RedisService{
		Client: client,
		Logger: logger,
	}
}

func studentField(studentID int64) string {
	return strconv.FormatInt(studentID, 10)
}

// LastNotified returns the absence count of the student's last notification,
// or 0 if they were never notified.
func (s *RedisService) LastNotified(ctx context.Context, studentID int64) (int, error) {
	val, err := s.Client.HGet(ctx, notifiedKey, studentField(studentID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get notified count for student %d: %w", studentID, err)
	}
	return val, nil
}

// MarkNotified records count as the student's last notified absence count
func (s *RedisService) MarkNotified(ctx context.Context, studentID int64, count int) error {
	if err := s.Client.HSet(ctx, notifiedKey, studentField(studentID), count).Err(); err != nil {
		return fmt.Errorf("failed to mark student %d notified: %w", studentID, err)
	}
	return nil
}

// Forget drops the given students from the ledger, e.g. after they are
// deleted from the roster.
func (s *RedisService) Forget(ctx context.Context, studentIDs ...int64) error {
	if len(studentIDs) == 0 {
		return nil
	}
	fields := make([]string, len(studentIDs))
	for i, id := range studentIDs {
		fields[i] = studentField(id)
	}
	if err := s.Client.HDel(ctx, notifiedKey, fields...).Err(); err != nil {
		return fmt.Errorf("failed to forget students %v: %w", studentIDs, err)
	}
	s.Logger.Debug("forgot notified students", "students", studentIDs)
	return nil
}

// Reset clears the ledger after the attendance history is wiped
func (s *RedisService) Reset(ctx context.Context) error {
	if err := s.Client.Del(ctx, notifiedKey).Err(); err != nil {
		return fmt.Errorf("failed to reset notification ledger: %w", err)
	}
	s.Logger.Debug("notification ledger reset")
	return nil
}

// InitializeRedisClient creates and tests a Redis client connection
func InitializeRedisClient(ctx context.Context, addr, password string, dbIndex int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       dbIndex,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(pingCtx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", addr, err)
	}
	return rdb, nil
}
