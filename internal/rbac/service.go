package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNotFound indicates that the requested user does not exist.
	ErrNotFound = errors.New("rbac: not found")
	// ErrInactive indicates the user exists but may not act.
	ErrInactive = errors.New("rbac: user inactive")
)

const cacheKeyPrefix = "rbac:user:"

// UserRole is the authorization view of a user account.
type UserRole struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"is_active"`
}

// Store loads the stored role of a user.
type Store interface {
	UserRole(ctx context.Context, userID int64) (UserRole, error)
}

// Service resolves principals from user IDs, caching lookups in Redis.
type Service struct {
	store  Store
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewService constructs a Service. A nil cache disables caching.
func NewService(store Store, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, cache: cache, ttl: ttl, logger: logger}
}

// Resolve returns the principal for userID using its current stored role.
func (s *Service) Resolve(ctx context.Context, userID int64) (Principal, error) {
	if userID <= 0 {
		return Principal{}, ErrNotFound
	}
	ur, ok := s.fromCache(ctx, userID)
	if !ok {
		v, err, _ := s.group.Do(strconv.FormatInt(userID, 10), func() (interface{}, error) {
			loaded, err := s.store.UserRole(ctx, userID)
			if err != nil {
				return UserRole{}, err
			}
			s.toCache(ctx, loaded)
			return loaded, nil
		})
		if err != nil {
			return Principal{}, err
		}
		ur = v.(UserRole)
	}
	if !ur.IsActive {
		return Principal{}, ErrInactive
	}
	if !ur.Role.Valid() {
		return Principal{}, fmt.Errorf("rbac: user %d: %w", userID, ErrUnknownRole)
	}
	return Principal{UserID: ur.UserID, Username: ur.Username, Role: ur.Role}, nil
}

// Invalidate drops the cached role of userID.
func (s *Service) Invalidate(ctx context.Context, userID int64) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, cacheKey(userID)).Err()
}

func (s *Service) fromCache(ctx context.Context, userID int64) (UserRole, bool) {
	if s.cache == nil || s.ttl <= 0 {
		return UserRole{}, false
	}
	raw, err := s.cache.Get(ctx, cacheKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("rbac cache get", slog.Any("error", err))
		}
		return UserRole{}, false
	}
	var ur UserRole
	if err := json.Unmarshal(raw, &ur); err != nil {
		return UserRole{}, false
	}
	return ur, true
}

func (s *Service) toCache(ctx context.Context, ur UserRole) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(ur)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(ur.UserID), raw, s.ttl).Err(); err != nil {
		s.logger.Warn("rbac cache set", slog.Any("error", err))
	}
}

func cacheKey(userID int64) string {
	return cacheKeyPrefix + strconv.FormatInt(userID, 10)
}
