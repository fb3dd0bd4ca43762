package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// credentialsPrefix is the Redis key prefix for credential hashes.
	credentialsPrefix = "market:credentials:"

	// credentialsTTL bounds how long a stored login survives without a new
	// Save. Tokens expire server-side well before this.
	credentialsTTL = 72 * time.Hour
)

// RedisStore keeps credentials in a Redis hash keyed by profile name, for
// deployments where several client instances share one login.
type RedisStore struct {
	client  *redis.Client
	profile string
}

// NewRedisStore connects to Redis and returns a store scoped to the given
// profile name.
func NewRedisStore(addr, profile string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	// Verify connection.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("auth: redis connection failed: %w", err)
	}

	return &RedisStore{client: client, profile: profile}, nil
}

func (s *RedisStore) key() string {
	return credentialsPrefix + s.profile
}

// Load reads the stored credentials. Returns ErrNoCredentials when the hash
// is missing or holds no token.
func (s *RedisStore) Load(ctx context.Context) (Credentials, error) {
	var creds Credentials
	if err := s.client.HGetAll(ctx, s.key()).Scan(&creds); err != nil {
		return Credentials{}, fmt.Errorf("auth: redis load: %w", err)
	}
	if !creds.LoggedIn() {
		return Credentials{}, ErrNoCredentials
	}
	return creds, nil
}

// Save writes all four fields in one HSET so a concurrent Load never sees a
// partial set, and refreshes the TTL.
func (s *RedisStore) Save(ctx context.Context, creds Credentials) error {
	key := s.key()
	fields := map[string]interface{}{
		"token":    creds.Token,
		"email":    creds.Email,
		"user_id":  creds.UserID,
		"is_admin": creds.IsAdmin,
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, credentialsTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("auth: redis save: %w", err)
	}
	return nil
}

// Clear deletes the credential hash. Clearing an empty store is not an
// error.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("auth: redis clear: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
