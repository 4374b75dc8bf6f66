package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

// RedisOptions configures the connection pool.
type RedisOptions struct {
	// Addr is either host:port or a redis:// URL.
	Addr        string
	PoolSize    int
	PoolTimeout time.Duration
}

// NewRedisClient builds a pooled client from options.
func NewRedisClient(opts RedisOptions) (*redis.Client, error) {
	var clientOpts *redis.Options

	if strings.Contains(opts.Addr, "://") {
		parsed, err := redis.ParseURL(opts.Addr)
		if err != nil {
			return nil, oops.Code("STORE_INVALID_ADDR").Wrap(err)
		}

		clientOpts = parsed
	} else {
		clientOpts = &redis.Options{Addr: opts.Addr}
	}

	if opts.PoolSize > 0 {
		clientOpts.PoolSize = opts.PoolSize
	}

	if opts.PoolTimeout > 0 {
		clientOpts.PoolTimeout = opts.PoolTimeout
	}

	return redis.NewClient(clientOpts), nil
}

// RedisStore is a Redis implementation of KeyValueStore.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis-backed key-value store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// WithConn leases one pooled connection for the duration of fn.
func (r *RedisStore) WithConn(ctx context.Context, fn func(Conn) error) error {
	conn := r.client.Conn()
	defer func() { _ = conn.Close() }()

	return fn(&redisConn{conn: conn})
}

// Ping checks Redis connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return unavailable("ping", "", err)
	}

	return nil
}

// Shutdown closes the underlying client and its pool.
// A client already closed by another owner is not an error.
func (r *RedisStore) Shutdown() error {
	if err := r.client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}

	return nil
}

type redisConn struct {
	conn *redis.Conn
}

func (c *redisConn) Get(ctx context.Context, key string) (string, error) {
	value, err := c.conn.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}

		return "", unavailable("get", key, err)
	}

	return value, nil
}

func (c *redisConn) Set(ctx context.Context, key, value string) error {
	if err := c.conn.Set(ctx, key, value, 0).Err(); err != nil {
		return unavailable("set", key, err)
	}

	return nil
}

func (c *redisConn) AddToSet(ctx context.Context, setKey, member string) error {
	if err := c.conn.SAdd(ctx, setKey, member).Err(); err != nil {
		return unavailable("sadd", setKey, err)
	}

	return nil
}

func unavailable(op, key string, err error) error {
	return oops.Code("STORE_UNAVAILABLE").
		With("operation", op).
		With("key", key).
		Wrap(errors.Join(ErrUnavailable, err))
}

// Compile-time check.
var _ KeyValueStore = (*RedisStore)(nil)
