package cache

import (
	"context"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent.
var ErrMiss = redis.Nil

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Cache struct {
	client *redis.Client
	prefix string
}

type Options struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

type Option func(*Options)

func WithAddress(addr string) Option {
	return func(o *Options) {
		o.Address = addr
	}
}

func WithPassword(pass string) Option {
	return func(o *Options) {
		o.Password = pass
	}
}

func WithDB(db int) Option {
	return func(o *Options) {
		o.DB = db
	}
}

// WithKeyPrefix namespaces every key, so several deployments can share one
// Redis database.
func WithKeyPrefix(prefix string) Option {
	return func(o *Options) {
		o.KeyPrefix = prefix
	}
}

func New(ctx context.Context, opts ...Option) (*Cache, error) {
	options := &Options{
		Address:   "localhost:6379",
		KeyPrefix: "csdash:",
	}

	for _, opt := range opts {
		opt(options)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     options.Address,
		Password: options.Password,
		DB:       options.DB,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Cache{client: client, prefix: options.KeyPrefix}, nil
}

func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(val, dest)
}

func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, data, expiration).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// Noop satisfies the cache contract without storing anything. Every Get is a
// miss.
type Noop struct{}

func (Noop) Get(context.Context, string, any) error {
	return ErrMiss
}

func (Noop) Set(context.Context, string, any, time.Duration) error {
	return nil
}

func (Noop) Close() error {
	return nil
}

// IsMiss reports whether err means the key was not cached.
func IsMiss(err error) bool {
	return errors.Is(err, ErrMiss)
}
