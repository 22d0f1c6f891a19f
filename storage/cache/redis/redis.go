// Package redis provides a DocumentCache backed by a redis server, allowing
// a cache shared between service instances.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/mitchellh/mapstructure"

	"github.com/heavydata/dms/storage/cache"
)

// init registers the redis cache provider.
func init() {
	cache.Register("redis", NewDocumentCacheProvider)
}

// Redis configures the redis cache.
type Redis struct {
	Addr         string        `yaml:"addr,omitempty"`
	Password     string        `yaml:"password,omitempty"`
	DB           int           `yaml:"db,omitempty"`
	DialTimeout  time.Duration `yaml:"dialtimeout,omitempty"`
	ReadTimeout  time.Duration `yaml:"readtimeout,omitempty"`
	WriteTimeout time.Duration `yaml:"writetimeout,omitempty"`
	Expiry       time.Duration `yaml:"expiry,omitempty"`
	Pool         struct {
		MaxIdle     int           `yaml:"maxidle,omitempty"`
		MaxActive   int           `yaml:"maxactive,omitempty"`
		IdleTimeout time.Duration `yaml:"idletimeout,omitempty"`
	} `yaml:"pool,omitempty"`
}

type redisDocumentCache struct {
	pool   *redis.Pool
	expiry time.Duration
}

// NewDocumentCacheProvider builds a redis-backed document cache from the
// provider options. The "addr" option is required.
func NewDocumentCacheProvider(ctx context.Context, options map[string]interface{}) (cache.DocumentCache, error) {
	var c Redis
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     &c,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(options["params"]); err != nil {
		return nil, err
	}

	if c.Addr == "" {
		return nil, fmt.Errorf("redis cache: no 'addr' option provided")
	}

	return NewWithPool(newPool(c), c.Expiry), nil
}

// NewWithPool returns a redis document cache using the provided connection
// pool. A zero expiry means cached payloads do not expire.
func NewWithPool(pool *redis.Pool, expiry time.Duration) cache.DocumentCache {
	return cache.NewInstrumented(&redisDocumentCache{
		pool:   pool,
		expiry: expiry,
	})
}

func newPool(c Redis) *redis.Pool {
	dialOpts := []redis.DialOption{
		redis.DialConnectTimeout(c.DialTimeout),
		redis.DialReadTimeout(c.ReadTimeout),
		redis.DialWriteTimeout(c.WriteTimeout),
		redis.DialDatabase(c.DB),
	}
	if c.Password != "" {
		dialOpts = append(dialOpts, redis.DialPassword(c.Password))
	}

	return &redis.Pool{
		MaxIdle:     c.Pool.MaxIdle,
		MaxActive:   c.Pool.MaxActive,
		IdleTimeout: c.Pool.IdleTimeout,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", c.Addr, dialOpts...)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
		Wait: false, // if a connection is not available, proceed without cache.
	}
}

func (rdc *redisDocumentCache) Name() string {
	return "redis"
}

func (rdc *redisDocumentCache) Get(ctx context.Context, key cache.Key) ([]byte, error) {
	conn := rdc.pool.Get()
	defer conn.Close()

	payload, err := redis.Bytes(conn.Do("GET", rdc.redisKey(key)))
	if err == redis.ErrNil {
		return nil, cache.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (rdc *redisDocumentCache) Set(ctx context.Context, key cache.Key, payload []byte) error {
	conn := rdc.pool.Get()
	defer conn.Close()

	if rdc.expiry > 0 {
		_, err := conn.Do("SET", rdc.redisKey(key), payload, "PX", int64(rdc.expiry/time.Millisecond))
		return err
	}
	_, err := conn.Do("SET", rdc.redisKey(key), payload)
	return err
}

func (rdc *redisDocumentCache) Invalidate(ctx context.Context, key cache.Key) error {
	conn := rdc.pool.Get()
	defer conn.Close()

	_, err := conn.Do("DEL", rdc.redisKey(key))
	return err
}

func (rdc *redisDocumentCache) redisKey(key cache.Key) string {
	if key.Collection == "" && key.ID == "" {
		return fmt.Sprintf("dms::schema::%s", key.Database)
	}
	return fmt.Sprintf("dms::docs::%s::%s::%s", key.Database, key.Collection, key.ID)
}
