package redis

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/heavydata/dms/storage/cache/cachecheck"
)

var redisAddr string

func init() {
	flag.StringVar(&redisAddr, "test.dms.storage.cache.redis.addr", os.Getenv("REDIS_ADDR"), "configure the address of a test instance of redis")
}

// TestRedisDocumentCache exercises a live redis instance using the document
// cache suite.
func TestRedisDocumentCache(t *testing.T) {
	if redisAddr == "" {
		t.Skip("please set REDIS_ADDR to run redis tests")
	}

	pool := &redis.Pool{
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", redisAddr)
		},
		MaxIdle:     1,
		MaxActive:   2,
		IdleTimeout: 10 * time.Second,
		Wait:        false,
	}

	// flush the database before running the test suite.
	conn := pool.Get()
	if _, err := conn.Do("FLUSHDB"); err != nil {
		t.Fatalf("unexpected error flushing redis db: %v", err)
	}
	conn.Close()

	cachecheck.CheckDocumentCache(t, NewWithPool(pool, 0))
}
