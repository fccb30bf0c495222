package config

// Redis backs the credential-endpoint rate limiter.  When the server is not
// reachable at startup the constructor returns nil and the limiter degrades
// to a pass-through.

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NewRedisClient instantiates a Redis client using environment variables:
//
//	REDIS_ADDR                 host:port (default localhost:6379)
//	REDIS_HOST + REDIS_PORT    take precedence over REDIS_ADDR when both set
//	REDIS_PASSWORD, REDIS_DB   credentials and database number
//	REDIS_TLS                  "true" or "1" to enable TLS
func NewRedisClient(logger zerolog.Logger) *redis.Client {
	addr := envStr("REDIS_ADDR", "localhost:6379")
	if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
		addr = host + ":" + port
	}
	dbNum := 0
	if n, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil {
		dbNum = n
	}
	var tlsConf *tls.Config
	if v := os.Getenv("REDIS_TLS"); strings.EqualFold(v, "true") || v == "1" {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      addr,
		Password:  os.Getenv("REDIS_PASSWORD"),
		DB:        dbNum,
		TLSConfig: tlsConf,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", addr).Msg("redis unavailable, rate limiting disabled")
		_ = client.Close()
		return nil
	}
	logger.Info().Str("addr", addr).Int("db", dbNum).Msg("redis connected")
	return client
}
