// Package redis connects to Redis and backs the shared pending-registration store.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrParseURL = errors.New("failed to parse redis connection string")
	ErrNotReady = errors.New("redis did not become ready within the given time period")
)

// ConnectOptions controls the connection retry loop.
type ConnectOptions struct {
	RetryAttempts  int
	RetryInterval  time.Duration
	ConnectTimeout time.Duration
}

// DefaultConnectOptions retries three times, five seconds apart, within thirty seconds.
var DefaultConnectOptions = ConnectOptions{
	RetryAttempts:  3,
	RetryInterval:  5 * time.Second,
	ConnectTimeout: 30 * time.Second,
}

// Connect parses url and pings the server until it answers or the attempts run out.
func Connect(ctx context.Context, url string, opts ConnectOptions) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	connOpt, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrParseURL, err)
	}

	for i := 0; i < opts.RetryAttempts; i++ {
		client := redis.NewClient(connOpt)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrNotReady, ctx.Err())
		case <-time.After(opts.RetryInterval):
		}
	}
	return nil, ErrNotReady
}
