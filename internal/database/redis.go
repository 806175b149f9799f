package database

import (
	"context"
	"fmt"
	"net"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis creates a client and validates it with PING.
func ConnectRedis(ctx context.Context, host, port, password string, db int) (*redis.Client, error) {
	if port == "" {
		port = "6379"
	}
	client := redis.NewClient(&redis.Options{Addr: net.JoinHostPort(host, port), Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
