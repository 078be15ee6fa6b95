// Package cache provides Valkey (Redis-compatible) client initialization
// and the category view cache used by the HTTP layer.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache calls sit on the read path of every category request, so a slow
// Valkey degrades to a miss instead of holding the request.
const (
	dialTimeout = 2 * time.Second
	ioTimeout   = 250 * time.Millisecond
)

// ConnectValkey creates a Valkey client and verifies the connection with a
// ping bounded by ctx.
func ConnectValkey(ctx context.Context, host, port, password string) (*redis.Client, error) {
	addr := net.JoinHostPort(host, port)
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping %s: %w", addr, err)
	}

	slog.Info("valkey connected", "addr", addr)
	return client, nil
}
