package database

import (
	"context"
	"net"
	"testing"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestConnectRedis(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	host, port, err := net.SplitHostPort(m.Addr())
	require.NoError(t, err)

	client, err := ConnectRedis(context.Background(), host, port, "", 0)
	require.NoError(t, err)
	defer client.Close()
	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := m.Get("k")
	require.NoError(t, err)
	require.Equal(t, "v", got)
}

func TestConnectRedisFailsWhenUnreachable(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	host, port, _ := net.SplitHostPort(m.Addr())
	m.Close()

	_, err = ConnectRedis(context.Background(), host, port, "", 0)
	require.Error(t, err)
}

func TestConnectMinIORequiresEndpoint(t *testing.T) {
	_, err := ConnectMinIO(context.Background(), MinIOOptions{})
	require.Error(t, err)
}
