package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	type query struct {
		Start string `json:"start"`
		Chart string `json:"chart"`
	}

	a, err := Key("grpc:dashboard", query{Start: "2024-04-01", Chart: "period"})
	require.NoError(t, err)
	b, err := Key("grpc:dashboard", query{Start: "2024-04-01", Chart: "period"})
	require.NoError(t, err)
	c, err := Key("grpc:dashboard", query{Start: "2024-04-02", Chart: "period"})
	require.NoError(t, err)
	d, err := Key("grpc:options", query{Start: "2024-04-01", Chart: "period"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
	assert.True(t, strings.HasPrefix(a, "grpc:dashboard:"))
	assert.Len(t, strings.TrimPrefix(a, "grpc:dashboard:"), 32)

	_, err = Key("x", make(chan int))
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var n Noop

	require.NoError(t, n.Set(ctx, "k", 1, time.Minute))

	var out int
	err := n.Get(ctx, "k", &out)
	assert.True(t, IsMiss(err))
	assert.NoError(t, n.Close())

	assert.False(t, IsMiss(errors.New("connection refused")))
}

func TestNewUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := New(ctx, WithAddress("127.0.0.1:1"))
	assert.Error(t, err)
}
