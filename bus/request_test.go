package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/liftkit/errors"
)

func TestRequestSingleFlight(t *testing.T) {
	local, _ := Split("main", quiet()...)
	entered := make(chan struct{})
	release := make(chan struct{})

	req := NewRequest(local, func(_ context.Context, in int, link *Link) (int, error) {
		assert.Same(t, local, link)
		if in == 1 {
			close(entered)
			<-release
		}
		return in * 10, nil
	})
	assert.Equal(t, "main:Link", req.Key())

	first := make(chan int, 1)
	go func() {
		out, err := req.Fetch(context.Background(), 1)
		assert.NoError(t, err)
		first <- out
	}()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := req.Fetch(ctx, 2)
	assert.True(t, errors.HasCode(err, errors.ErrCodeCancelled), "second fetch must wait, got %v", err)

	second := make(chan int, 1)
	go func() {
		out, err := req.Fetch(context.Background(), 3)
		assert.NoError(t, err)
		second <- out
	}()
	select {
	case <-second:
		t.Fatal("fetch ran while another was in flight")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	assert.Equal(t, 10, <-first)
	assert.Equal(t, 30, <-second)
}

func TestRequestAskFunc(t *testing.T) {
	ctx := context.Background()
	local, remote := Split("main", quiet()...)
	serve(t, ctx, remote, func(q Message) (Message, error) { return q + "!", nil })
	t.Cleanup(remote.Exit)

	req := NewRequest(local, AskFunc[Message, Message]())
	out, err := req.Fetch(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, Message("go!"), out)
}
