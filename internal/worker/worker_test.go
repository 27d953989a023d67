package worker

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/echoscribe/backend/pkg/queue"
)

func TestRunStopsPromptlyOnCancel(t *testing.T) {
	// Unreachable address: every dequeue attempt fails, exercising the
	// error branch of the loop rather than the top-of-loop select.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer rdb.Close()
	processor := NewArchiveProcessor(nil, queue.NewQueue(rdb, nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		processor.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
	assert.NotNil(t, ctx.Err())
}
