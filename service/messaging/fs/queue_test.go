package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/internal/clock"
)

type payload struct {
	ObligationID string `json:"obligationId"`
	Action       string `json:"action"`
}

func newQueue(t *testing.T, maxRetries int) (*Queue[payload], string) {
	dir := t.TempDir()
	config := DefaultConfig(dir)
	config.MaxRetries = maxRetries
	config.RetryDelay = 0
	queue, err := NewQueue[payload](afs.New(), config)
	require.NoError(t, err)
	return queue, dir
}

func TestNewQueue_CreatesFolders(t *testing.T) {
	_, dir := newQueue(t, 1)
	for _, folder := range []string{pendingFolder, processingFolder, completedFolder, dlqFolder} {
		info, err := os.Stat(filepath.Join(dir, folder))
		require.NoError(t, err, folder)
		assert.True(t, info.IsDir())
	}
}

func TestNewQueue_EmptyBaseURL(t *testing.T) {
	_, err := NewQueue[payload](afs.New(), Config{})
	assert.Error(t, err)
}

func TestQueue_FIFOAndAck(t *testing.T) {
	queue, dir := newQueue(t, 1)
	ctx := context.Background()
	for _, id := range []string{"o1", "o2", "o3"} {
		require.NoError(t, queue.Publish(ctx, &payload{ObligationID: id, Action: "comment"}))
		time.Sleep(time.Millisecond)
	}
	size, err := queue.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, size)

	for _, expect := range []string{"o1", "o2", "o3"} {
		msg, err := queue.Consume(ctx)
		require.NoError(t, err)
		require.NotNil(t, msg)
		assert.Equal(t, expect, msg.T().ObligationID)
		require.NoError(t, msg.Ack())
		assert.Error(t, msg.Ack())
	}

	msg, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Nil(t, msg)

	completed, err := os.ReadDir(filepath.Join(dir, completedFolder))
	require.NoError(t, err)
	assert.Len(t, completed, 3)
}

func TestQueue_NackRetriesThenDeadLetters(t *testing.T) {
	queue, _ := newQueue(t, 1)
	ctx := context.Background()
	require.NoError(t, queue.Publish(ctx, &payload{ObligationID: "o1"}))

	for attempt := 0; attempt <= 1; attempt++ {
		msg, err := queue.Consume(ctx)
		require.NoError(t, err)
		require.NotNil(t, msg)
		assert.Equal(t, attempt, msg.Attempts())
		require.NoError(t, msg.Nack(errors.New("listener failed")))
	}

	msg, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Nil(t, msg)
	dlq, err := queue.DLQSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, dlq)
}

func TestQueue_RetryNotDueYet(t *testing.T) {
	dir := t.TempDir()
	config := DefaultConfig(dir)
	config.RetryDelay = time.Hour
	queue, err := NewQueue[payload](afs.New(), config)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, queue.Publish(ctx, &payload{ObligationID: "o1"}))
	msg, err := queue.Consume(ctx)
	require.NoError(t, err)
	require.NoError(t, msg.Nack(nil))

	msg, err = queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Nil(t, msg)

	defer func() { clock.NowFunc = time.Now }()
	clock.NowFunc = func() time.Time { return time.Now().Add(2 * time.Hour) }
	msg, err = queue.Consume(ctx)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, 1, msg.Attempts())
}

func TestQueue_MalformedMessageIsDeadLettered(t *testing.T) {
	queue, dir := newQueue(t, 1)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(filepath.Join(dir, pendingFolder, "00000000000000000001-bad.json"), []byte("{"), 0o644))

	_, err := queue.Consume(ctx)
	assert.Error(t, err)
	dlq, err := queue.DLQSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, dlq)
}
