package queue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) (*Queue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewQueue(client, nil), mr
}

func TestEnqueueDequeueEmail(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.EnqueueEmail(ctx, EmailPayload{
		EmailType:      EmailContact,
		RecipientEmail: "support@buildforge.io",
		ReplyTo:        "ann@x.co",
		Subject:        "Hello",
		Body:           "Question",
	}))

	job, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, JobTypeEmail, job.Type)
	assert.Zero(t, job.Attempt)

	var p EmailPayload
	require.NoError(t, json.Unmarshal(job.Payload, &p))
	assert.Equal(t, "ann@x.co", p.ReplyTo)
	assert.Equal(t, EmailContact, p.EmailType)
}

func TestDequeueEmptyAndMalformed(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	_, err := mr.Lpush(QueueEmails, "{not json")
	require.NoError(t, err)
	job, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Nil(t, job)

	job, err = q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestRetryThenDeadLetter(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()
	job := &Job{ID: "j1", Type: JobTypeEmail}

	for i := 1; i < MaxRetries; i++ {
		require.NoError(t, q.Retry(ctx, job))
		assert.Equal(t, i, job.Attempt)
		got, err := q.Dequeue(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, i, got.Attempt)
	}
	require.NoError(t, q.Retry(ctx, job))

	dlq, err := mr.List(QueueDLQ)
	require.NoError(t, err)
	assert.Len(t, dlq, 1)
	assert.False(t, mr.Exists(QueueEmails))
}
