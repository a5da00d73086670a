package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oversea-labs/oversea"
)

func TestJobStore_CreateGet(t *testing.T) {
	store := NewJobStore()

	job := store.Create("https://detail.1688.com/offer/1.html", "en")
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, JobQueued, job.Status)
	assert.Equal(t, "en", job.TargetLang)
	assert.False(t, job.CreatedAt.IsZero())

	got, ok := store.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, job.ID, got.ID)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestJobStore_GetReturnsSnapshot(t *testing.T) {
	store := NewJobStore()
	job := store.Create("https://example.com", "en")

	snapshot, _ := store.Get(job.ID)
	snapshot.Status = JobFailed

	current, _ := store.Get(job.ID)
	assert.Equal(t, JobQueued, current.Status, "mutating a snapshot must not affect the store")
}

func TestJobStore_Update(t *testing.T) {
	store := NewJobStore()
	job := store.Create("https://example.com", "en")
	created := job.UpdatedAt

	time.Sleep(time.Millisecond)
	store.Update(job.ID, func(j *Job) { j.Status = JobExtracting })

	got, _ := store.Get(job.ID)
	assert.Equal(t, JobExtracting, got.Status)
	assert.True(t, got.UpdatedAt.After(created))

	// Updating an unknown job is a no-op.
	store.Update("missing", func(j *Job) { j.Status = JobFailed })
}

func TestJobStore_List(t *testing.T) {
	store := NewJobStore()
	first := store.Create("https://example.com/1", "en")
	time.Sleep(time.Millisecond)
	second := store.Create("https://example.com/2", "en")

	jobs := store.List()
	require.Len(t, jobs, 2)
	assert.Equal(t, second.ID, jobs[0].ID, "newest job first")
	assert.Equal(t, first.ID, jobs[1].ID)
}

func TestJobStore_Subscribe(t *testing.T) {
	store := NewJobStore()
	job := store.Create("https://example.com", "en")

	events, unsubscribe := store.Subscribe(job.ID)
	defer unsubscribe()

	store.Update(job.ID, func(j *Job) { j.Status = JobExtracting })
	store.Update(job.ID, func(j *Job) { j.Status = JobCompleted })

	event := <-events
	assert.Equal(t, JobExtracting, event.Status)
	assert.Equal(t, job.ID, event.JobID)

	event = <-events
	assert.Equal(t, JobCompleted, event.Status)
}

func TestJobStore_Unsubscribe(t *testing.T) {
	store := NewJobStore()
	job := store.Create("https://example.com", "en")

	events, unsubscribe := store.Subscribe(job.ID)
	unsubscribe()

	store.Update(job.ID, func(j *Job) { j.Status = JobExtracting })

	select {
	case _, open := <-events:
		if open {
			t.Error("unsubscribed channel should receive no events")
		}
	default:
	}
}

func TestJobStore_PublishProgress(t *testing.T) {
	store := NewJobStore()
	job := store.Create("https://example.com", "en")

	events, unsubscribe := store.Subscribe(job.ID)
	defer unsubscribe()

	store.PublishProgress(job.ID, JobTranslating, oversea.ProgressEvent{
		Stage:   oversea.StageTranslating,
		Status:  oversea.ProgressInProgress,
		Percent: 50,
	})

	event := <-events
	assert.Equal(t, JobTranslating, event.Status)
	require.NotNil(t, event.Progress)
	assert.Equal(t, 50.0, event.Progress.Percent)

	// The latest progress is recorded on the job for polling callers,
	// without moving its status.
	got, _ := store.Get(job.ID)
	assert.Equal(t, JobQueued, got.Status)
	require.NotNil(t, got.Progress)
	assert.Equal(t, 50.0, got.Progress.Percent)
}

func TestJobStore_TerminalEventClosesSubscribers(t *testing.T) {
	store := NewJobStore()
	job := store.Create("https://example.com", "en")

	events, unsubscribe := store.Subscribe(job.ID)
	defer unsubscribe()

	store.Update(job.ID, func(j *Job) { j.Status = JobCompleted })

	event, open := <-events
	require.True(t, open)
	assert.Equal(t, JobCompleted, event.Status)

	_, open = <-events
	assert.False(t, open, "channel must be closed after the terminal event")
}

func TestJobStore_TerminalReachesFullSubscriber(t *testing.T) {
	store := NewJobStore()
	job := store.Create("https://example.com", "en")

	events, unsubscribe := store.Subscribe(job.ID)
	defer unsubscribe()

	// Overflow the subscriber buffer so the terminal event itself is
	// dropped, then verify the stream still ends.
	for i := 0; i < 100; i++ {
		store.PublishProgress(job.ID, JobTranslating, oversea.ProgressEvent{Pass: i})
	}
	store.Update(job.ID, func(j *Job) { j.Status = JobCompleted })

	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, open := <-events:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("stream never ended after the terminal status")
		}
	}
}

func TestJobStore_SlowSubscriberDropsEvents(t *testing.T) {
	store := NewJobStore()
	job := store.Create("https://example.com", "en")

	_, unsubscribe := store.Subscribe(job.ID)
	defer unsubscribe()

	// Far more events than the channel buffers; the publisher must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			store.Update(job.ID, func(j *Job) { j.Status = JobTranslating })
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}
}

func TestNewJobID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := newJobID()
		assert.Len(t, id, 32)
		assert.False(t, seen[id], "job IDs should be unique")
		seen[id] = true
	}
}
