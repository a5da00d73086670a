package server

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/oversea-labs/oversea"
)

// JobStatus tracks a job through its lifecycle. Jobs move strictly forward:
// queued, extracting, extracted, translating, then completed or failed.
type JobStatus string

const (
	JobQueued      JobStatus = "queued"
	JobExtracting  JobStatus = "extracting"
	JobExtracted   JobStatus = "extracted"
	JobTranslating JobStatus = "translating"
	JobCompleted   JobStatus = "completed"
	JobFailed      JobStatus = "failed"
)

// Job is one extract-and-translate run for a product URL.
type Job struct {
	ID         string                     `json:"id"`
	URL        string                     `json:"url"`
	Status     JobStatus                  `json:"status"`
	TargetLang string                     `json:"target_lang"`
	Error      string                     `json:"error,omitempty"`
	Extracted  *oversea.Document          `json:"extracted,omitempty"`
	Translated *oversea.Document          `json:"translated,omitempty"`
	Report     *oversea.TranslationReport `json:"report,omitempty"`
	Progress   *oversea.ProgressEvent     `json:"progress,omitempty"`
	CreatedAt  time.Time                  `json:"created_at"`
	UpdatedAt  time.Time                  `json:"updated_at"`
}

// JobEvent is one entry on a job's event stream: either a status change or
// a translation progress update.
type JobEvent struct {
	JobID    string                 `json:"job_id"`
	Status   JobStatus              `json:"status"`
	Progress *oversea.ProgressEvent `json:"progress,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// JobStore keeps jobs in memory and fans events out to subscribers.
type JobStore struct {
	mu          sync.RWMutex
	jobs        map[string]*Job
	subscribers map[string][]chan JobEvent
}

// NewJobStore creates an empty store.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs:        make(map[string]*Job),
		subscribers: make(map[string][]chan JobEvent),
	}
}

// Create registers a new queued job for the URL and returns it.
func (s *JobStore) Create(url, targetLang string) *Job {
	now := time.Now().UTC()
	job := &Job{
		ID:         newJobID(),
		URL:        url,
		Status:     JobQueued,
		TargetLang: targetLang,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
	return job
}

// Get returns a snapshot of the job, or false if it does not exist.
func (s *JobStore) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// List returns snapshots of all jobs, newest first.
func (s *JobStore) List() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobs := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, *job)
	}
	for i := 0; i < len(jobs); i++ {
		for j := i + 1; j < len(jobs); j++ {
			if jobs[j].CreatedAt.After(jobs[i].CreatedAt) {
				jobs[i], jobs[j] = jobs[j], jobs[i]
			}
		}
	}
	return jobs
}

// Update applies fn to the job under the store lock and publishes the
// resulting status to subscribers.
func (s *JobStore) Update(id string, fn func(*Job)) {
	s.mu.Lock()
	job, ok := s.jobs[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	fn(job)
	job.UpdatedAt = time.Now().UTC()
	event := JobEvent{JobID: job.ID, Status: job.Status, Error: job.Error}
	s.mu.Unlock()

	s.publish(id, event)
}

// PublishProgress records the latest translation progress on the job, so
// polling callers see it, and sends it to the job's subscribers. The job's
// status is left alone.
func (s *JobStore) PublishProgress(id string, status JobStatus, progress oversea.ProgressEvent) {
	s.mu.Lock()
	if job, ok := s.jobs[id]; ok {
		job.Progress = &progress
		job.UpdatedAt = time.Now().UTC()
	}
	s.mu.Unlock()

	s.publish(id, JobEvent{JobID: id, Status: status, Progress: &progress})
}

// Subscribe returns a channel of events for the job plus an unsubscribe
// function. Slow subscribers drop events rather than blocking the job.
func (s *JobStore) Subscribe(id string) (<-chan JobEvent, func()) {
	ch := make(chan JobEvent, 64)

	s.mu.Lock()
	s.subscribers[id] = append(s.subscribers[id], ch)
	s.mu.Unlock()

	unsubscribe := func() {
		s.mu.Lock()
		subs := s.subscribers[id]
		for i, sub := range subs {
			if sub == ch {
				s.subscribers[id] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
	}
	return ch, unsubscribe
}

// publish fans an event out to the job's subscribers. Non-terminal events
// are dropped for subscribers whose buffers are full; a terminal status
// event additionally closes every subscriber channel, so streams always
// observe the end of a job even when its last event was dropped.
func (s *JobStore) publish(id string, event JobEvent) {
	terminal := event.Progress == nil &&
		(event.Status == JobCompleted || event.Status == JobFailed)

	s.mu.Lock()
	subs := make([]chan JobEvent, len(s.subscribers[id]))
	copy(subs, s.subscribers[id])
	if terminal {
		delete(s.subscribers, id)
	}
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
		}
		if terminal {
			close(ch)
		}
	}
}

func newJobID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		return hex.EncodeToString([]byte(time.Now().String()))[:32]
	}
	return hex.EncodeToString(buf)
}
