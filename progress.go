package oversea

// Pipeline stages reported through progress events.
const (
	StageExtracting  = "extracting"
	StageTranslating = "translating"
)

// ProgressStatus is the phase a progress event reports.
type ProgressStatus string

const (
	// ProgressStarted is emitted once before the first batch.
	ProgressStarted ProgressStatus = "started"
	// ProgressInProgress is emitted after every batch round-trip.
	ProgressInProgress ProgressStatus = "in_progress"
	// ProgressPassCompleted is emitted after every full pass.
	ProgressPassCompleted ProgressStatus = "pass_completed"
	// ProgressCompleted is emitted once after all leaves resolve.
	ProgressCompleted ProgressStatus = "completed"
)

// ProgressEvent describes translation progress at a point in time.
type ProgressEvent struct {
	Stage          string         `json:"stage"`
	Status         ProgressStatus `json:"status"`
	Pass           int            `json:"pass,omitempty"`
	Chunk          int            `json:"chunk,omitempty"`
	ChunkTotal     int            `json:"chunk_total,omitempty"`
	TotalItems     int            `json:"total_items"`
	ProcessedItems int            `json:"processed_items"`
	Percent        float64        `json:"percent"`
}

// ProgressFunc receives progress events. It is invoked synchronously by the
// coordinator after each batch and each pass; implementations must not block
// for long.
type ProgressFunc func(ProgressEvent)

// ProgressStream decouples the coordinator from a progress consumer through
// a bounded channel. The producer side calls Callback() events in, then
// Close() once the pipeline returns; the consumer ranges over Events() until
// it is closed. Because Close happens after the final completed event has
// been sent, a consumer that drains to channel close is guaranteed to
// observe every event, in order, before the stream ends.
type ProgressStream struct {
	events chan ProgressEvent
}

// NewProgressStream creates a stream with the given buffer size (minimum 1).
func NewProgressStream(buffer int) *ProgressStream {
	if buffer < 1 {
		buffer = 16
	}
	return &ProgressStream{events: make(chan ProgressEvent, buffer)}
}

// Callback returns a ProgressFunc that feeds this stream. The send blocks if
// the buffer is full, so a consumer must be draining Events.
func (s *ProgressStream) Callback() ProgressFunc {
	return func(e ProgressEvent) {
		s.events <- e
	}
}

// Events returns the consumer side of the stream.
func (s *ProgressStream) Events() <-chan ProgressEvent {
	return s.events
}

// Close ends the stream. Call exactly once, after the last event was sent.
func (s *ProgressStream) Close() {
	close(s.events)
}

// percent computes processed/total as a percentage.
func percent(processed, total int) float64 {
	if total <= 0 {
		return 100
	}
	return float64(processed) / float64(total) * 100
}
