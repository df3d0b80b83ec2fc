package jobs

import (
	"time"
)

type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
)

// ItemResult is what happened to one entity in a batch run.
type ItemResult struct {
	ID      string  `json:"id"`
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`
}

type BatchResult struct {
	Job   string       `json:"job"`
	Total int          `json:"total"`
	Items []ItemResult `json:"items"`
}

func NewBatch(job string) *BatchResult {
	return &BatchResult{Job: job, Items: []ItemResult{}}
}

func (b *BatchResult) Add(item ItemResult) {
	b.Items = append(b.Items, item)
}

func (b *BatchResult) Count(outcome Outcome) int {
	n := 0
	for _, item := range b.Items {
		if item.Outcome == outcome {
			n++
		}
	}
	return n
}

func (b *BatchResult) Processed() int {
	return b.Count(OutcomeProcessed)
}

// Summary is the body returned to the scheduler.
type Summary struct {
	Job       string       `json:"job"`
	Processed int          `json:"processed"`
	Skipped   int          `json:"skipped"`
	Cancelled int          `json:"cancelled"`
	Failed    int          `json:"failed"`
	Total     int          `json:"total"`
	Items     []ItemResult `json:"items,omitempty"`
}

func (b *BatchResult) Summary() Summary {
	return Summary{
		Job:       b.Job,
		Processed: b.Count(OutcomeProcessed),
		Skipped:   b.Count(OutcomeSkipped),
		Cancelled: b.Count(OutcomeCancelled),
		Failed:    b.Count(OutcomeFailed),
		Total:     b.Total,
		Items:     b.Items,
	}
}

// Window is the scheduler-provided range of a reminder run. Both ends are
// inclusive.
type Window struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// LastHour is the window ending at now used by the hourly trigger.
func LastHour(now time.Time) Window {
	return Window{StartTime: now.Add(-time.Hour), EndTime: now}
}
