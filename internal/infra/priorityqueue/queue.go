// Package priorityqueue holds the in-memory assignment queue: a
// concurrency-safe max-priority structure keyed by (score, insertion
// sequence) so equal scores drain in arrival order.
package priorityqueue

import (
	"container/heap"
	"fmt"
	"sync"
	"time"

	"riskrouter/internal/domain/tickets"
)

// Entry is a queued ticket. It is owned exclusively by the queue until
// dequeued.
type Entry struct {
	Ticket     tickets.Ticket
	Score      float64
	Seq        uint64
	EnqueuedAt time.Time
}

// Receipt describes where an enqueued ticket landed.
type Receipt struct {
	Position      int
	QueueLength   int
	EstimatedWait string
}

type Health string

const (
	HealthGood       Health = "good"
	HealthBusy       Health = "busy"
	HealthOverloaded Health = "overloaded"
)

// Status is a point-in-time view of the queue for operators.
type Status struct {
	Length       int
	Urgent       int
	High         int
	Medium       int
	Low          int
	AverageScore float64
	AverageWait  string
	Health       Health
}

type Queue struct {
	mu      sync.Mutex
	entries entryHeap
	seq     uint64
	now     func() time.Time

	// rolling analytics over everything that has passed through
	processed       int
	totalWaitMinute float64
	distUrgent      int
	distHigh        int
	distMedium      int
	distLow         int
	totalSeen       int
}

func New(now func() time.Time) *Queue {
	if now == nil {
		now = time.Now
	}
	return &Queue{now: now}
}

// Enqueue inserts the scored ticket and reports its current position and an
// estimated wait. O(log n).
func (q *Queue) Enqueue(t tickets.Ticket, score float64) Receipt {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.seq++
	entry := &Entry{Ticket: t, Score: score, Seq: q.seq, EnqueuedAt: q.now()}
	heap.Push(&q.entries, entry)
	q.totalSeen++
	q.bumpDistribution(score)

	return Receipt{
		Position:      q.positionLocked(entry.Seq),
		QueueLength:   len(q.entries),
		EstimatedWait: estimateWait(score, len(q.entries)),
	}
}

// DequeueHighest pops the highest-score entry, FIFO among equals. Returns
// ok=false immediately when the queue is empty; it never blocks.
func (q *Queue) DequeueHighest() (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return Entry{}, false
	}
	entry := heap.Pop(&q.entries).(*Entry)
	q.processed++
	q.totalWaitMinute += q.now().Sub(entry.EnqueuedAt).Minutes()
	return *entry, true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Status buckets the queued scores and classifies overall queue health.
func (q *Queue) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()

	st := Status{Length: len(q.entries)}
	var total float64
	for _, e := range q.entries {
		total += e.Score
		switch {
		case e.Score >= 90:
			st.Urgent++
		case e.Score >= 75:
			st.High++
		case e.Score >= 60:
			st.Medium++
		default:
			st.Low++
		}
	}
	if st.Length > 0 {
		st.AverageScore = total / float64(st.Length)
	}
	st.AverageWait = estimateWait(st.AverageScore, st.Length)
	switch {
	case st.Length < 10:
		st.Health = HealthGood
	case st.Length < 20:
		st.Health = HealthBusy
	default:
		st.Health = HealthOverloaded
	}
	return st
}

// Analytics reports throughput counters accumulated since startup.
type Analytics struct {
	Processed            int
	CurrentLength        int
	AvgAssignmentMinutes float64
	Urgent, High         int
	Medium, Low          int
	Efficiency           float64
}

func (q *Queue) Analytics() Analytics {
	q.mu.Lock()
	defer q.mu.Unlock()

	a := Analytics{
		Processed:     q.processed,
		CurrentLength: len(q.entries),
		Urgent:        q.distUrgent,
		High:          q.distHigh,
		Medium:        q.distMedium,
		Low:           q.distLow,
	}
	if q.processed > 0 {
		a.AvgAssignmentMinutes = q.totalWaitMinute / float64(q.processed)
	}
	if q.totalSeen > 0 {
		a.Efficiency = float64(q.processed) / float64(q.totalSeen) * 100
	}
	return a
}

func (q *Queue) bumpDistribution(score float64) {
	switch {
	case score >= 90:
		q.distUrgent++
	case score >= 75:
		q.distHigh++
	case score >= 60:
		q.distMedium++
	default:
		q.distLow++
	}
}

// positionLocked is a linear scan; positions are informational only and the
// queue stays small relative to its lock hold times.
func (q *Queue) positionLocked(seq uint64) int {
	pos := 1
	var target *Entry
	for _, e := range q.entries {
		if e.Seq == seq {
			target = e
			break
		}
	}
	if target == nil {
		return -1
	}
	for _, e := range q.entries {
		if e.Seq == seq {
			continue
		}
		if e.Score > target.Score || (e.Score == target.Score && e.Seq < target.Seq) {
			pos++
		}
	}
	return pos
}

func estimateWait(score float64, queueLen int) string {
	var minutes int
	switch {
	case score >= 90:
		minutes = min(15, queueLen*2)
	case score >= 80:
		minutes = min(30, queueLen*3)
	case score >= 70:
		minutes = min(60, queueLen*5)
	default:
		minutes = min(120, queueLen*8)
	}
	if minutes < 60 {
		return fmt.Sprintf("%d minutes", minutes)
	}
	if minutes%60 == 0 {
		return fmt.Sprintf("%dh", minutes/60)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// entryHeap orders by score descending, then sequence ascending, so the
// heap root is always the oldest entry among the highest scores.
type entryHeap []*Entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score > h[j].Score
	}
	return h[i].Seq < h[j].Seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(*Entry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
