package agentmem

import (
	"errors"
	"math"
	"testing"

	"riskrouter/internal/domain/agents"
)

func seeded() *Registry {
	r := New()
	r.Seed([]agents.Agent{
		{ID: "a-1", Level: agents.LevelSenior, MaxConcurrent: 2, Status: agents.StatusAvailable},
		{ID: "a-2", Level: agents.LevelJunior, MaxConcurrent: 1, Status: agents.StatusAvailable},
	})
	return r
}

func TestReserveEnforcesCapacity(t *testing.T) {
	r := seeded()

	if err := r.Reserve("a-2"); err != nil {
		t.Fatalf("first reserve: %v", err)
	}
	if err := r.Reserve("a-2"); !errors.Is(err, agents.ErrCapacityExceeded) {
		t.Fatalf("got %v, want ErrCapacityExceeded", err)
	}
	a, _ := r.Get("a-2")
	if a.Workload != 1 {
		t.Fatalf("workload = %d, want 1 (failed reserve must not increment)", a.Workload)
	}
}

func TestReserveReleaseRoundTrip(t *testing.T) {
	r := seeded()
	for i := 0; i < 2; i++ {
		if err := r.Reserve("a-1"); err != nil {
			t.Fatalf("reserve %d: %v", i, err)
		}
	}
	if err := r.Reserve("a-1"); !errors.Is(err, agents.ErrCapacityExceeded) {
		t.Fatalf("got %v, want ErrCapacityExceeded", err)
	}
	if err := r.Release("a-1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := r.Reserve("a-1"); err != nil {
		t.Fatalf("reserve after release: %v", err)
	}
}

func TestReleaseFloorsAtZero(t *testing.T) {
	r := seeded()
	if err := r.Release("a-1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	a, _ := r.Get("a-1")
	if a.Workload != 0 {
		t.Fatalf("workload = %d, want 0", a.Workload)
	}
}

func TestUnknownAgent(t *testing.T) {
	r := seeded()
	if err := r.Reserve("ghost"); !errors.Is(err, agents.ErrNotFound) {
		t.Fatalf("reserve: got %v, want ErrNotFound", err)
	}
	if err := r.Release("ghost"); !errors.Is(err, agents.ErrNotFound) {
		t.Fatalf("release: got %v, want ErrNotFound", err)
	}
	if _, err := r.Get("ghost"); !errors.Is(err, agents.ErrNotFound) {
		t.Fatalf("get: got %v, want ErrNotFound", err)
	}
}

func TestSnapshotIsSortedCopy(t *testing.T) {
	r := New()
	r.Add(agents.Agent{ID: "z", MaxConcurrent: 1})
	r.Add(agents.Agent{ID: "a", MaxConcurrent: 1})

	snap := r.Snapshot()
	if len(snap) != 2 || snap[0].ID != "a" || snap[1].ID != "z" {
		t.Fatalf("snapshot not sorted: %+v", snap)
	}

	// Mutating the copy must not touch the pool.
	snap[0].Workload = 99
	a, _ := r.Get("a")
	if a.Workload != 0 {
		t.Fatal("snapshot mutation leaked into the pool")
	}
}

func TestRecordResolutionEMA(t *testing.T) {
	r := New()
	r.Add(agents.Agent{
		ID:            "a-1",
		MaxConcurrent: 1,
		Performance:   agents.Performance{SuccessRate: 0.80, AvgResolutionHours: 10},
	})

	if err := r.RecordResolution("a-1", true, 4); err != nil {
		t.Fatalf("record: %v", err)
	}
	a, _ := r.Get("a-1")
	if got, want := a.Performance.SuccessRate, 0.9*0.80+0.1*1.0; math.Abs(got-want) > 1e-9 {
		t.Fatalf("success rate = %v, want %v", got, want)
	}
	if got, want := a.Performance.AvgResolutionHours, 0.9*10+0.1*4; math.Abs(got-want) > 1e-9 {
		t.Fatalf("avg resolution = %v, want %v", got, want)
	}
}

func TestRecordEscalationEMA(t *testing.T) {
	r := New()
	r.Add(agents.Agent{ID: "a-1", MaxConcurrent: 1, Performance: agents.Performance{EscalationRate: 0.10}})

	if err := r.RecordEscalation("a-1"); err != nil {
		t.Fatalf("record: %v", err)
	}
	a, _ := r.Get("a-1")
	if got, want := a.Performance.EscalationRate, 0.9*0.10+0.1*1.0; math.Abs(got-want) > 1e-9 {
		t.Fatalf("escalation rate = %v, want %v", got, want)
	}
}
