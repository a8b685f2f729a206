package suppression

import (
	"context"
	"testing"
	"time"

	"riskrouter/internal/domain/tickets"
)

type clock struct {
	now time.Time
}

func (c *clock) fn() func() time.Time {
	return func() time.Time { return c.now }
}

func (c *clock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newClock() *clock {
	return &clock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func TestSuppressAfterWindowCount(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	s := NewMemory(c.fn())

	// Non-critical type, spaced past the minimum gap.
	for i := 0; i < 5; i++ {
		suppressed, err := s.ShouldSuppress(ctx, "cust-1", tickets.RiskEngagement)
		if err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
		if suppressed {
			t.Fatalf("alert %d suppressed before reaching window max", i)
		}
		if err := s.Record(ctx, "cust-1", tickets.RiskEngagement); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		c.advance(3 * time.Hour)
	}

	// 5 in the last 24h (the first has aged 15h, still inside).
	suppressed, _ := s.ShouldSuppress(ctx, "cust-1", tickets.RiskEngagement)
	if !suppressed {
		t.Fatal("sixth alert within 24h window should be suppressed")
	}
}

func TestSuppressWithinMinSpacing(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	s := NewMemory(c.fn())

	s.Record(ctx, "cust-1", tickets.RiskEngagement)
	c.advance(30 * time.Minute)

	suppressed, _ := s.ShouldSuppress(ctx, "cust-1", tickets.RiskEngagement)
	if !suppressed {
		t.Fatal("alert 30m after the last should be suppressed")
	}

	c.advance(2 * time.Hour)
	suppressed, _ = s.ShouldSuppress(ctx, "cust-1", tickets.RiskEngagement)
	if suppressed {
		t.Fatal("alert past the spacing gap should pass")
	}
}

func TestCriticalTypesExemptEarly(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	s := NewMemory(c.fn())

	// Two churn alerts back to back: critical types bypass spacing while the
	// 24h count is under the floor.
	for i := 0; i < 2; i++ {
		suppressed, _ := s.ShouldSuppress(ctx, "cust-1", tickets.RiskChurn)
		if suppressed {
			t.Fatalf("churn alert %d suppressed below the critical floor", i)
		}
		s.Record(ctx, "cust-1", tickets.RiskChurn)
		c.advance(time.Minute)
	}

	// Third recent churn alert: floor reached, spacing now applies.
	s.Record(ctx, "cust-1", tickets.RiskChurn)
	c.advance(time.Minute)
	suppressed, _ := s.ShouldSuppress(ctx, "cust-1", tickets.RiskChurn)
	if !suppressed {
		t.Fatal("churn alert past the floor should fall back to normal rules")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	s := NewMemory(c.fn())

	s.Record(ctx, "cust-1", tickets.RiskEngagement)
	c.advance(time.Minute)

	// Same customer, different type.
	suppressed, _ := s.ShouldSuppress(ctx, "cust-1", tickets.RiskUsageDecline)
	if suppressed {
		t.Fatal("different alert type should not share the window")
	}
	// Same type, different customer.
	suppressed, _ = s.ShouldSuppress(ctx, "cust-2", tickets.RiskEngagement)
	if suppressed {
		t.Fatal("different customer should not share the window")
	}
}

func TestWindowExpiry(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	s := NewMemory(c.fn())

	for i := 0; i < 5; i++ {
		s.Record(ctx, "cust-1", tickets.RiskEngagement)
		c.advance(time.Minute)
	}
	suppressed, _ := s.ShouldSuppress(ctx, "cust-1", tickets.RiskEngagement)
	if !suppressed {
		t.Fatal("five recent alerts should suppress")
	}

	c.advance(25 * time.Hour)
	suppressed, _ = s.ShouldSuppress(ctx, "cust-1", tickets.RiskEngagement)
	if suppressed {
		t.Fatal("alerts outside the 24h window should not suppress")
	}
}

func TestHistoryTrimmed(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	store := NewMemory(c.fn()).(*memoryStore)

	for i := 0; i < 25; i++ {
		store.Record(ctx, "cust-1", tickets.RiskEngagement)
		c.advance(time.Minute)
	}
	if got := len(store.history[key("cust-1", tickets.RiskEngagement)]); got != keepPerKey {
		t.Fatalf("history length = %d, want %d", got, keepPerKey)
	}
}
