package agents

import (
	"errors"
	"time"
)

var (
	ErrNotFound         = errors.New("agent not found")
	ErrCapacityExceeded = errors.New("agent at maximum capacity")
)

type Level string

const (
	LevelJunior   Level = "junior"
	LevelStandard Level = "standard"
	LevelSenior   Level = "senior"
	LevelManager  Level = "manager"
	LevelLead     Level = "lead"
)

var levelRank = map[Level]int{
	LevelJunior:   1,
	LevelStandard: 2,
	LevelSenior:   3,
	LevelManager:  4,
	LevelLead:     5,
}

func (l Level) Rank() int {
	return levelRank[l]
}

// AtLeast reports whether l sits at or above min in the level hierarchy.
// Unknown levels rank below junior and never satisfy a floor.
func (l Level) AtLeast(min Level) bool {
	if min == "" {
		return true
	}
	return levelRank[l] >= levelRank[min]
}

type Status string

const (
	StatusAvailable   Status = "available"
	StatusBusy        Status = "busy"
	StatusOutOfOffice Status = "out_of_office"
)

// Performance is the rolling record of an agent's outcomes, updated by an
// exponential moving average so a single resolution nudges rather than
// rewrites the history.
type Performance struct {
	SuccessRate        float64
	EscalationRate     float64
	Satisfaction       float64 // 0..5
	AvgResolutionHours float64
}

const emaAlpha = 0.1

// RecordResolution folds one completed assignment into the record.
func (p *Performance) RecordResolution(success bool, resolutionHours float64) {
	outcome := 0.0
	if success {
		outcome = 1.0
	}
	p.SuccessRate = (1-emaAlpha)*p.SuccessRate + emaAlpha*outcome
	p.AvgResolutionHours = (1-emaAlpha)*p.AvgResolutionHours + emaAlpha*resolutionHours
}

// RecordEscalation folds an escalation away from this agent into the record.
func (p *Performance) RecordEscalation() {
	p.EscalationRate = (1-emaAlpha)*p.EscalationRate + emaAlpha*1.0
}

// Window is a daily working-hours span in the agent's timezone, expressed
// as hours on a 24h clock. Zero value means the whole day.
type Window struct {
	StartHour int
	EndHour   int
}

func (w Window) Contains(t time.Time) bool {
	if w.StartHour == 0 && w.EndHour == 0 {
		return true
	}
	h := t.Hour()
	return h >= w.StartHour && h < w.EndHour
}

type Agent struct {
	ID            string
	Name          string
	Level         Level
	Specialties   []string
	Timezone      string
	Availability  map[time.Weekday]Window
	MaxConcurrent int
	Workload      int
	Status        Status
	Performance   Performance
}

// WithinWorkingHours checks the agent's availability window for the given
// instant. An agent with no declared windows is treated as always on.
func (a Agent) WithinWorkingHours(now time.Time) bool {
	if len(a.Availability) == 0 {
		return true
	}
	w, ok := a.Availability[now.Weekday()]
	if !ok {
		return false
	}
	return w.Contains(now)
}

// HasSpecialty does a case-exact membership check against the specialty set.
func (a Agent) HasSpecialty(s string) bool {
	for _, sp := range a.Specialties {
		if sp == s {
			return true
		}
	}
	return false
}

func (a Agent) Utilization() float64 {
	if a.MaxConcurrent <= 0 {
		return 1
	}
	return float64(a.Workload) / float64(a.MaxConcurrent)
}
