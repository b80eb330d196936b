package domain

import "time"

type JobPhase string

const (
	JobPhaseGenerating JobPhase = "generating"
	JobPhaseGenerated  JobPhase = "generated"
	JobPhaseRendering  JobPhase = "rendering"
	JobPhaseRendered   JobPhase = "rendered"
	JobPhaseFailed     JobPhase = "failed"
)

func (p JobPhase) String() string {
	return string(p)
}

func (p JobPhase) IsValid() bool {
	switch p {
	case JobPhaseGenerating, JobPhaseGenerated, JobPhaseRendering, JobPhaseRendered, JobPhaseFailed:
		return true
	default:
		return false
	}
}

// JobEvent is one progress update pushed to connected UI clients.
type JobEvent struct {
	JobID   string    `json:"job_id"`
	DeckID  string    `json:"deck_id,omitempty"`
	Phase   JobPhase  `json:"phase"`
	Backend string    `json:"backend,omitempty"`
	Detail  string    `json:"detail,omitempty"`
	At      time.Time `json:"at"`
}
