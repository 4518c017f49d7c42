package store

// Phase is a step of the commit lifecycle.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseCommitting
	PhaseApplied
	PhaseNotifying
)

func (p Phase) String() string {
	switch p {
	case PhaseCommitting:
		return "committing"
	case PhaseApplied:
		return "applied"
	case PhaseNotifying:
		return "notifying"
	default:
		return "idle"
	}
}
