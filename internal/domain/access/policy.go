package access

import (
	"time"

	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/users"
)

type Policy struct {
	State        AccessState
	EditorMode   EditorMode
	Capabilities []string
	Limits       *BuilderLimits
}

func ComputePolicy(now time.Time, u users.User) Policy {
	state := ComputeEffectiveAccessState(now, u)

	return Policy{
		State:        state,
		EditorMode:   EditorModeFromState(state),
		Capabilities: CapabilitiesFor(state, u.Plan),
		Limits:       LimitedRulesFor(state),
	}
}

// Can reports whether the policy includes a capability.
func (p Policy) Can(capability string) bool {
	for _, c := range p.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}
