package access

// BuilderLimits restricts the visual editor for non-paying states.
type BuilderLimits struct {
	MaxStrategies    int
	LockPremiumNodes bool
	NoExport         bool
	ShowBranding     bool
}

// LimitedRulesFor returns the builder limits for an access state,
// or nil when the state is unrestricted.
func LimitedRulesFor(state AccessState) *BuilderLimits {
	if state != AccessLimited && state != AccessLocked {
		return nil
	}

	return &BuilderLimits{
		MaxStrategies:    3,
		LockPremiumNodes: true,
		NoExport:         true,
		ShowBranding:     true,
	}
}
