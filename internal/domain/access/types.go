package access

type AccessState string

const (
	AccessTrial   AccessState = "trial"
	AccessFull    AccessState = "full"
	AccessLimited AccessState = "limited"
	AccessLocked  AccessState = "locked"
)

type EditorMode string

const (
	EditorFull    EditorMode = "full"
	EditorLimited EditorMode = "limited"
)

func EditorModeFromState(state AccessState) EditorMode {
	switch state {
	case AccessTrial, AccessFull:
		return EditorFull
	default:
		return EditorLimited
	}
}
