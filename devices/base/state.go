package base

type State int32

const (
	Unbound State = iota
	Disabled
	Enabled
)

func (s State) String() string {
	switch s {
	case Unbound:
		return "unbound"
	case Disabled:
		return "disabled"
	case Enabled:
		return "enabled"
	}
	return "invalid"
}
