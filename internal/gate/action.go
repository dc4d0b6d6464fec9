package gate

// Action describes the kind of operation a user wants to perform.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"
)

// ReadOnly reports whether the action has no side effects.
func (a Action) ReadOnly() bool {
	return a == ActionView || a == ActionList
}
