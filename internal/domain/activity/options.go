package activity

// DefaultListLimit caps listings that do not set a limit.
const DefaultListLimit = 20

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	ActivityType *ActivityType
	Limit        int
	Offset       int
}
