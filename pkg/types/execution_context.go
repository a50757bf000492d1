package types

// ExecutionContext contains the context needed to fetch one target
type ExecutionContext struct {
	Target Target
	Logger Logger
	JobDir string
}
