package tools

import "context"

// Tool is a capability the language model can invoke by name.
type Tool interface {
	Name() string
	Description() string
	// Parameters is the JSON schema of the arguments object.
	Parameters() any
	// Run executes the tool on a JSON arguments object and returns text
	// for the model. Domain failures are phrased in the result; an error
	// means the tool could not run at all.
	Run(ctx context.Context, args string) (string, error)
}
