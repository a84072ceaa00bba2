// Package llm binds external chat providers behind a single Backend contract.
package llm

import "context"

// Backend is the contract every provider adapter satisfies.
// Ask sends one turn to the provider in a session whose system instruction
// was fixed when the adapter was built, and returns the reply text.
type Backend interface {
	Ask(ctx context.Context, prompt string) (string, error)
	Name() string
}
