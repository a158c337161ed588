package ports

import "context"

// Completer is a language-model completion capability. Implementations send
// one system instruction and one user text and return the model's raw reply;
// parsing and schema validation belong to the caller.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userText string) (string, error)
}
