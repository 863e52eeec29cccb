package translator

import "context"

// Temperature is the fixed sampling temperature for translation requests.
// A low value keeps the output literal and the JSON shape stable.
const Temperature float32 = 0.3

type TranslateRequest struct {
	Text string `json:"text"`
}

type TranslateResponse struct {
	Translation string   `json:"translation"`
	Keywords    []string `json:"keywords"`
}

// CompletionRequest is a single system+user chat turn.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float32
	// JSONMode asks the provider to constrain the reply to a JSON object.
	JSONMode bool
}

// Completer sends one chat completion to an upstream model and returns the
// content of the first choice. Implementations must be safe for concurrent
// use and must not retry.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
