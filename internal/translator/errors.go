package translator

import "errors"

// Kind classifies a translation failure. Every kind is reported to HTTP
// callers the same way; the distinction exists for logs.
type Kind int

const (
	KindUnknown Kind = iota
	// KindUpstream covers transport failures, timeouts and error statuses
	// returned by the provider.
	KindUpstream
	// KindPayload covers replies that arrived but could not be decoded into
	// a TranslateResponse.
	KindPayload
)

func (k Kind) String() string {
	switch k {
	case KindUpstream:
		return "upstream"
	case KindPayload:
		return "payload"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func upstreamError(err error) error {
	return &Error{Kind: KindUpstream, Err: err}
}

func payloadError(err error) error {
	return &Error{Kind: KindPayload, Err: err}
}

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindUnknown
}
