// Package translator turns a piece of text into an English translation plus
// keywords by asking an upstream chat-completion model for a JSON reply.
package translator

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/valpere/keytrans/internal/detector"
	"github.com/valpere/keytrans/internal/validator"
)

type Options struct {
	// Target is the output language. The zero value means English.
	Target   language.Tag
	JSONMode bool
	// LenientParse strips reasoning blocks, lead-in prose and a code fence
	// from the model reply before decoding. Off, such replies are errors.
	LenientParse bool
	// Detector, when set, names the source language in the prompt.
	Detector *detector.Detector
	// Validator, when set, logs a warning if the translation does not look
	// like the target language. It never fails a request.
	Validator *validator.Validator
}

// Service is immutable after construction and safe for concurrent use.
type Service struct {
	completer  Completer
	targetName string
	targetCode string
	jsonMode   bool
	lenient    bool
	detector   *detector.Detector
	validator  *validator.Validator
	logger     *zap.Logger
}

func NewService(completer Completer, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	target := opts.Target
	if target == language.Und {
		target = language.English
	}
	name := display.English.Languages().Name(target)
	if name == "" {
		name = target.String()
	}
	base, _ := target.Base()

	return &Service{
		completer:  completer,
		targetName: name,
		targetCode: base.String(),
		jsonMode:   opts.JSONMode,
		lenient:    opts.LenientParse,
		detector:   opts.Detector,
		validator:  opts.Validator,
		logger:     logger,
	}
}

// TargetName returns the English name of the output language.
func (s *Service) TargetName() string {
	return s.targetName
}

// Translate performs exactly one upstream call. Errors are *Error values
// carrying KindUpstream or KindPayload.
func (s *Service) Translate(ctx context.Context, text string) (*TranslateResponse, error) {
	var sourceName string
	if s.detector != nil {
		if name, ok := s.detector.DetectName(text); ok {
			sourceName = name
		}
	}

	content, err := s.completer.Complete(ctx, CompletionRequest{
		System:      systemPrompt,
		User:        buildPrompt(text, sourceName, s.targetName),
		Temperature: Temperature,
		JSONMode:    s.jsonMode,
	})
	if err != nil {
		if KindOf(err) == KindUnknown {
			err = upstreamError(err)
		}
		return nil, err
	}

	resp, err := decodePayload(content, s.lenient)
	if err != nil {
		s.logger.Debug("undecodable model reply", zap.String("content", content))
		return nil, err
	}

	if s.validator != nil {
		if verr := s.validator.Check(resp.Translation, s.targetCode); verr != nil {
			s.logger.Warn("translation failed language validation",
				zap.String("target", s.targetCode),
				zap.Error(verr),
			)
		}
	}

	return resp, nil
}
