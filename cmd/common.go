/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/valpere/keytrans/internal/config"
	"github.com/valpere/keytrans/internal/detector"
	"github.com/valpere/keytrans/internal/translator"
	"github.com/valpere/keytrans/internal/validator"
)

// newLogger builds a production zap logger writing JSON to stderr.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

// buildService wires the upstream client and the optional language tools into
// a translation service. Everything it returns is shared read-only by all
// requests.
func buildService(cfg *config.Config, logger *zap.Logger) *translator.Service {
	completer := translator.NewOpenAICompleter(
		cfg.Upstream.APIKey,
		cfg.Upstream.BaseURL,
		cfg.Upstream.Model,
		cfg.Upstream.Timeout,
	)

	opts := translator.Options{
		Target:       cfg.Language.Target,
		JSONMode:     cfg.Upstream.JSONMode,
		LenientParse: cfg.Upstream.LenientParse,
	}

	if cfg.Language.DetectSource || cfg.Language.ValidateOutput {
		det := detector.New()
		if cfg.Language.DetectSource {
			opts.Detector = det
		}
		if cfg.Language.ValidateOutput {
			opts.Validator = validator.New(det)
		}
	}

	logger.Info("Translation service configured",
		zap.String("base_url", cfg.Upstream.BaseURL),
		zap.String("model", completer.Model()),
		zap.Duration("timeout", cfg.Upstream.Timeout),
		zap.Bool("json_mode", cfg.Upstream.JSONMode),
		zap.Bool("lenient_parse", cfg.Upstream.LenientParse),
		zap.String("target", cfg.Language.Target.String()),
		zap.Bool("detect_source", cfg.Language.DetectSource),
		zap.Bool("validate_output", cfg.Language.ValidateOutput),
	)

	return translator.NewService(completer, opts, logger)
}
