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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valpere/keytrans/internal/config"
	"github.com/valpere/keytrans/internal/translator"
)

var (
	inputFile  string
	outputFile string
)

var translateCmd = &cobra.Command{
	Use:   "translate [text]",
	Short: "Translate text once and print the JSON result",
	Long: `Translate a single text and extract keywords using the configured model.

The text is taken from the arguments, from --input, or from stdin (in that order).
The result is printed as {"translation": "...", "keywords": [...]}.

Examples:
  keytrans translate "人工智能将彻底改变我们的工作方式"
  keytrans translate -i article.txt -o result.json
  echo "你好" | keytrans translate --detect`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile != "" && inputFile == outputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		text, err := readInput(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		cfg, err := config.Load(envFile, cmd.Flags())
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer logger.Sync()

		svc := buildService(cfg, logger)

		result, err := svc.Translate(context.Background(), text)
		if err != nil {
			logger.Error("Translation failed", zap.Stringer("kind", translator.KindOf(err)), zap.Error(err))
			return fmt.Errorf("translation failed: %w", err)
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		out = append(out, '\n')

		if outputFile == "" {
			_, err = cmd.OutOrStdout().Write(out)
			return err
		}

		if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(outputFile, out, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Translated to %s, wrote %s\n", svc.TargetName(), outputFile)
		return nil
	},
}

// readInput returns the text to translate. An empty text is valid and is
// forwarded unchanged.
func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file to translate")
	translateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the JSON result to this file instead of stdout")
	translateCmd.Flags().String("model", "", "Model identifier (overrides MODEL)")
	translateCmd.Flags().String("base-url", "", "OpenAI-compatible API base URL (overrides BASE_URL)")
	translateCmd.Flags().Bool("lenient", false, "Strip code fences and lead-in text from model replies (overrides LENIENT_PARSE)")
	translateCmd.Flags().Bool("detect", false, "Detect the source language and name it in the prompt (overrides DETECT_SOURCE)")
}
