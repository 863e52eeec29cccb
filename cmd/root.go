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
	"os"

	"github.com/spf13/cobra"

	"github.com/valpere/keytrans/internal/config"
)

var version = "0.1.0"

var envFile string

var rootCmd = &cobra.Command{
	Use:   "keytrans",
	Short: "LLM-backed translation and keyword extraction",
	Long: `keytrans sends text to an OpenAI-compatible chat-completion model and asks for
an English translation plus three keywords, returned as JSON.

Configuration is read from the environment and from a dotenv file (.env by default).
API_KEY is required; BASE_URL and MODEL select the provider.

Use "keytrans serve" to run the HTTP endpoint (POST /translate)
or "keytrans translate" for a one-off translation.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "Dotenv file with API_KEY and other settings (ignored if missing)")
}
