package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/seborama/sockvcr/logging"
)

var logLevel string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(100)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sockvcr",
		Short: "Inspect sockvcr cassettes",
		Long:  "Inspect sockvcr cassettes: show their tracks or decrypt them to the standard output",
		PersistentPreRun: func(*cobra.Command, []string) {
			logging.Setup(logLevel)
			loadEnv()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envOr("SOCKVCR_LOG_LEVEL", "warn"), "Log level (debug, info, warn, error)")
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(decryptCmd())

	return rootCmd
}

func loadEnv() {
	for _, f := range []string{".env", ".envrc"} {
		if err := godotenv.Load(f); err != nil {
			log.Debug().Err(err).Str("file", f).Msg("environment file not loaded")
		}
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}

	return fallback
}
