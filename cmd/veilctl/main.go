package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/veilbox/veil/internal/config"
	"github.com/veilbox/veil/internal/crypto"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	okColor   = color.New(color.FgGreen)
	noteColor = color.New(color.FgYellow)
)

var rootCmd = &cobra.Command{
	Use:   "veilctl",
	Short: "Command-line access to the veil codec and masking tools",
	Long: `veilctl operates on the same configuration as the veil API server:
set VEIL_ENCRYPTION_KEY (64 hex chars) or VEIL_ENCRYPTION_PASSPHRASE in the
environment or a local .env file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// loadCodec builds a codec from the local environment. CLI usage is strict:
// unlike the in-process masking surface, a broken configuration should stop
// the operator, not silently pass values through.
func loadCodec() (*crypto.Codec, error) {
	_ = godotenv.Load()

	// The CLI tolerates a missing dev token; it never serves traffic.
	if os.Getenv("VEIL_ENV") == "" {
		os.Setenv("VEIL_ENV", "development")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	return crypto.NewCodec(cfg), nil
}

func main() {
	rootCmd.AddCommand(keygenCmd, encryptCmd, decryptCmd, maskCmd, tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		errColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printPayload(payload string) {
	okColor.Println(payload)
}

func note(format string, args ...any) {
	noteColor.Fprintf(os.Stderr, format+"\n", args...)
}

func init() {
	cobra.OnInitialize(func() {
		if os.Getenv("NO_COLOR") != "" {
			color.NoColor = true
		}
	})
}
