package cmd

import (
	"fmt"
	"os"

	"github.com/mezonai/poldrop/config"
	"github.com/mezonai/poldrop/errors"
	"github.com/mezonai/poldrop/logx"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	appConfig  *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "poldrop",
	Short: "Bulk EVM wallet generation and native token distribution",
	Long: `poldrop generates batches of EVM wallets with printable recovery cards
and distributes the chain's native token (POL on Polygon) to a list of
addresses, one signed transfer per recipient.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initializeLogger(verbose)

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		appConfig = cfg
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logx.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (.yml or .ini)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "mirror the application log to stderr")
}

// Execute runs the CLI and exits non-zero on any fatal error
func Execute() {
	cmd, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	logx.Error("CMD", "Command execution failed: ", err)
	_ = logx.Close()

	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, "\nError: %v\n", err)
	if showUsageExample(err) && cmd.Example != "" {
		fmt.Fprintf(out, "\nUsage example:\n%s\n", cmd.Example)
	}
	os.Exit(1)
}

// Input mistakes get a usage hint; runtime failures do not
func showUsageExample(err error) bool {
	switch errors.CodeOf(err) {
	case errors.ErrCodeInvalidAmount, errors.ErrCodeInvalidCount, errors.ErrCodeNoRecipientFile,
		errors.ErrCodeMissingCredentialFile, errors.ErrCodeInvalidPrivateKeyFormat,
		errors.ErrCodeInvalidMnemonic, errors.ErrCodeInsufficientBalance:
		return true
	case errors.ErrCodeInternal:
		// cobra flag parsing errors carry no code
		return true
	default:
		return false
	}
}
