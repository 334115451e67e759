package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/mezonai/poldrop/errors"
	"github.com/mezonai/poldrop/interfaces"
	"github.com/mezonai/poldrop/logx"
	"github.com/mezonai/poldrop/monitoring"
	"github.com/mezonai/poldrop/pkg/card"
	"github.com/mezonai/poldrop/pkg/wallet"
	"github.com/mezonai/poldrop/types"
	"github.com/mezonai/poldrop/utils"
	"github.com/spf13/cobra"
)

type GenerateConfig struct {
	Count   int
	Sample  bool
	OutDir  string
	NoCards bool
}

var generateConfig GenerateConfig

var generateCmd = &cobra.Command{
	Use:   "generate [flags]",
	Short: "Generate EVM wallets with recovery phrases and printable cards",
	Long: `Generates one or more wallets from fresh 12-word mnemonics. Each wallet is
saved to its own JSON file; the batch also gets an aggregate file, an
addresses-only file for distribution and a PDF with one card per wallet.`,
	Example: `  poldrop generate --count 10
  poldrop generate --sample`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := generateConfig
		if cfg.OutDir == "" {
			cfg.OutDir = appConfig.Files.OutputDir
		}
		renderer := card.NewRenderer()
		if cfg.Sample {
			return generateSample(cmd.OutOrStdout(), renderer, cfg.OutDir)
		}
		return generateWallets(cmd.OutOrStdout(), renderer, cfg)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntVarP(&generateConfig.Count, "count", "n", 1, "number of wallets to generate")
	generateCmd.Flags().BoolVar(&generateConfig.Sample, "sample", false, "only render a sample card to preview the layout")
	generateCmd.Flags().StringVarP(&generateConfig.OutDir, "out-dir", "o", "", "directory for generated files (default from config)")
	generateCmd.Flags().BoolVar(&generateConfig.NoCards, "no-cards", false, "skip the printable PDF")
}

func generateSample(out io.Writer, renderer interfaces.CardRenderer, dir string) error {
	path := filepath.Join(dir, card.SampleFileName)
	if err := renderer.RenderFile(path, []types.KeyRecord{card.SampleRecord(time.Now())}); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "render sample card")
	}
	fmt.Fprintf(out, "\nSample wallet card has been generated as '%s'\n", path)
	fmt.Fprintln(out, "This shows how a single card will look when printed.")
	return nil
}

func generateWallets(out io.Writer, renderer interfaces.CardRenderer, cfg GenerateConfig) error {
	now := time.Now()
	gen := wallet.NewGenerator(nil).WithClock(func() time.Time { return now })

	fmt.Fprintf(out, "\nGenerating %d wallets...\n\n", cfg.Count)
	records, err := gen.GenerateBatch(cfg.Count)
	if err != nil {
		return err
	}

	files, err := wallet.WriteBatch(cfg.OutDir, records, now)
	if err != nil {
		return err
	}
	monitoring.IncreaseWalletsGenerated(len(records))
	logx.Info("GENERATE", fmt.Sprintf("Wrote %d wallets to %s", len(records), cfg.OutDir))

	separator := strings.Repeat("-", 80)
	fmt.Fprintln(out, separator)
	for i, rec := range records {
		fmt.Fprintf(out, "Wallet #%d\n", rec.WalletNumber)
		fmt.Fprintf(out, "Public Key: %s\n", rec.PublicKey)
		fmt.Fprintf(out, "Private Key: %s\n", rec.PrivateKey)
		fmt.Fprintf(out, "Mnemonic Phrase: %s\n", rec.Mnemonic)
		fmt.Fprintf(out, "Saved to: %s\n", files.RecordFiles[i])
		fmt.Fprintln(out, separator)
	}

	fmt.Fprintf(out, "\nAll wallet information saved to: %s\n", files.AggregateFile)
	fmt.Fprintf(out, "Public addresses for token distribution saved to: %s\n", files.AddressesFile)

	if !cfg.NoCards {
		pdfPath := filepath.Join(cfg.OutDir, card.CardsFileName(utils.FileStamp(now)))
		if err := renderer.RenderFile(pdfPath, records); err != nil {
			return errors.Wrap(errors.ErrCodeStorage, err, "render wallet cards")
		}
		fmt.Fprintf(out, "Printable wallet cards saved to: %s\n", pdfPath)
	}

	fmt.Fprintln(out, "\nIMPORTANT: Keep this information secure and never share your private keys or mnemonic phrases!")
	fmt.Fprintln(out, "Consider storing these credentials offline for maximum security.")
	fmt.Fprintln(out, "The mnemonic phrase can be used to recover your wallet - keep it safe!")
	return nil
}
