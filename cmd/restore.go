package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mezonai/poldrop/pkg/wallet"
	"github.com/spf13/cobra"
)

var restoreMnemonic string

var restoreCmd = &cobra.Command{
	Use:   "restore [flags]",
	Short: "Re-derive a wallet's address and private key from its recovery phrase",
	Long: `Derives the address and private key for a 12-word recovery phrase using
the same derivation as generate. Without --mnemonic the phrase is read
from standard input.`,
	Example: `  poldrop restore --mnemonic "word1 word2 ... word12"
  echo "word1 word2 ... word12" | poldrop restore`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		phrase := restoreMnemonic
		if strings.TrimSpace(phrase) == "" {
			line, err := readPhrase(cmd.InOrStdin())
			if err != nil {
				return err
			}
			phrase = line
		}

		w, err := wallet.FromMnemonic(phrase)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Public Key: %s\n", w.Address.Hex())
		fmt.Fprintf(out, "Private Key: %s\n", w.PrivateKeyHex())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)

	restoreCmd.Flags().StringVarP(&restoreMnemonic, "mnemonic", "m", "", "12-word recovery phrase")
}

func readPhrase(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read recovery phrase: %w", err)
	}
	return line, nil
}
