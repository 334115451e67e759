package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mezonai/poldrop/config"
	"github.com/mezonai/poldrop/errors"
	"github.com/mezonai/poldrop/pkg/card"
	"github.com/mezonai/poldrop/pkg/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const zeroEntropyMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestGenerateWallets(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	err := generateWallets(&out, card.NewRenderer(), GenerateConfig{Count: 3, OutDir: dir})
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "wallet_*_*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 3)

	aggregates, _ := filepath.Glob(filepath.Join(dir, "all_wallets_*.json"))
	require.Len(t, aggregates, 1)
	books, _ := filepath.Glob(filepath.Join(dir, "public_addresses_*.json"))
	require.Len(t, books, 1)
	pdfs, _ := filepath.Glob(filepath.Join(dir, "wallet_cards_*.pdf"))
	assert.Len(t, pdfs, 1)

	records, err := wallet.LoadRecords(aggregates[0])
	require.NoError(t, err)
	for _, rec := range records {
		assert.Contains(t, out.String(), "Public Key: "+rec.PublicKey)
	}
}

func TestGenerateWallets_NoCards(t *testing.T) {
	dir := t.TempDir()

	err := generateWallets(&bytes.Buffer{}, card.NewRenderer(), GenerateConfig{Count: 1, OutDir: dir, NoCards: true})
	require.NoError(t, err)

	pdfs, _ := filepath.Glob(filepath.Join(dir, "*.pdf"))
	assert.Empty(t, pdfs)
}

func TestGenerateWallets_InvalidCount(t *testing.T) {
	err := generateWallets(&bytes.Buffer{}, card.NewRenderer(), GenerateConfig{Count: 0, OutDir: t.TempDir()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidCount))
	assert.True(t, showUsageExample(err))
}

func TestGenerateSample(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	require.NoError(t, generateSample(&out, card.NewRenderer(), dir))
	assert.FileExists(t, filepath.Join(dir, card.SampleFileName))
	assert.Contains(t, out.String(), "Sample wallet card has been generated")
}

func TestRestoreCommand(t *testing.T) {
	chdirTemp(t)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"restore", "--mnemonic", zeroEntropyMnemonic})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		restoreMnemonic = ""
	})

	_, err := rootCmd.ExecuteC()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Private Key: 0x5eb00bbddcf069084889a8ab9155568165f5c453ccb85e70811aaed6f6da5fc1")
}

func TestReadPhrase(t *testing.T) {
	phrase, err := readPhrase(strings.NewReader(zeroEntropyMnemonic + "\nignored"))
	require.NoError(t, err)
	assert.Equal(t, zeroEntropyMnemonic+"\n", phrase)

	phrase, err = readPhrase(strings.NewReader(zeroEntropyMnemonic))
	require.NoError(t, err)
	assert.Equal(t, zeroEntropyMnemonic, phrase)
}

func TestDistribute_Validation(t *testing.T) {
	dir := chdirTemp(t)
	appConfig = config.Default()
	t.Cleanup(func() { appConfig = nil })

	keyPath := filepath.Join(dir, "privatekey.txt")
	walletsPath := filepath.Join(dir, "public_addresses.json")
	require.NoError(t, os.WriteFile(walletsPath, []byte(`{"addresses":["0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"],"count":1}`), 0o600))

	tests := []struct {
		name string
		cfg  DistributeConfig
		code errors.ErrorCode
	}{
		{"zero amount", DistributeConfig{Amount: 0, Wallets: walletsPath, PrivateKeyFile: keyPath}, errors.ErrCodeInvalidAmount},
		{"negative amount", DistributeConfig{Amount: -1, Wallets: walletsPath, PrivateKeyFile: keyPath}, errors.ErrCodeInvalidAmount},
		{"below one wei", DistributeConfig{Amount: 1e-19, Wallets: walletsPath, PrivateKeyFile: keyPath}, errors.ErrCodeInvalidAmount},
		{"missing key", DistributeConfig{Amount: 0.25, Wallets: walletsPath, PrivateKeyFile: keyPath}, errors.ErrCodeMissingCredentialFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := distribute(context.Background(), distributeCmd, tt.cfg)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err), fmt.Sprint(err))
		})
	}

	require.NoError(t, os.WriteFile(keyPath, []byte("4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"), 0o600))
	err := distribute(context.Background(), distributeCmd, DistributeConfig{Amount: 0.25, Wallets: filepath.Join(dir, "missing.json"), PrivateKeyFile: keyPath})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNoRecipientFile, errors.CodeOf(err))
}

func TestDistributeConfig_ApplyDefaults(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.ListenAddr = ":9100"

	dc := DistributeConfig{RPCURL: "http://localhost:8545"}
	dc.applyDefaults(cfg)

	assert.Equal(t, "http://localhost:8545", dc.RPCURL)
	assert.Equal(t, cfg.Files.PrivateKeyFile, dc.PrivateKeyFile)
	assert.Equal(t, cfg.Files.LogDir, dc.LogDir)
	assert.Equal(t, ":9100", dc.MetricsAddr)
}

func TestShowUsageExample(t *testing.T) {
	assert.True(t, showUsageExample(errors.NewError(errors.ErrCodeInvalidAmount, "x")))
	assert.False(t, showUsageExample(errors.NewError(errors.ErrCodeNetworkUnreachable, "x")))
	assert.False(t, showUsageExample(errors.NewError(errors.ErrCodeChainMismatch, "x")))
}
