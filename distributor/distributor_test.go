package distributor

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/mezonai/poldrop/errors"
	"github.com/mezonai/poldrop/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := crypto.HexToECDSA(testKeyHex)
	require.NoError(t, err)
	return key
}

func testConfig(dir string) Config {
	return Config{
		ChainID:     137,
		GasLimit:    21000,
		Symbol:      "POL",
		LogDir:      dir,
		CallTimeout: time.Second,
	}
}

func recipients(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("0x%040x", i+1)
	}
	return out
}

func quarter() *uint256.Int {
	return uint256.MustFromDecimal("250000000000000000")
}

func TestPreflight_Plan(t *testing.T) {
	chain := newFakeChain()
	var console bytes.Buffer
	d := New(chain, testConfig(t.TempDir()), &console)

	plan, err := d.Preflight(context.Background(), testKey(t), 3, quarter())
	require.NoError(t, err)

	assert.Equal(t, checksummed, plan.Sender.Hex())
	assert.Equal(t, uint64(42), plan.BaseNonce)
	assert.Equal(t, "751890000000000000", plan.TotalCost.Dec())
	assert.Contains(t, console.String(), "Total needed for all transactions: 0.75189 POL")
}

func TestPreflight_InsufficientBalance(t *testing.T) {
	chain := newFakeChain()
	chain.balance = big.NewInt(1e17)
	dir := t.TempDir()
	d := New(chain, testConfig(dir), nil)

	report, err := d.Run(context.Background(), &Request{
		Key:        testKey(t),
		Recipients: recipients(3),
		Amount:     quarter(),
	})
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, errors.Is(err, errors.ErrCodeInsufficientBalance))
	assert.Contains(t, err.Error(), "Need 0.75189 POL but have 0.1 POL")
	assert.Empty(t, chain.sent)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no journal on preflight failure")
}

func TestPreflight_ChainMismatch(t *testing.T) {
	chain := newFakeChain()
	chain.chainID = big.NewInt(80002)
	d := New(chain, testConfig(t.TempDir()), nil)

	_, err := d.Preflight(context.Background(), testKey(t), 1, quarter())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeChainMismatch))
}

func TestPreflight_NetworkUnreachable(t *testing.T) {
	chain := newFakeChain()
	chain.balanceErr = fmt.Errorf("connection refused")
	d := New(chain, testConfig(t.TempDir()), nil)

	_, err := d.Preflight(context.Background(), testKey(t), 1, quarter())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNetworkUnreachable))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestPreflight_ZeroAmount(t *testing.T) {
	d := New(newFakeChain(), testConfig(t.TempDir()), nil)

	_, err := d.Preflight(context.Background(), testKey(t), 1, new(uint256.Int))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidAmount))
}

func TestExecute_SimulateSendsNothing(t *testing.T) {
	chain := newFakeChain()
	d := New(chain, testConfig(t.TempDir()), nil)
	req := &Request{Key: testKey(t), Recipients: recipients(4), Amount: quarter(), Simulate: true}

	plan, err := d.Preflight(context.Background(), req.Key, len(req.Recipients), req.Amount)
	require.NoError(t, err)
	var console bytes.Buffer
	report := d.Execute(context.Background(), plan, req, NewJournalWriter(&console, nil, "POL"))

	assert.Empty(t, chain.sent)
	assert.Equal(t, 4, report.Simulated)
	for i, rec := range report.Records {
		assert.Equal(t, i+1, rec.Index)
		assert.Equal(t, uint64(42+i), rec.Nonce)
		assert.Equal(t, types.TxStatusSimulated, rec.Status)
		assert.Nil(t, rec.TxHash)
	}
	assert.Contains(t, console.String(), "Wallet 4: Would send 0.25 POL to")
}

func TestExecute_FailuresDoNotAbortAndNonceAdvances(t *testing.T) {
	chain := newFakeChain()
	chain.sendErr[44] = fmt.Errorf("replacement transaction underpriced")
	chain.revert[45] = true
	d := New(chain, testConfig(t.TempDir()), nil)

	list := recipients(6)
	list[1] = "0xnot-an-address"
	req := &Request{Key: testKey(t), Recipients: list, Amount: quarter()}

	plan, err := d.Preflight(context.Background(), req.Key, len(req.Recipients), req.Amount)
	require.NoError(t, err)
	report := d.Execute(context.Background(), plan, req, NewJournalWriter(nil, nil, "POL"))

	require.Len(t, report.Records, 6)
	statuses := make([]types.TxStatus, len(report.Records))
	for i, rec := range report.Records {
		statuses[i] = rec.Status
		assert.Equal(t, plan.NonceFor(i+1), rec.Nonce)
	}
	assert.Equal(t, []types.TxStatus{
		types.TxStatusSent,
		types.TxStatusFailed,
		types.TxStatusFailed,
		types.TxStatusFailed,
		types.TxStatusSent,
		types.TxStatusSent,
	}, statuses)
	assert.Equal(t, 3, report.Sent)
	assert.Equal(t, 3, report.Failed)

	// malformed recipient never reaches the node
	assert.Nil(t, report.Records[1].TxHash)
	assert.Contains(t, report.Records[1].Error, "not a valid address")
	// rejected submission has no hash
	assert.Nil(t, report.Records[2].TxHash)
	assert.Contains(t, report.Records[2].Error, "underpriced")
	// reverted receipt keeps the hash
	require.NotNil(t, report.Records[3].TxHash)
	assert.Contains(t, report.Records[3].Error, "reverted")

	assert.Equal(t, []uint64{42, 45, 46, 47}, chain.sentNonces())
}

func TestExecute_SignedTransactionFields(t *testing.T) {
	chain := newFakeChain()
	d := New(chain, testConfig(t.TempDir()), nil)
	req := &Request{Key: testKey(t), Recipients: []string{checksummed}, Amount: quarter()}

	plan, err := d.Preflight(context.Background(), req.Key, 1, req.Amount)
	require.NoError(t, err)
	report := d.Execute(context.Background(), plan, req, NewJournalWriter(nil, nil, "POL"))
	require.Equal(t, 1, report.Sent)
	require.Len(t, chain.sent, 1)

	tx := chain.sent[0]
	assert.Equal(t, uint8(ethtypes.LegacyTxType), tx.Type())
	assert.Equal(t, checksummed, tx.To().Hex())
	assert.Equal(t, quarter().ToBig(), tx.Value())
	assert.Equal(t, uint64(21000), tx.Gas())
	assert.Equal(t, big.NewInt(30e9), tx.GasPrice())
	assert.Equal(t, big.NewInt(137), tx.ChainId())
	assert.Equal(t, tx.Hash(), *report.Records[0].TxHash)

	from, err := ethtypes.Sender(ethtypes.LatestSignerForChainID(big.NewInt(137)), tx)
	require.NoError(t, err)
	assert.Equal(t, plan.Sender, from)
}

func TestRun_WritesJournal(t *testing.T) {
	chain := newFakeChain()
	dir := t.TempDir()
	var console bytes.Buffer
	d := New(chain, testConfig(dir), &console)
	d.now = func() time.Time { return time.Date(2024, 3, 4, 5, 6, 7, 0, time.Local) }

	report, err := d.Run(context.Background(), &Request{
		Key:        testKey(t),
		Recipients: recipients(2),
		Source:     "all_wallets_test.json",
		Amount:     quarter(),
		Simulate:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "pol_distribution_log_20240304_050607.txt"), report.LogPath)
	data, err := os.ReadFile(report.LogPath)
	require.NoError(t, err)
	log := string(data)

	assert.True(t, strings.HasPrefix(log, "POL Distribution Log - 2024-03-04 05:06:07\n"))
	assert.Contains(t, log, "Run ID: "+report.RunID)
	assert.Contains(t, log, "Test Mode: Yes")
	assert.Contains(t, log, "Using wallet file: all_wallets_test.json")
	assert.Contains(t, log, "Starting Nonce: 42")
	assert.Contains(t, log, "Wallet 1: Would send 0.25 POL")
	assert.Contains(t, log, "Wallet 2: Would send 0.25 POL")
	assert.Contains(t, log, "Summary: 0 sent, 2 simulated, 0 failed of 2 recipients")
	assert.Contains(t, console.String(), "Simulation complete!")
}
