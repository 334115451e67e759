package distributor

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/mezonai/poldrop/errors"
	"github.com/mezonai/poldrop/interfaces"
	"github.com/mezonai/poldrop/logx"
	"github.com/mezonai/poldrop/monitoring"
	"github.com/mezonai/poldrop/types"
	"github.com/mezonai/poldrop/utils"
)

const defaultCallTimeout = 15 * time.Second

type Config struct {
	ChainID     uint64
	GasLimit    uint64
	Symbol      string
	LogDir      string
	CallTimeout time.Duration
}

// Request is one distribution: who pays, who receives, and how much each
type Request struct {
	Key        *ecdsa.PrivateKey
	Recipients []string
	Source     string
	Amount     *uint256.Int
	Simulate   bool
}

// Report summarises a finished run
type Report struct {
	RunID     string
	Plan      *Plan
	Records   []types.TransactionRecord
	Sent      int
	Simulated int
	Failed    int
	LogPath   string
}

type Distributor struct {
	client  interfaces.ChainClient
	cfg     Config
	console io.Writer
	now     func() time.Time
}

func New(client interfaces.ChainClient, cfg Config, console io.Writer) *Distributor {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	if console == nil {
		console = io.Discard
	}
	return &Distributor{
		client:  client,
		cfg:     cfg,
		console: console,
		now:     time.Now,
	}
}

// Run performs preflight, opens the journal and executes every transfer.
// Nothing is sent and no journal is created when preflight fails.
func (d *Distributor) Run(ctx context.Context, req *Request) (*Report, error) {
	plan, err := d.Preflight(ctx, req.Key, len(req.Recipients), req.Amount)
	if err != nil {
		return nil, err
	}

	startedAt := d.now()
	journal, err := OpenJournal(d.cfg.LogDir, d.cfg.Symbol, startedAt, d.console)
	if err != nil {
		return nil, err
	}
	defer journal.Close()

	if err := journal.WriteHeader(plan, req, startedAt); err != nil {
		logx.Error("DISTRIBUTOR", "Failed to write journal header: ", err)
	}

	report := d.Execute(ctx, plan, req, journal)
	report.LogPath = journal.Path()

	mode := "Distribution"
	if req.Simulate {
		mode = "Simulation"
	}
	fmt.Fprintf(d.console, "\n%s complete! Check %s for detailed logs.\n", mode, report.LogPath)
	return report, nil
}

// Preflight gathers live chain state and checks the sender can pay for
// recipientCount transfers of amount wei plus gas.
func (d *Distributor) Preflight(ctx context.Context, key *ecdsa.PrivateKey, recipientCount int, amount *uint256.Int) (*Plan, error) {
	if amount == nil || amount.IsZero() {
		return nil, errors.Newf(errors.ErrCodeInvalidAmount, errors.ErrMsgAmountNotPositive, d.cfg.Symbol)
	}
	sender := crypto.PubkeyToAddress(key.PublicKey)

	chainID, err := callWithTimeout(ctx, d.cfg.CallTimeout, d.client.ChainID)
	if err != nil {
		return nil, d.unreachable(err)
	}
	if !chainID.IsUint64() || chainID.Uint64() != d.cfg.ChainID {
		return nil, errors.Newf(errors.ErrCodeChainMismatch, errors.ErrMsgChainMismatch,
			chainID.String(), fmt.Sprint(d.cfg.ChainID))
	}

	nonce, err := callWithTimeout(ctx, d.cfg.CallTimeout, func(ctx context.Context) (uint64, error) {
		return d.client.PendingNonceAt(ctx, sender)
	})
	if err != nil {
		return nil, d.unreachable(err)
	}
	rawBalance, err := callWithTimeout(ctx, d.cfg.CallTimeout, func(ctx context.Context) (*big.Int, error) {
		return d.client.BalanceAt(ctx, sender, nil)
	})
	if err != nil {
		return nil, d.unreachable(err)
	}
	rawGasPrice, err := callWithTimeout(ctx, d.cfg.CallTimeout, d.client.SuggestGasPrice)
	if err != nil {
		return nil, d.unreachable(err)
	}

	balance, err := utils.ToUint256(rawBalance)
	if err != nil {
		return nil, d.unreachable(fmt.Errorf("balance: %w", err))
	}
	gasPrice, err := utils.ToUint256(rawGasPrice)
	if err != nil {
		return nil, d.unreachable(fmt.Errorf("gas price: %w", err))
	}

	monitoring.SetSenderBalance(balance.Float64())
	monitoring.SetNextNonce(nonce)

	plan, err := NewPlan(sender, d.cfg.ChainID, balance, nonce, gasPrice, d.cfg.GasLimit, amount, recipientCount, d.cfg.Symbol)
	if err != nil {
		return nil, err
	}
	d.printPlan(plan)

	if !plan.Affordable() {
		return nil, errors.Newf(errors.ErrCodeInsufficientBalance, errors.ErrMsgInsufficientBalance,
			utils.FormatEther(plan.TotalCost), d.cfg.Symbol, utils.FormatEther(plan.SenderBalance), d.cfg.Symbol)
	}
	logx.Info("DISTRIBUTOR", fmt.Sprintf("Preflight ok: sender=%s nonce=%d recipients=%d total=%s wei",
		sender.Hex(), nonce, recipientCount, plan.TotalCost.Dec()))
	return plan, nil
}

// Execute sends one transfer per recipient in input order. Item i always
// uses nonce base+i-1, so a failed item leaves a gap rather than shifting
// later items. Per-item failures never abort the batch.
func (d *Distributor) Execute(ctx context.Context, plan *Plan, req *Request, journal *Journal) *Report {
	report := &Report{
		RunID:   journal.RunID(),
		Plan:    plan,
		Records: make([]types.TransactionRecord, 0, len(req.Recipients)),
	}
	signer := ethtypes.LatestSignerForChainID(new(big.Int).SetUint64(plan.ChainID))

	for i, raw := range req.Recipients {
		index := i + 1
		rec := types.TransactionRecord{
			Index:     index,
			Recipient: raw,
			Nonce:     plan.NonceFor(index),
		}

		to, err := ParseRecipient(raw)
		switch {
		case err != nil:
			rec.Status = types.TxStatusFailed
			rec.Error = err.Error()
		case req.Simulate:
			rec.Status = types.TxStatusSimulated
		default:
			hash, sendErr := d.send(ctx, signer, plan, req.Key, to, rec.Nonce)
			rec.TxHash = hash
			if sendErr != nil {
				rec.Status = types.TxStatusFailed
				rec.Error = sendErr.Error()
			} else {
				rec.Status = types.TxStatusSent
			}
		}

		switch rec.Status {
		case types.TxStatusSent:
			report.Sent++
		case types.TxStatusSimulated:
			report.Simulated++
		default:
			report.Failed++
			logx.Warn("DISTRIBUTOR", fmt.Sprintf("Wallet %d (%s) failed: %s", index, utils.ShortenLog(raw), rec.Error))
		}
		monitoring.RecordTxOutcome(string(rec.Status))
		monitoring.SetNextNonce(rec.Nonce + 1)

		if err := journal.WriteRecord(rec, plan); err != nil {
			logx.Error("DISTRIBUTOR", "Failed to journal wallet ", index, ": ", err)
		}
		report.Records = append(report.Records, rec)
	}

	if err := journal.WriteSummary(report); err != nil {
		logx.Error("DISTRIBUTOR", "Failed to journal summary: ", err)
	}
	return report
}

// send signs and submits one legacy transfer and blocks until its receipt.
// The hash is returned whenever the transaction reached the node.
func (d *Distributor) send(ctx context.Context, signer ethtypes.Signer, plan *Plan, key *ecdsa.PrivateKey,
	to common.Address, nonce uint64) (*common.Hash, error) {
	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    plan.Amount.ToBig(),
		Gas:      plan.GasLimit,
		GasPrice: plan.GasPrice.ToBig(),
	})
	signed, err := ethtypes.SignTx(tx, signer, key)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSubmissionFailed, err, "sign transaction")
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.CallTimeout)
	err = d.client.SendTransaction(sendCtx, signed)
	cancel()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSubmissionFailed, err, "send transaction")
	}

	hash := signed.Hash()
	logx.Info("DISTRIBUTOR", "Submitted ", hash.Hex(), " nonce=", nonce)

	start := time.Now()
	receipt, err := d.client.WaitForReceipt(ctx, hash)
	monitoring.RecordReceiptWait(time.Since(start))
	if err != nil {
		return &hash, errors.Wrap(errors.ErrCodeSubmissionFailed, err, "wait for receipt")
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		block := "unknown"
		if receipt.BlockNumber != nil {
			block = receipt.BlockNumber.String()
		}
		return &hash, errors.Newf(errors.ErrCodeSubmissionFailed, errors.ErrMsgTxReverted, hash.Hex(), block)
	}
	return &hash, nil
}

func (d *Distributor) printPlan(plan *Plan) {
	sym := d.cfg.Symbol
	fmt.Fprintf(d.console, "\nSender balance: %s %s\n", utils.FormatEther(plan.SenderBalance), sym)
	fmt.Fprintf(d.console, "\nAmount per transaction:\n")
	fmt.Fprintf(d.console, "  %s to send: %s %s\n", sym, utils.FormatEther(plan.Amount), sym)
	fmt.Fprintf(d.console, "  Gas price: %s Gwei\n", utils.FormatGwei(plan.GasPrice))
	fmt.Fprintf(d.console, "  Gas limit: %d\n", plan.GasLimit)
	fmt.Fprintf(d.console, "  Gas cost: %s %s\n", utils.FormatEther(plan.GasCost), sym)
	fmt.Fprintf(d.console, "  Total per transaction: %s %s\n", utils.FormatEther(plan.PerTxCost), sym)
	fmt.Fprintf(d.console, "\nTotal needed for all transactions: %s %s\n\n", utils.FormatEther(plan.TotalCost), sym)
}

func (d *Distributor) unreachable(err error) error {
	return errors.Wrap(errors.ErrCodeNetworkUnreachable, err, "Failed to query chain state")
}

func callWithTimeout[T any](ctx context.Context, timeout time.Duration, call func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return call(callCtx)
}
