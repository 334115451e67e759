package distributor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mezonai/poldrop/errors"
	"github.com/mezonai/poldrop/types"
	"github.com/mezonai/poldrop/utils"
)

type syncer interface {
	Sync() error
}

// Journal is the append-only record of one distribution run. Every entry is
// mirrored to the console and flushed to disk before the next item starts.
type Journal struct {
	mu      sync.Mutex
	console io.Writer
	file    io.Writer
	closer  io.Closer
	path    string
	symbol  string
	runID   string
}

// JournalFileName is the log file name for a run started at now
func JournalFileName(symbol string, now time.Time) string {
	return fmt.Sprintf("%s_distribution_log_%s.txt", strings.ToLower(symbol), utils.FileStamp(now))
}

// OpenJournal creates the log file in dir
func OpenJournal(dir, symbol string, now time.Time, console io.Writer) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create log directory")
	}
	path := filepath.Join(dir, JournalFileName(symbol, now))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "open "+path)
	}

	j := NewJournalWriter(console, f, symbol)
	j.closer = f
	j.path = path
	return j, nil
}

// NewJournalWriter journals into arbitrary writers. The file writer is
// synced after each entry when it supports Sync.
func NewJournalWriter(console, file io.Writer, symbol string) *Journal {
	if console == nil {
		console = io.Discard
	}
	return &Journal{
		console: console,
		file:    file,
		symbol:  symbol,
		runID:   uuid.NewString(),
	}
}

func (j *Journal) Path() string {
	return j.path
}

func (j *Journal) RunID() string {
	return j.runID
}

// WriteHeader records the run parameters. Only the file gets the header; the
// console already shows the plan from preflight.
func (j *Journal) WriteHeader(plan *Plan, req *Request, startedAt time.Time) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Distribution Log - %s\n", j.symbol, startedAt.Format(utils.DisplayLayout))
	fmt.Fprintf(&b, "Run ID: %s\n", j.runID)
	fmt.Fprintf(&b, "Sender Address: %s\n", plan.Sender.Hex())
	fmt.Fprintf(&b, "Sender Balance: %s %s\n", utils.FormatEther(plan.SenderBalance), j.symbol)
	fmt.Fprintf(&b, "Amount per wallet: %s %s\n", utils.FormatEther(plan.Amount), j.symbol)
	fmt.Fprintf(&b, "Gas Price: %s Gwei\n", utils.FormatGwei(plan.GasPrice))
	fmt.Fprintf(&b, "Gas Limit: %d\n", plan.GasLimit)
	fmt.Fprintf(&b, "Gas Cost per transaction: %s %s\n", utils.FormatEther(plan.GasCost), j.symbol)
	fmt.Fprintf(&b, "Total per transaction: %s %s\n", utils.FormatEther(plan.PerTxCost), j.symbol)
	fmt.Fprintf(&b, "Total needed: %s %s\n", utils.FormatEther(plan.TotalCost), j.symbol)
	fmt.Fprintf(&b, "Starting Nonce: %d\n", plan.BaseNonce)
	fmt.Fprintf(&b, "Test Mode: %s\n", yesNo(req.Simulate))
	fmt.Fprintf(&b, "Using wallet file: %s\n\n", req.Source)
	return j.write(b.String(), false)
}

// WriteRecord records the outcome of one transfer
func (j *Journal) WriteRecord(rec types.TransactionRecord, plan *Plan) error {
	var b strings.Builder
	amount := utils.FormatEther(plan.Amount)
	switch rec.Status {
	case types.TxStatusSimulated:
		fmt.Fprintf(&b, "Wallet %d: Would send %s %s to %s\n", rec.Index, amount, j.symbol, rec.Recipient)
		fmt.Fprintf(&b, "Nonce: %d\n", rec.Nonce)
		fmt.Fprintf(&b, "Gas Price: %s Gwei\n", utils.FormatGwei(plan.GasPrice))
		fmt.Fprintf(&b, "Gas Limit: %d\n", plan.GasLimit)
		fmt.Fprintf(&b, "Total cost: %s %s\n", utils.FormatEther(plan.PerTxCost), j.symbol)
	case types.TxStatusSent:
		fmt.Fprintf(&b, "Wallet %d: Successfully sent %s %s to %s\n", rec.Index, amount, j.symbol, rec.Recipient)
		fmt.Fprintf(&b, "Nonce: %d\n", rec.Nonce)
		fmt.Fprintf(&b, "Transaction Hash: %s\n", rec.HashHex())
	default:
		fmt.Fprintf(&b, "Wallet %d: Failed to send %s to %s\n", rec.Index, j.symbol, rec.Recipient)
		fmt.Fprintf(&b, "Nonce: %d\n", rec.Nonce)
		if rec.TxHash != nil {
			fmt.Fprintf(&b, "Transaction Hash: %s\n", rec.HashHex())
		}
		fmt.Fprintf(&b, "Error: %s\n", rec.Error)
	}
	b.WriteString("\n")
	return j.write(b.String(), true)
}

// WriteSummary closes the run with the outcome counts
func (j *Journal) WriteSummary(report *Report) error {
	line := fmt.Sprintf("Summary: %d sent, %d simulated, %d failed of %d recipients\n",
		report.Sent, report.Simulated, report.Failed, len(report.Records))
	return j.write(line, true)
}

func (j *Journal) Close() error {
	if j.closer == nil {
		return nil
	}
	return j.closer.Close()
}

func (j *Journal) write(entry string, mirror bool) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if mirror {
		fmt.Fprint(j.console, entry)
	}
	if j.file == nil {
		return nil
	}
	if _, err := io.WriteString(j.file, entry); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write journal")
	}
	if s, ok := j.file.(syncer); ok {
		if err := s.Sync(); err != nil {
			return errors.Wrap(errors.ErrCodeStorage, err, "sync journal")
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
