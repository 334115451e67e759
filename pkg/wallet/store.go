package wallet

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mezonai/poldrop/errors"
	"github.com/mezonai/poldrop/jsonx"
	"github.com/mezonai/poldrop/types"
	"github.com/mezonai/poldrop/utils"
)

// Key material is written owner-readable only
const filePerm os.FileMode = 0o600

// BatchFiles lists every file written for one generation run
type BatchFiles struct {
	RecordFiles   []string
	AggregateFile string
	AddressesFile string
}

func RecordFileName(stamp string, walletNumber int) string {
	return fmt.Sprintf("wallet_%s_%d.json", stamp, walletNumber)
}

func AggregateFileName(stamp string) string {
	return fmt.Sprintf("all_wallets_%s.json", stamp)
}

func AddressesFileName(stamp string) string {
	return fmt.Sprintf("public_addresses_%s.json", stamp)
}

// WriteRecord writes a single wallet file into dir
func WriteRecord(dir, stamp string, rec types.KeyRecord) (string, error) {
	path := filepath.Join(dir, RecordFileName(stamp, rec.WalletNumber))
	if err := jsonx.WriteFile(path, rec, filePerm); err != nil {
		return "", errors.Wrap(errors.ErrCodeStorage, err, "write "+path)
	}
	return path, nil
}

// WriteBatch writes one file per record, the aggregate file and the
// addresses-only file. Every file of a batch shares the stamp taken from now.
func WriteBatch(dir string, records []types.KeyRecord, now time.Time) (*BatchFiles, error) {
	if len(records) == 0 {
		return nil, errors.NewError(errors.ErrCodeInvalidCount, errors.ErrMsgCountTooLow)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create output directory")
	}

	stamp := utils.FileStamp(now)
	files := &BatchFiles{RecordFiles: make([]string, 0, len(records))}
	for _, rec := range records {
		path, err := WriteRecord(dir, stamp, rec)
		if err != nil {
			return nil, err
		}
		files.RecordFiles = append(files.RecordFiles, path)
	}

	files.AggregateFile = filepath.Join(dir, AggregateFileName(stamp))
	if err := jsonx.WriteFile(files.AggregateFile, records, filePerm); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "write "+files.AggregateFile)
	}

	files.AddressesFile = filepath.Join(dir, AddressesFileName(stamp))
	book := types.NewAddressBook(Addresses(records), now)
	if err := jsonx.WriteFile(files.AddressesFile, book, filePerm); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "write "+files.AddressesFile)
	}
	return files, nil
}

// LoadRecords reads an aggregate file
func LoadRecords(path string) ([]types.KeyRecord, error) {
	var records []types.KeyRecord
	if err := jsonx.ReadFile(path, &records); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read "+path)
	}
	return records, nil
}

// LoadAddressBook reads an addresses-only file
func LoadAddressBook(path string) (*types.AddressBook, error) {
	var book types.AddressBook
	if err := jsonx.ReadFile(path, &book); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read "+path)
	}
	return &book, nil
}

// Addresses extracts the public addresses in record order
func Addresses(records []types.KeyRecord) []string {
	addresses := make([]string, len(records))
	for i, rec := range records {
		addresses[i] = rec.PublicKey
	}
	return addresses
}
