package distributor

import (
	"bytes"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mezonai/poldrop/errors"
	"github.com/mezonai/poldrop/jsonx"
	"github.com/mezonai/poldrop/types"
)

// LoadRecipients reads recipient addresses from either an aggregate records
// file (JSON array) or an addresses-only file (JSON object). Addresses are
// returned verbatim in file order.
func LoadRecipients(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.NewError(errors.ErrCodeNoRecipientFile, errors.ErrMsgNoRecipientPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrCodeNoRecipientFile, errors.ErrMsgNoRecipientFile, path)
		}
		return nil, errors.Wrap(errors.ErrCodeNoRecipientFile, err, "read "+path)
	}

	var addresses []string
	switch trimmed := bytes.TrimSpace(data); {
	case bytes.HasPrefix(trimmed, []byte("[")):
		var records []types.KeyRecord
		if err := jsonx.Unmarshal(trimmed, &records); err != nil {
			return nil, errors.Wrap(errors.ErrCodeNoRecipientFile, err, "parse "+path)
		}
		for _, rec := range records {
			addresses = append(addresses, rec.PublicKey)
		}
	case bytes.HasPrefix(trimmed, []byte("{")):
		var book types.AddressBook
		if err := jsonx.Unmarshal(trimmed, &book); err != nil {
			return nil, errors.Wrap(errors.ErrCodeNoRecipientFile, err, "parse "+path)
		}
		addresses = book.Addresses
	default:
		return nil, errors.Newf(errors.ErrCodeNoRecipientFile, "Recipient file %s is not a JSON array or object", path)
	}

	if len(addresses) == 0 {
		return nil, errors.Newf(errors.ErrCodeNoRecipientFile, errors.ErrMsgEmptyRecipientFile, path)
	}
	return addresses, nil
}

// ParseRecipient validates a 20-byte hex address. All-lower and all-upper
// input is accepted as is; mixed case must match the EIP-55 checksum.
func ParseRecipient(s string) (common.Address, error) {
	raw := strings.TrimSpace(s)
	if !common.IsHexAddress(raw) {
		return common.Address{}, errors.Newf(errors.ErrCodeInvalidAddress, errors.ErrMsgInvalidAddress, s)
	}

	addr := common.HexToAddress(raw)
	body := raw
	if len(body) == 2*common.AddressLength+2 {
		body = body[2:]
	}
	if hasMixedCase(body) && body != addr.Hex()[2:] {
		return common.Address{}, errors.Newf(errors.ErrCodeInvalidAddress, errors.ErrMsgBadChecksum, s)
	}
	return addr, nil
}

func hasMixedCase(s string) bool {
	return strings.ToLower(s) != s && strings.ToUpper(s) != s
}
