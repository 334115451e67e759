package distributor

import (
	"crypto/ecdsa"
	"os"
	"strings"
	"unicode"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mezonai/poldrop/errors"
)

const privateKeyHexLen = 66

// LoadPrivateKey reads the sender key from a credential file
func LoadPrivateKey(path string) (*ecdsa.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrCodeMissingCredentialFile, errors.ErrMsgMissingCredentialFile, path)
		}
		return nil, errors.Wrap(errors.ErrCodeMissingCredentialFile, err, "read "+path)
	}
	return ParsePrivateKey(string(raw))
}

// ParsePrivateKey accepts a hex key with or without 0x. All whitespace,
// including line breaks inside the key, is ignored.
func ParsePrivateKey(raw string) (*ecdsa.PrivateKey, error) {
	key := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if !strings.HasPrefix(key, "0x") && !strings.HasPrefix(key, "0X") {
		key = "0x" + key
	}
	if len(key) != privateKeyHexLen {
		return nil, errors.Newf(errors.ErrCodeInvalidPrivateKeyFormat, errors.ErrMsgInvalidKeyLength, len(key))
	}

	b, err := hexutil.Decode("0x" + key[2:])
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPrivateKeyFormat, err, errors.ErrMsgInvalidKeyEncoding)
	}
	priv, err := crypto.ToECDSA(b)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPrivateKeyFormat, err, errors.ErrMsgInvalidKeyScalar)
	}
	return priv, nil
}

// SenderAddress is the checksum address controlled by key
func SenderAddress(key *ecdsa.PrivateKey) string {
	return crypto.PubkeyToAddress(key.PublicKey).Hex()
}
