package wallet

import (
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mezonai/poldrop/errors"
	"github.com/mezonai/poldrop/logx"
	"github.com/mezonai/poldrop/types"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/text/unicode/norm"
)

const (
	// EntropyBits yields a 12-word mnemonic
	EntropyBits   = 128
	MnemonicWords = 12

	maxDeriveAttempts = 8
)

// Wallet is a key-pair derived from a mnemonic
type Wallet struct {
	PrivateKey *ecdsa.PrivateKey
	Address    common.Address
	Mnemonic   string
}

// FromMnemonic derives the wallet for a 12-word phrase. The private key is
// the first 32 bytes of the BIP-39 seed (empty passphrase), so the same
// phrase always yields the same key and address.
func FromMnemonic(mnemonic string) (*Wallet, error) {
	phrase := NormalizeMnemonic(mnemonic)
	if len(strings.Fields(phrase)) != MnemonicWords || !bip39.IsMnemonicValid(phrase) {
		return nil, errors.NewError(errors.ErrCodeInvalidMnemonic, "mnemonic is not a valid 12-word BIP-39 phrase")
	}

	seed := bip39.NewSeed(phrase, "")
	key, err := crypto.ToECDSA(seed[:32])
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMnemonic, err, "seed does not yield a valid secp256k1 key")
	}

	return &Wallet{
		PrivateKey: key,
		Address:    crypto.PubkeyToAddress(key.PublicKey),
		Mnemonic:   phrase,
	}, nil
}

// NormalizeMnemonic applies NFKD, lower-cases and collapses whitespace
func NormalizeMnemonic(mnemonic string) string {
	return strings.Join(strings.Fields(strings.ToLower(norm.NFKD.String(mnemonic))), " ")
}

// PrivateKeyHex returns the 0x-prefixed 32-byte key
func (w *Wallet) PrivateKeyHex() string {
	return hexutil.Encode(crypto.FromECDSA(w.PrivateKey))
}

// Record converts the wallet into its on-disk form
func (w *Wallet) Record(index int, createdAt time.Time) types.KeyRecord {
	return types.KeyRecord{
		WalletNumber: index,
		PublicKey:    w.Address.Hex(),
		PrivateKey:   w.PrivateKeyHex(),
		Mnemonic:     w.Mnemonic,
		CreatedAt:    types.NewTimestamp(createdAt),
	}
}

// Generator draws fresh mnemonics from an entropy source
type Generator struct {
	entropy io.Reader
	now     func() time.Time
}

// NewGenerator uses crypto/rand when entropy is nil
func NewGenerator(entropy io.Reader) *Generator {
	if entropy == nil {
		entropy = rand.Reader
	}
	return &Generator{
		entropy: entropy,
		now:     time.Now,
	}
}

// WithClock overrides the creation timestamp source
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

func (g *Generator) NewMnemonic() (string, error) {
	entropy := make([]byte, EntropyBits/8)
	if _, err := io.ReadFull(g.entropy, entropy); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "read entropy")
	}
	return bip39.NewMnemonic(entropy)
}

// NewWallet draws mnemonics until one derives a valid key. Failure is
// astronomically unlikely with real entropy.
func (g *Generator) NewWallet() (*Wallet, error) {
	for attempt := 0; attempt < maxDeriveAttempts; attempt++ {
		mnemonic, err := g.NewMnemonic()
		if err != nil {
			return nil, err
		}
		w, err := FromMnemonic(mnemonic)
		if err == nil {
			return w, nil
		}
		logx.Warn("WALLET", "Discarding mnemonic: ", err)
	}
	return nil, errors.NewError(errors.ErrCodeInternal, fmt.Sprintf("no valid key after %d attempts", maxDeriveAttempts))
}

// Generate creates the record for wallet number index
func (g *Generator) Generate(index int) (types.KeyRecord, error) {
	w, err := g.NewWallet()
	if err != nil {
		return types.KeyRecord{}, err
	}
	return w.Record(index, g.now()), nil
}

// GenerateBatch creates count records numbered from 1
func (g *Generator) GenerateBatch(count int) ([]types.KeyRecord, error) {
	if count < 1 {
		return nil, errors.NewError(errors.ErrCodeInvalidCount, errors.ErrMsgCountTooLow)
	}

	records := make([]types.KeyRecord, 0, count)
	for i := 1; i <= count; i++ {
		rec, err := g.Generate(i)
		if err != nil {
			return nil, fmt.Errorf("wallet #%d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
