package distributor

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// fakeChain is an in-memory ChainClient. Failures and reverts are keyed by nonce.
type fakeChain struct {
	mu sync.Mutex

	chainID  *big.Int
	nonce    uint64
	balance  *big.Int
	gasPrice *big.Int

	chainIDErr error
	balanceErr error
	sendErr    map[uint64]error
	revert     map[uint64]bool

	sent   []*ethtypes.Transaction
	closed bool
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		chainID:  big.NewInt(137),
		nonce:    42,
		balance:  new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18)),
		gasPrice: big.NewInt(30e9),
		sendErr:  make(map[uint64]error),
		revert:   make(map[uint64]bool),
	}
}

func (f *fakeChain) ChainID(ctx context.Context) (*big.Int, error) {
	if f.chainIDErr != nil {
		return nil, f.chainIDErr
	}
	return new(big.Int).Set(f.chainID), nil
}

func (f *fakeChain) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeChain) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	return new(big.Int).Set(f.balance), nil
}

func (f *fakeChain) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(f.gasPrice), nil
}

func (f *fakeChain) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.sendErr[tx.Nonce()]; err != nil {
		return err
	}
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeChain) WaitForReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tx := range f.sent {
		if tx.Hash() != txHash {
			continue
		}
		status := ethtypes.ReceiptStatusSuccessful
		if f.revert[tx.Nonce()] {
			status = ethtypes.ReceiptStatusFailed
		}
		return &ethtypes.Receipt{
			Status:      status,
			TxHash:      txHash,
			BlockNumber: big.NewInt(1000 + int64(tx.Nonce())),
		}, nil
	}
	return nil, fmt.Errorf("unknown transaction %s", txHash.Hex())
}

func (f *fakeChain) Close() {
	f.closed = true
}

func (f *fakeChain) sentNonces() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	nonces := make([]uint64, len(f.sent))
	for i, tx := range f.sent {
		nonces[i] = tx.Nonce()
	}
	return nonces
}
