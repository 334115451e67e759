package interfaces

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ChainClient is the JSON-RPC surface a distribution run needs. One instance
// is shared by every call of a run.
type ChainClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	// WaitForReceipt blocks until the transaction is included or the client's receipt timeout expires
	WaitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	Close()
}
