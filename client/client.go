package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/mezonai/poldrop/logx"
	"github.com/mezonai/poldrop/ratelimit"
	"github.com/mezonai/poldrop/utils"
)

const (
	defaultReceiptTimeout      = 120 * time.Second
	defaultReceiptPollInterval = time.Second
)

type Config struct {
	Endpoint            string
	ReceiptTimeout      time.Duration
	ReceiptPollInterval time.Duration

	// MaxRequestsPerSecond throttles every RPC call; 0 disables throttling
	MaxRequestsPerSecond int
}

// EthClient is a single JSON-RPC session shared by every call of a run
type EthClient struct {
	*ethclient.Client
	cfg       Config
	rpcClient *rpc.Client
	limiter   *ratelimit.RateLimiter
}

// NewClient dials the endpoint. HTTP endpoints are not contacted until the first call.
func NewClient(ctx context.Context, cfg Config) (*EthClient, error) {
	rpcCli, err := rpc.DialContext(ctx, cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.Endpoint, err)
	}
	return NewClientFromRPC(rpcCli, cfg), nil
}

// NewClientFromRPC wraps an existing rpc client, e.g. an in-process one
func NewClientFromRPC(rpcCli *rpc.Client, cfg Config) *EthClient {
	if cfg.ReceiptTimeout <= 0 {
		cfg.ReceiptTimeout = defaultReceiptTimeout
	}
	if cfg.ReceiptPollInterval <= 0 {
		cfg.ReceiptPollInterval = defaultReceiptPollInterval
	}
	limiter := ratelimit.NewRateLimiter(&ratelimit.RateLimiterConfig{
		MaxRequests: cfg.MaxRequestsPerSecond,
		WindowSize:  time.Second,
	})
	return &EthClient{
		Client:    ethclient.NewClient(rpcCli),
		cfg:       cfg,
		rpcClient: rpcCli,
		limiter:   limiter,
	}
}

func (c *EthClient) Endpoint() string {
	return c.cfg.Endpoint
}

func (c *EthClient) RPC() *rpc.Client {
	return c.rpcClient
}

// WaitForReceipt polls eth_getTransactionReceipt until the transaction is
// included. A receipt that is not yet available keeps the loop going; any
// other RPC error, or the receipt timeout, ends it.
func (c *EthClient) WaitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ReceiptTimeout)
	defer cancel()

	ticker := time.NewTicker(c.cfg.ReceiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("timed out after %s waiting for receipt of %s", c.cfg.ReceiptTimeout, txHash.Hex())
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("get receipt %s: %w", txHash.Hex(), err)
		}
		logx.Debug("CLIENT", "Receipt not yet available for ", utils.ShortenLog(txHash.Hex()))

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("timed out after %s waiting for receipt of %s", c.cfg.ReceiptTimeout, txHash.Hex())
		case <-ticker.C:
		}
	}
}

// Throttled RPC calls. Each one waits for a slot before reaching the endpoint.

func (c *EthClient) ChainID(ctx context.Context) (*big.Int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.Client.ChainID(ctx)
}

func (c *EthClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	return c.Client.PendingNonceAt(ctx, account)
}

func (c *EthClient) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.Client.BalanceAt(ctx, account, blockNumber)
}

func (c *EthClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.Client.SuggestGasPrice(ctx)
}

func (c *EthClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	return c.Client.SendTransaction(ctx, tx)
}

func (c *EthClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.Client.TransactionReceipt(ctx, txHash)
}
