package distributor

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/mezonai/poldrop/errors"
	"github.com/mezonai/poldrop/utils"
)

// Plan is the cost model of one run, computed once from live chain state
type Plan struct {
	Sender         common.Address
	ChainID        uint64
	SenderBalance  *uint256.Int
	BaseNonce      uint64
	GasPrice       *uint256.Int
	GasLimit       uint64
	Amount         *uint256.Int
	GasCost        *uint256.Int
	PerTxCost      *uint256.Int
	TotalCost      *uint256.Int
	RecipientCount int
}

// NewPlan derives the per-tx and total costs. A product or sum that does not
// fit in 256 bits can never be covered by a balance and is reported as
// insufficient balance.
func NewPlan(sender common.Address, chainID uint64, balance *uint256.Int, baseNonce uint64,
	gasPrice *uint256.Int, gasLimit uint64, amount *uint256.Int, recipientCount int, symbol string) (*Plan, error) {
	if recipientCount < 1 {
		return nil, errors.NewError(errors.ErrCodeNoRecipientFile, "No recipients to pay")
	}

	overflow := func() error {
		return errors.Newf(errors.ErrCodeInsufficientBalance, errors.ErrMsgInsufficientBalance,
			"more than 2^256 wei", symbol, utils.FormatEther(balance), symbol)
	}

	gasCost, over := new(uint256.Int).MulOverflow(gasPrice, uint256.NewInt(gasLimit))
	if over {
		return nil, overflow()
	}
	perTx, over := new(uint256.Int).AddOverflow(amount, gasCost)
	if over {
		return nil, overflow()
	}
	total, over := new(uint256.Int).MulOverflow(perTx, uint256.NewInt(uint64(recipientCount)))
	if over {
		return nil, overflow()
	}

	return &Plan{
		Sender:         sender,
		ChainID:        chainID,
		SenderBalance:  balance.Clone(),
		BaseNonce:      baseNonce,
		GasPrice:       gasPrice.Clone(),
		GasLimit:       gasLimit,
		Amount:         amount.Clone(),
		GasCost:        gasCost,
		PerTxCost:      perTx,
		TotalCost:      total,
		RecipientCount: recipientCount,
	}, nil
}

// Affordable reports whether the balance covers every transfer and its gas
func (p *Plan) Affordable() bool {
	return !p.SenderBalance.Lt(p.TotalCost)
}

// NonceFor returns the nonce of the 1-based item i
func (p *Plan) NonceFor(i int) uint64 {
	return p.BaseNonce + uint64(i-1)
}

// Shortfall is how much wei is missing to cover the plan
func (p *Plan) Shortfall() *uint256.Int {
	if p.Affordable() {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(p.TotalCost, p.SenderBalance)
}
