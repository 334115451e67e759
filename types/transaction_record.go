package types

import "github.com/ethereum/go-ethereum/common"

type TxStatus string

const (
	TxStatusSimulated TxStatus = "simulated"
	TxStatusSent      TxStatus = "sent"
	TxStatusFailed    TxStatus = "failed"
)

// TransactionRecord is the local view of one transfer in a distribution run
type TransactionRecord struct {
	Index     int
	Recipient string
	Nonce     uint64
	Status    TxStatus
	TxHash    *common.Hash
	Error     string
}

func (r TransactionRecord) HashHex() string {
	if r.TxHash == nil {
		return ""
	}
	return r.TxHash.Hex()
}
