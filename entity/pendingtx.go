package entity

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/core/types"

	"github.com/soyart/mevblocker-feed/feed"
)

// PendingTx is a flattened pending transaction as stored in Redis.
type PendingTx struct {
	Hash  string `json:"hash"` // lowercase hash string, as supplied by the feed
	From  string `json:"from"` // lowercase sender address, as supplied by the feed
	Type  uint8  `json:"type"`
	Nonce uint64 `json:"nonce"`
	To    string `json:"to,omitempty"` // empty for contract creation
	Value string `json:"value"`        // decimal string
	Gas   uint64 `json:"gas"`

	// GasPrice for legacy and access-list txs, the fee caps otherwise.
	GasPrice  string `json:"gasPrice,omitempty"`
	GasFeeCap string `json:"maxFeePerGas,omitempty"`
	GasTipCap string `json:"maxPriorityFeePerGas,omitempty"`

	Input string `json:"input"` // Hex-encoded calldata
}

// FromResult flattens a decoded feed result. res.Tx must be non-nil.
func FromResult(res feed.Result) PendingTx {
	tx := res.Tx

	pending := PendingTx{
		Hash:  strings.ToLower(res.Hash.Hex()),
		From:  strings.ToLower(res.From.Hex()),
		Type:  tx.Type(),
		Nonce: tx.Nonce(),
		Value: tx.Value().String(),
		Gas:   tx.Gas(),
		Input: hex.EncodeToString(tx.Data()),
	}

	if to := tx.To(); to != nil {
		pending.To = strings.ToLower(to.Hex())
	}

	switch tx.Type() {
	case types.LegacyTxType, types.AccessListTxType:
		pending.GasPrice = tx.GasPrice().String()
	default:
		pending.GasFeeCap = tx.GasFeeCap().String()
		pending.GasTipCap = tx.GasTipCap().String()
	}

	return pending
}
