package entity_test

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/soyart/mevblocker-feed/entity"
	"github.com/soyart/mevblocker-feed/feed"
	"github.com/soyart/mevblocker-feed/txdecode"
)

func decodeResult(t *testing.T, raw string, hash string, from string) feed.Result {
	t.Helper()

	tx, err := txdecode.Decode(json.RawMessage(raw))
	require.NoError(t, err)

	return feed.Result{
		Tx:   tx,
		Hash: common.HexToHash(hash),
		From: common.HexToAddress(from),
		Raw:  json.RawMessage(raw),
	}
}

func TestFromResultDynamicFee(t *testing.T) {
	res := decodeResult(t, `{
		"type": "0x2",
		"nonce": "0x1",
		"to": "0xF3DE3C0d654FDa23daD170f0f320a92172509127",
		"value": "0x0",
		"gas": "0x5208",
		"maxFeePerGas": "0x3b9aca00",
		"maxPriorityFeePerGas": "0x3b9aca00",
		"input": "0x",
		"chainId": "0x1"
	}`,
		"0xE2E1255ea1d8f60A0867095253BEAc0819C86b4e5341cF30c90D23a702a3Fa6E",
		"0xAB10B06F30a148Ff6cFE0D1Ee5441A7D2643A610",
	)

	pending := entity.FromResult(res)

	require.Equal(t, "0xe2e1255ea1d8f60a0867095253beac0819c86b4e5341cf30c90d23a702a3fa6e", pending.Hash)
	require.Equal(t, "0xab10b06f30a148ff6cfe0d1ee5441a7d2643a610", pending.From)
	require.Equal(t, uint8(2), pending.Type)
	require.Equal(t, uint64(1), pending.Nonce)
	require.Equal(t, "0xf3de3c0d654fda23dad170f0f320a92172509127", pending.To)
	require.Equal(t, "0", pending.Value)
	require.Equal(t, uint64(21000), pending.Gas)
	require.Equal(t, "1000000000", pending.GasFeeCap)
	require.Equal(t, "1000000000", pending.GasTipCap)
	require.Empty(t, pending.GasPrice)
	require.Empty(t, pending.Input)
}

func TestFromResultLegacy(t *testing.T) {
	res := decodeResult(t, `{
		"nonce": "0x1",
		"gasPrice": "0x171a390d1",
		"gas": "0xb6bd",
		"to": "0x8b6301d34de337698ba27e01a30b74799aed7b4a",
		"value": "0x0",
		"data": "0x1234"
	}`,
		"0xbfb35a8a3e435b7d78ab3c187904fd9bb72ef0e0fd2c28b5d979f71f01d2fca5",
		"0x29ef51af25c37f274c994ea520e3925772ac1bd3",
	)

	pending := entity.FromResult(res)

	require.Equal(t, uint8(0), pending.Type)
	require.Equal(t, "6201512145", pending.GasPrice)
	require.Empty(t, pending.GasFeeCap)
	require.Empty(t, pending.GasTipCap)
	require.Equal(t, "1234", pending.Input)
}

func TestFromResultContractCreation(t *testing.T) {
	res := decodeResult(t, `{
		"nonce": "0x0",
		"gasPrice": "0x1",
		"gas": "0xb6bd",
		"to": null,
		"value": "0x0",
		"data": "0x6001600101"
	}`,
		"0xbfb35a8a3e435b7d78ab3c187904fd9bb72ef0e0fd2c28b5d979f71f01d2fca5",
		"0x29ef51af25c37f274c994ea520e3925772ac1bd3",
	)

	pending := entity.FromResult(res)
	require.Empty(t, pending.To)
}
