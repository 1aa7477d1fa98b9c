// Package txpatch repairs pending transaction objects from the MEV Blocker
// searchers feed. The feed strips signature fields from unconfirmed
// transactions, which makes go-ethereum's strict JSON decoder reject them.
// Patch fills the missing fields with placeholder values that are
// syntactically valid but cryptographically meaningless.
package txpatch

import (
	"bytes"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// Record is one transaction object as received from the feed, keyed by JSON
// field name with values kept as raw JSON.
type Record map[string]json.RawMessage

var (
	jsonNull   = json.RawMessage("null")
	zeroHex    = json.RawMessage(`"0x0"`)
	emptyBytes = json.RawMessage(`"0x"`)
	emptyArray = json.RawMessage(`[]`)
)

// Patch returns a copy of raw with placeholder signature fields and feed
// quirks normalized, so that the result decodes with types.Transaction
// whenever raw itself was well-formed apart from the missing signature.
// Fields already present with non-null values are never overwritten, so
// patching an already-signed or already-patched record is a no-op for those
// fields. Patch never fails; records broken in other ways surface as decode
// errors later.
func Patch(raw Record) Record {
	patched := make(Record, len(raw)+4)
	for name, value := range raw {
		patched[name] = value
	}

	// Untyped records are legacy transactions.
	if isNull(patched["type"]) {
		patched["type"] = zeroHex
	}

	// The feed sends calldata under "data"; the decoder wants "input".
	if data, ok := patched["data"]; ok {
		if isNull(patched["input"]) {
			if isNull(data) {
				data = emptyBytes
			}
			patched["input"] = data
		}
		delete(patched, "data")
	}

	// Blob fields are required for type 0x3 but omitted by the feed.
	// Other types must not receive them.
	if txType(patched) == types.BlobTxType {
		if isNull(patched["blobVersionedHashes"]) {
			patched["blobVersionedHashes"] = emptyArray
		}
		if isNull(patched["maxFeePerBlobGas"]) {
			patched["maxFeePerBlobGas"] = zeroHex
		}
	}

	if isNull(patched["r"]) {
		patched["r"] = zeroHex
	}
	if isNull(patched["s"]) {
		patched["s"] = zeroHex
	}

	// The all-zero triple is the only placeholder the decoder accepts for
	// every type: its signature sanity check runs only when v, r, or s is
	// non-zero. v is left alone when yParity is present, since the decoder
	// derives v from yParity and rejects a mismatching pair.
	if isNull(patched["v"]) && isNull(patched["yParity"]) {
		patched["v"] = zeroHex
	}

	return patched
}

func isNull(value json.RawMessage) bool {
	return len(value) == 0 || bytes.Equal(value, jsonNull)
}

func txType(rec Record) uint64 {
	var typeHex string
	if err := json.Unmarshal(rec["type"], &typeHex); err != nil {
		return 0
	}

	txType, err := hexutil.DecodeUint64(typeHex)
	if err != nil {
		return 0
	}

	return txType
}
