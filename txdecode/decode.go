// Package txdecode turns partial pending transaction records from the MEV
// Blocker feed into fully-typed go-ethereum transactions. It patches each
// record with txpatch before handing it to the strict types.Transaction
// decoder, and classifies decode failures into a small error taxonomy so
// callers can tell an unknown type from a missing or malformed field.
package txdecode

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	"github.com/soyart/mevblocker-feed/txpatch"
)

var missingFieldPattern = regexp.MustCompile(`missing required field '([^']+)'`)

// Decode patches raw and decodes it into a typed transaction. The returned
// transaction carries the placeholder signature inserted by txpatch, so its
// hash and sender are not meaningful. Decode succeeds whenever raw contains
// all required non-signature fields for its declared type, regardless of
// whether signature fields were present upstream.
func Decode(raw json.RawMessage) (*types.Transaction, error) {
	var rec txpatch.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, errors.Wrap(err, "pending tx is not a JSON object")
	}

	patched := txpatch.Patch(rec)

	encoded, err := json.Marshal(patched)
	if err != nil {
		return nil, errors.Wrap(err, "failed to re-encode patched tx")
	}

	tx := new(types.Transaction)
	if err := tx.UnmarshalJSON(encoded); err != nil {
		return nil, classify(err, patched)
	}

	return tx, nil
}

// classify maps the strict decoder's failures onto the package error types.
// Unrecognized failures are passed through with context.
func classify(err error, rec txpatch.Record) error {
	if errors.Is(err, types.ErrTxTypeNotSupported) {
		var typeHex string
		_ = json.Unmarshal(rec["type"], &typeHex)
		return UnknownTypeError{Type: typeHex}
	}

	msg := err.Error()
	if match := missingFieldPattern.FindStringSubmatch(msg); match != nil {
		return MissingFieldError{Field: match[1]}
	}

	// The decoder reports a missing v as a missing v/yParity pair.
	if strings.Contains(msg, "yParity") && strings.Contains(msg, "missing") {
		return MissingFieldError{Field: "v"}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return MalformedFieldError{Field: typeErr.Field, Err: err}
	}

	return errors.Wrap(err, "failed to decode pending tx")
}
