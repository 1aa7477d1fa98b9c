// Package feed subscribes to the MEV Blocker searchers stream of partial
// pending transactions and decodes each message into a typed transaction.
package feed

import (
	"context"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/soyart/mevblocker-feed/txdecode"
)

// SearchersURL is the public MEV Blocker searchers websocket endpoint.
const SearchersURL = "wss://searchers.mevblocker.io"

const subscribePartialPendingTxs = "mevBlocker_subscribePartialPendingTransactions"

// Result is one feed message after decoding. Exactly one of Tx and Err is
// set. Hash and From come from the feed payload, not from the decoded
// transaction: the placeholder signature makes tx.Hash() and sender recovery
// meaningless.
type Result struct {
	Tx   *types.Transaction
	Hash common.Hash
	From common.Address
	Raw  json.RawMessage
	Err  error
}

// Subscription is a live pending-tx stream. It is not restartable; once the
// upstream connection drops, Results is closed and Err yields the cause.
type Subscription struct {
	sub     *rpc.ClientSubscription
	results chan Result
	err     chan error
}

// Subscribe opens the partial pending transaction stream on client, which
// must be connected over websocket. Each notification is patched and decoded;
// records the decoder rejects are emitted as Results carrying the error, so
// one malformed message never stops the stream.
func Subscribe(ctx context.Context, client *rpc.Client, logger *zap.Logger, buffer int) (*Subscription, error) {
	rawChan := make(chan json.RawMessage, buffer)

	sub, err := client.Subscribe(ctx, "eth", rawChan, subscribePartialPendingTxs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to subscribe to partial pending txs")
	}

	s := &Subscription{
		sub:     sub,
		results: make(chan Result, buffer),
		err:     make(chan error, 1),
	}

	go s.decodeLoop(ctx, rawChan, logger)

	return s, nil
}

// Results returns the stream of decoded pending transactions. The channel is
// closed when the subscription ends for any reason.
func (s *Subscription) Results() <-chan Result {
	return s.results
}

// Err reports why the subscription ended. It yields at most one error and is
// closed after Results is closed; a clean Unsubscribe yields none.
func (s *Subscription) Err() <-chan error {
	return s.err
}

func (s *Subscription) Unsubscribe() {
	s.sub.Unsubscribe()
}

func (s *Subscription) decodeLoop(ctx context.Context, rawChan <-chan json.RawMessage, logger *zap.Logger) {
	defer close(s.err)
	defer close(s.results)

	for {
		select {
		case <-ctx.Done():
			return

		case err := <-s.sub.Err():
			if err != nil {
				s.err <- err
			}
			return

		case raw := <-rawChan:
			res := decodeOne(raw, logger)

			select {
			case <-ctx.Done():
				return
			case s.results <- res:
			}
		}
	}
}

func decodeOne(raw json.RawMessage, logger *zap.Logger) Result {
	res := Result{Raw: raw}

	// hash and from are supplied by the feed and dropped by the decoder.
	var envelope struct {
		Hash common.Hash    `json:"hash"`
		From common.Address `json:"from"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		res.Hash = envelope.Hash
		res.From = envelope.From
	}

	tx, err := txdecode.Decode(raw)
	if err != nil {
		// Log the original payload, the decode error alone does not
		// identify the offending message.
		logger.Error("failed to decode pending tx", zap.Error(err), zap.ByteString("raw", raw))
		res.Err = err

		return res
	}

	res.Tx = tx

	return res
}
