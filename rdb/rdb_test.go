package rdb_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soyart/mevblocker-feed/entity"
	"github.com/soyart/mevblocker-feed/rdb"
)

func TestSavePendingTxs(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.MatchExpectationsInOrder(false)

	rdw := rdb.NewWithClient(db, "test", zap.NewNop())

	txs := []entity.PendingTx{
		{Hash: "0xaa", From: "0x01", Type: 2, Nonce: 1, Value: "0", Gas: 21000, GasFeeCap: "1000000000", GasTipCap: "0"},
		{Hash: "0xbb", From: "0x02", Type: 0, Nonce: 7, Value: "1", Gas: 21000, GasPrice: "2", Input: "1234"},
	}

	for i := range txs {
		dataJson, err := json.Marshal(txs[i])
		require.NoError(t, err)

		mock.ExpectHSet("mevblockerfeed:test:txs", txs[i].Hash, dataJson).SetVal(1)
	}

	require.NoError(t, rdw.SavePendingTxs(context.Background(), txs))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRawTxs(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.MatchExpectationsInOrder(false)

	// No label, keys are unprefixed
	rdw := rdb.NewWithClient(db, "", zap.NewNop())

	rawByHash := map[string]json.RawMessage{
		"0xaa": json.RawMessage(`{"nonce":"0x1"}`),
		"0xbb": json.RawMessage(`{"nonce":"0x2"}`),
	}

	for hash, raw := range rawByHash {
		mock.ExpectHSet("mevblockerfeed:raw", hash, []byte(raw)).SetVal(1)
	}

	require.NoError(t, rdw.SaveRawTxs(context.Background(), rawByHash))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecodeErrorsCounter(t *testing.T) {
	db, mock := redismock.NewClientMock()

	rdw := rdb.NewWithClient(db, "test", zap.NewNop())
	ctx := context.Background()

	mock.ExpectIncr("mevblockerfeed:test:decodeErrors").SetVal(1)
	require.NoError(t, rdw.IncrDecodeErrors(ctx))

	mock.ExpectGet("mevblockerfeed:test:decodeErrors").SetVal("42")
	count, err := rdw.GetDecodeErrors(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(42), count)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDecodeErrorsFirstRun(t *testing.T) {
	db, mock := redismock.NewClientMock()

	rdw := rdb.NewWithClient(db, "test", zap.NewNop())

	mock.ExpectGet("mevblockerfeed:test:decodeErrors").RedisNil()

	count, err := rdw.GetDecodeErrors(context.Background())
	require.NoError(t, err)
	require.Zero(t, count)
}
