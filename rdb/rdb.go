package rdb

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/soyart/gsl/concurrent"
	"go.uber.org/zap"

	"github.com/soyart/mevblocker-feed/entity"
)

type RedisWrapper interface {
	SavePendingTxs(context.Context, []entity.PendingTx) error
	SaveRawTxs(context.Context, map[string]json.RawMessage) error

	IncrDecodeErrors(context.Context) error
	GetDecodeErrors(context.Context) (uint64, error)
}

type redisWrapper struct {
	db     *redis.Client
	prefix string
	logger *zap.Logger
}

func New(redisUrl string, label string, logger *zap.Logger) (RedisWrapper, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisUrl,
	})

	if rdb == nil {
		return nil, errors.New("got nil redis client")
	}

	return NewWithClient(rdb, label, logger), nil
}

func NewWithClient(db *redis.Client, label string, logger *zap.Logger) RedisWrapper {
	prefix := "mevblockerfeed"
	if label != "" {
		prefix = prefix + ":" + label
	}

	return &redisWrapper{db: db, prefix: prefix, logger: logger}
}

func (rdw *redisWrapper) txKey() string {
	return rdw.prefix + ":txs"
}

func (rdw *redisWrapper) rawKey() string {
	return rdw.prefix + ":raw"
}

func (rdw *redisWrapper) decodeErrorsKey() string {
	return rdw.prefix + ":decodeErrors"
}

func (rdw *redisWrapper) SavePendingTxs(ctx context.Context, txs []entity.PendingTx) error {
	var wg sync.WaitGroup
	wg.Add(len(txs))
	errChan := make(chan error)

	key := rdw.txKey()
	for i := range txs {
		go func(tx entity.PendingTx) {
			defer wg.Done()

			dataJson, err := json.Marshal(tx)
			if err != nil {
				errChan <- errors.Wrap(err, "failed to marshal to json")
			}

			if err := rdw.db.HSet(ctx, key, tx.Hash, dataJson).Err(); err != nil {
				errChan <- errors.Wrapf(err, "failed to save pending tx %s", tx.Hash)
			}
		}(txs[i])
	}

	if err := concurrent.WaitAndCollectErrors(&wg, errChan); err != nil {
		return err
	}

	rdw.logger.Debug("saved pending txs", zap.Int("len", len(txs)))

	return nil
}

func (rdw *redisWrapper) SaveRawTxs(ctx context.Context, rawByHash map[string]json.RawMessage) error {
	var wg sync.WaitGroup
	wg.Add(len(rawByHash))
	errChan := make(chan error)

	key := rdw.rawKey()
	for hash, raw := range rawByHash {
		go func(hash string, raw json.RawMessage) {
			defer wg.Done()

			if err := rdw.db.HSet(ctx, key, hash, []byte(raw)).Err(); err != nil {
				errChan <- errors.Wrapf(err, "failed to save raw tx %s", hash)
			}
		}(hash, raw)
	}

	if err := concurrent.WaitAndCollectErrors(&wg, errChan); err != nil {
		return err
	}

	rdw.logger.Debug("saved raw txs", zap.Int("len", len(rawByHash)))

	return nil
}

func (rdw *redisWrapper) IncrDecodeErrors(ctx context.Context) error {
	if err := rdw.db.Incr(ctx, rdw.decodeErrorsKey()).Err(); err != nil {
		return errors.Wrap(err, "failed to incr decodeErrors")
	}

	return nil
}

func (rdw *redisWrapper) GetDecodeErrors(ctx context.Context) (uint64, error) {
	countString, err := rdw.db.Get(ctx, rdw.decodeErrorsKey()).Result()
	if err != nil {
		// No decode error recorded yet
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "failed to get decodeErrors")
	}

	count, err := strconv.ParseUint(countString, 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "failed to parse redis string to counter")
	}

	return count, nil
}
