package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/soyart/mevblocker-feed/config"
	"github.com/soyart/mevblocker-feed/entity"
	"github.com/soyart/mevblocker-feed/feed"
	"github.com/soyart/mevblocker-feed/rdb"
)

func panicf(fmtString string, vars ...interface{}) {
	panic(fmt.Sprintf(fmtString, vars...))
}

func main() {
	configFile := "./config/config.yaml"

	conf, err := config.From(configFile)
	if err != nil {
		panicf("failed to read config %s: %s", configFile, err.Error())
	}

	logger, err := zap.NewProduction(zap.Fields(zap.String("serviceLabel", conf.Label), zap.String("mode", conf.Mode.String())))
	if err != nil {
		panicf("failed to init logger: %s", err.Error())
	}

	confJson, err := json.Marshal(conf)
	if err != nil {
		panicf("failed to json marshal conf: %s", err.Error())
	}

	logger.Info("config", zap.String("values", string(confJson)))

	ctx := context.Background()
	client, err := rpc.DialContext(ctx, conf.NodeUrl)
	if err != nil {
		panicf("failed to dial websocket node %s: %s", conf.NodeUrl, err.Error())
	}

	logger.Info("created new rpc client", zap.String("url", conf.NodeUrl))

	rdw, err := rdb.New(conf.RedisUrl, conf.Label, logger)
	if err != nil {
		panicf("failed to create new redis wrapper client on %s: %s", conf.RedisUrl, err.Error())
	}

	logger.Info("created new redis client wrapper", zap.String("url", conf.RedisUrl))

	sub, err := feed.Subscribe(ctx, client, logger, conf.BufferSize)
	if err != nil {
		panicf("failed to subscribe to %s: %s", conf.NodeUrl, err.Error())
	}
	defer sub.Unsubscribe()

	logger.Info("subscribed to partial pending txs", zap.String("url", conf.NodeUrl))

	if err := drainFeed(ctx, logger, rdw, sub, conf); err != nil {
		logger.Error("got error in main loop", zap.String("error", err.Error()))

		panicf("main loop failed: %s", err.Error())
	}
}

func drainFeed(
	ctx context.Context,
	logger *zap.Logger,
	rdw rdb.RedisWrapper,
	sub *feed.Subscription,
	conf *config.Config,
) error {
	filter := make(map[common.Address]struct{}, len(conf.Addresses))
	for _, addr := range conf.Addresses {
		filter[addr] = struct{}{}
	}

	batchTxs := make([]entity.PendingTx, 0, conf.BatchSize)
	batchRaw := make(map[string]json.RawMessage, conf.BatchSize)

	flush := func() error {
		if len(batchTxs) > 0 {
			if err := rdw.SavePendingTxs(ctx, batchTxs); err != nil {
				return errors.Wrap(err, "failed to save pending txs to redis")
			}

			batchTxs = batchTxs[:0]
		}

		if len(batchRaw) > 0 {
			if err := rdw.SaveRawTxs(ctx, batchRaw); err != nil {
				return errors.Wrap(err, "failed to save raw txs to redis")
			}

			batchRaw = make(map[string]json.RawMessage, conf.BatchSize)
		}

		return nil
	}

	for res := range sub.Results() {
		// Malformed feed messages are counted and skipped,
		// one bad record must not stop the stream.
		if res.Err != nil {
			if err := rdw.IncrDecodeErrors(ctx); err != nil {
				logger.Warn("failed to incr decode errors", zap.String("error", err.Error()))
			}

			continue
		}

		if len(filter) > 0 {
			to := res.Tx.To()
			if to == nil {
				continue
			}

			if _, ok := filter[*to]; !ok {
				continue
			}
		}

		logger.Info("got pending tx", zap.String("hash", strings.ToLower(res.Hash.Hex())), zap.Uint8("type", res.Tx.Type()))

		switch conf.Mode {
		case config.ModeTxs:
			batchTxs = append(batchTxs, entity.FromResult(res))
			if len(batchTxs) >= conf.BatchSize {
				if err := flush(); err != nil {
					return err
				}
			}

		case config.ModeRaw:
			batchRaw[strings.ToLower(res.Hash.Hex())] = res.Raw
			if len(batchRaw) >= conf.BatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}

	if err := flush(); err != nil {
		return err
	}

	if err := <-sub.Err(); err != nil {
		return errors.Wrap(err, "subscription ended")
	}

	return nil
}
