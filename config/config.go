package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/soyart/gsl/soyutils"

	"github.com/soyart/mevblocker-feed/feed"
)

type Mode int

const (
	ModeTxs Mode = iota
	ModeRaw
)

func (m Mode) String() string {
	switch m {
	case ModeTxs:
		return "txs"
	case ModeRaw:
		return "raw"
	default:
		panic(fmt.Sprintf("bad mode: %d", m))
	}
}

type Config struct {
	Label      string `yaml:"label" json:"label"`
	ModeConfig string `yaml:"mode" json:"-"`
	Mode       Mode   `yaml:"-" json:"mode"` // Will be parsed based on ModeConfig

	NodeUrl  string `yaml:"node_url" json:"nodeUrl"`
	RedisUrl string `yaml:"redis_url" json:"redisUrl"`

	// Only store txs sent to these addresses. Empty means store everything.
	Addresses []common.Address `yaml:"addresses" json:"addresses"`

	BatchSize  int `yaml:"batch_size" json:"batchSize"`
	BufferSize int `yaml:"buffer_size" json:"bufferSize"`
}

func From(filename string) (*Config, error) {
	if envFilename, found := os.LookupEnv("CONF_FILE"); found {
		filename = envFilename
	}

	conf, err := soyutils.ReadFileYAMLPointer[Config](filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", filename)
	}

	// Defaults to 25 txs per save
	if conf.BatchSize == 0 {
		conf.BatchSize = 25
	}

	// Defaults to 256 buffered feed messages
	if conf.BufferSize == 0 {
		conf.BufferSize = 256
	}

	// Allow env override for NodeUrl
	if nodeUrl, found := os.LookupEnv("NODE_URL"); found {
		conf.NodeUrl = nodeUrl
	}

	// Defaults to the public MEV Blocker searchers endpoint
	if conf.NodeUrl == "" {
		conf.NodeUrl = feed.SearchersURL
	}

	// Allow env override for RedisUrl
	if redisUrl, found := os.LookupEnv("REDIS_URL"); found {
		// Strip protocol string
		if strings.Contains(redisUrl, "redis://") {
			urlParts := strings.Split(redisUrl, "redis://")
			if len(urlParts) < 2 {
				return nil, fmt.Errorf("bad REDIS_URL env %s", redisUrl)
			}

			redisUrl = urlParts[1]
		}

		conf.RedisUrl = redisUrl
	}

	if conf.RedisUrl == "" {
		return nil, errors.New("empty redis url")
	}

	conf.Mode = chooseMode(conf.ModeConfig)

	if mode, found := os.LookupEnv("MODE"); found {
		conf.Mode = chooseMode(mode)
	}

	if label, found := os.LookupEnv("LABEL"); found {
		conf.Label = label
	}

	return conf, nil
}

func chooseMode(modeConfig string) Mode {
	switch modeConfig {
	case "2", "raw", "raw-txs", "payloads":
		return ModeRaw
	default:
		return ModeTxs
	}
}
