package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aouyang1/go-stockforest/modelstore"

	"github.com/spf13/cobra"
	"gopkg.in/redis.v5"
)

type storeConfig struct {
	modelDir    string
	redisAddr   string
	redisPrefix string
	codec       string
	model       string
}

func (sc *storeConfig) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&(sc.modelDir), "models", "d", "models", "directory holding trained models")
	cmd.Flags().StringVar(&(sc.redisAddr), "redis", "", "address of a redis server to keep models in instead of the models directory")
	cmd.Flags().StringVar(&(sc.redisPrefix), "redis-prefix", "stockforest", "prefix of the redis keys holding models")
	cmd.Flags().StringVar(&(sc.codec), "codec", "zstd", "compression of saved models: none, zstd, s2, lz4")
}

func (sc *storeConfig) addModelFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&(sc.model), "model", "m", "", "model file or stored model name (defaults to the latest stored model)")
}

// open returns the configured store along with a function releasing its resources.
func (sc *storeConfig) open() (modelstore.Store, func() error, error) {
	codec, err := modelstore.ParseCodecType(sc.codec)
	if err != nil {
		return nil, nil, err
	}
	if sc.redisAddr != "" {
		rc := redis.NewClient(&redis.Options{Addr: sc.redisAddr})
		if err := rc.Ping().Err(); err != nil {
			rc.Close()
			return nil, nil, fmt.Errorf("connecting to redis at %s: %w", sc.redisAddr, err)
		}
		store, err := modelstore.NewRedisStore(rc, sc.redisPrefix, codec)
		if err != nil {
			rc.Close()
			return nil, nil, err
		}
		return store, rc.Close, nil
	}
	store, err := modelstore.NewFileStore(sc.modelDir, codec)
	if err != nil {
		return nil, nil, err
	}
	return store, func() error { return nil }, nil
}

// loadBundle reads the model flag as a file when one exists at that path, as a stored model
// name otherwise, and falls back to the latest stored model when unset.
func (sc *storeConfig) loadBundle(ctx context.Context) (*modelstore.Bundle, error) {
	if sc.model != "" {
		if info, err := os.Stat(sc.model); err == nil && !info.IsDir() {
			slog.Debug("loading model file", "path", sc.model)
			return modelstore.LoadFile(sc.model)
		}
	}

	store, closeStore, err := sc.open()
	if err != nil {
		return nil, err
	}
	defer closeStore()

	if sc.model != "" {
		slog.Debug("loading stored model", "name", sc.model)
		return store.Load(ctx, sc.model)
	}
	name, b, err := store.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading latest model: %w", err)
	}
	slog.Debug("loaded latest model", "name", name)
	return b, nil
}
