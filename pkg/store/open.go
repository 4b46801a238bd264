package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// Open builds the driver selected by STORE_DRIVER and wraps it with metrics.
func Open(ctx context.Context) (Store, error) {
	s, err := open(ctx, config.StoreDriver())
	if err != nil {
		return nil, err
	}
	return Instrument(s), nil
}

func open(ctx context.Context, driver string) (Store, error) {
	switch driver {
	case "memory":
		return NewMemory(), nil
	case "file":
		return NewFile(config.StorePath())
	case "redis":
		return DialRedis(ctx, RedisOptions{
			Addr:     config.RedisAddr(),
			Password: config.RedisPassword(),
		})
	case "sql":
		return OpenSQL(config.DatabaseDriver(), config.DatabaseDSN())
	case "s3":
		return NewS3(ctx, S3Options{
			Bucket:   config.S3Bucket(),
			Region:   config.S3Region(),
			Key:      config.S3Key(),
			Secret:   config.S3Secret(),
			Endpoint: config.S3Endpoint(),
			Prefix:   config.S3Prefix(),
		})
	default:
		return nil, fmt.Errorf("store: unknown driver %q", driver)
	}
}

// Instrument counts every operation of s in metrics.StoreOps.
func Instrument(s Store) Store {
	if _, ok := s.(*instrumented); ok {
		return s
	}
	return &instrumented{Store: s}
}

type instrumented struct {
	Store
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := i.Store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		metrics.ObserveStore(i.Name(), "get", nil)
	} else {
		metrics.ObserveStore(i.Name(), "get", err)
	}
	return v, err
}

func (i *instrumented) Set(ctx context.Context, key string, value []byte) error {
	err := i.Store.Set(ctx, key, value)
	metrics.ObserveStore(i.Name(), "set", err)
	return err
}

func (i *instrumented) Remove(ctx context.Context, key string) error {
	err := i.Store.Remove(ctx, key)
	metrics.ObserveStore(i.Name(), "remove", err)
	return err
}

func (i *instrumented) Close() error { return Close(i.Store) }
