package kv

import (
	"context"
	"time"

	"github.com/okian/ideaboard/pkg/logger"
	"github.com/okian/ideaboard/pkg/metrics"
)

// Instrument wraps s so every call is logged at debug level with its duration
// and recorded in the storage metrics under backend. The result implements
// Batcher only when s does.
func Instrument(s Store, backend string, log logger.Logger) Store {
	if log == nil {
		log = logger.Nop()
	}
	base := &instrumented{inner: s, backend: backend, log: log}
	if b, ok := s.(Batcher); ok {
		return &instrumentedBatcher{instrumented: base, batch: b}
	}
	return base
}

type instrumented struct {
	inner   Store
	backend string
	log     logger.Logger
}

func (i *instrumented) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	val, found, err := i.inner.Get(ctx, key)
	i.observe(ctx, "get", key, err, time.Since(start), logger.Bool("found", found))
	return val, found, err
}

func (i *instrumented) Set(ctx context.Context, key, value string) error {
	start := time.Now()
	err := i.inner.Set(ctx, key, value)
	i.observe(ctx, "set", key, err, time.Since(start), logger.Int("bytes", len(value)))
	return err
}

func (i *instrumented) Close() error {
	err := i.inner.Close()
	if err != nil {
		i.log.Warn(context.Background(), "kv_close", logger.String("backend", i.backend), logger.Error(err))
	}
	return err
}

// Unwrap returns the wrapped store.
func (i *instrumented) Unwrap() Store { return i.inner }

func (i *instrumented) observe(ctx context.Context, op, key string, err error, d time.Duration, extra ...logger.Field) {
	metrics.RecordStorageOp(i.backend, op, err, d)

	fields := append([]logger.Field{
		logger.String("backend", i.backend),
		logger.String("key", key),
		logger.Duration("duration", d),
	}, extra...)
	if err != nil {
		i.log.Info(ctx, "kv_"+op, append(fields, logger.Error(err))...)
		return
	}
	i.log.Debug(ctx, "kv_"+op, fields...)
}

type instrumentedBatcher struct {
	*instrumented
	batch Batcher
}

func (i *instrumentedBatcher) SetMany(ctx context.Context, values map[string]string) error {
	start := time.Now()
	err := i.batch.SetMany(ctx, values)
	i.observe(ctx, "set_many", "", err, time.Since(start), logger.Int("keys", len(values)))
	return err
}
