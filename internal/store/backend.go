package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/socratiz/internal/config"
)

// Backend bundles the document store selected by configuration with the
// SQLite turn history. Turn history always lives in SQLite.
type Backend struct {
	Docs  DocumentStore
	Turns TurnRepo

	closers []func() error
}

// OpenBackend opens the SQLite database at dbPath and, for the redis
// backend, a Redis connection for documents.
func OpenBackend(ctx context.Context, cfg config.Config, dbPath string) (*Backend, error) {
	st, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	b := &Backend{Turns: st.Turns(), closers: []func() error{st.Close}}

	switch cfg.Backend {
	case config.BackendSQLite, "":
		b.Docs = st.Documents()
	case config.BackendRedis:
		rd, err := OpenRedis(ctx, RedisOptions{
			Addr:        cfg.Redis.Addr,
			Prefix:      cfg.Redis.Prefix,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		if err != nil {
			st.Close()
			return nil, err
		}
		b.Docs = rd
		b.closers = append(b.closers, rd.Close)
	default:
		st.Close()
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	return b, nil
}

// Close releases every connection the backend opened.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
