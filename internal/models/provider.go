package models

import (
	"context"
	"time"

	"NeighborWatch/pkg/errors"

	"gorm.io/gorm"
)

// Provider hands out one store connection per request. Connections come
// from the driver pool but are pinned for the whole callback and returned
// to the pool on every exit path.
type Provider struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewProvider(db *gorm.DB, timeout time.Duration) *Provider {
	return &Provider{db: db, timeout: timeout}
}

// Acquire runs fn on a dedicated connection. A failure to obtain the
// connection is reported as errors.StoreUnavailable; errors returned by fn
// pass through untouched.
func (p *Provider) Acquire(ctx context.Context, fn func(conn *gorm.DB) error) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	acquired := false
	err := p.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		acquired = true
		// a new session so chained calls on conn never share one Statement
		return fn(conn.Session(&gorm.Session{}))
	})
	if err != nil && !acquired {
		return errors.StoreUnavailable(err)
	}
	return err
}

// Ping checks that a connection can be opened and answers.
func (p *Provider) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return errors.StoreUnavailable(err)
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.StoreUnavailable(err)
	}
	return nil
}
