package metrics

import (
	"time"

	"gorm.io/gorm"
)

const startKey = "metrics:start"

// GormPlugin times every statement gorm issues.
type GormPlugin struct {
	m *Metrics
}

func NewGormPlugin(m *Metrics) *GormPlugin { return &GormPlugin{m: m} }

func (p *GormPlugin) Name() string { return "neighborwatch:metrics" }

func (p *GormPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("metrics:before_create", p.before); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("metrics:after_create", p.after("create")); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("metrics:before_query", p.before); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("metrics:after_query", p.after("query")); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("metrics:before_update", p.before); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("metrics:after_update", p.after("update")); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("metrics:before_delete", p.before); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("metrics:after_delete", p.after("delete")); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("metrics:before_row", p.before); err != nil {
		return err
	}
	return cb.Row().After("gorm:row").Register("metrics:after_row", p.after("row"))
}

func (p *GormPlugin) before(db *gorm.DB) {
	db.InstanceSet(startKey, time.Now())
}

func (p *GormPlugin) after(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(startKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		p.m.RecordDBQuery(op, table, time.Since(start), db.Error)
	}
}
