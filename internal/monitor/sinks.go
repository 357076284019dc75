package monitor

import (
	"context"
	"errors"

	"github.com/OCAP2/spacetime/internal/influx"
	"github.com/OCAP2/spacetime/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSink stores samples in the relational database.
type GormSink struct {
	db        *gorm.DB
	batchSize int
}

// NewGormSink returns a sink inserting at most batchSize rows per statement.
func NewGormSink(db *gorm.DB, batchSize int) *GormSink {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &GormSink{db: db, batchSize: batchSize}
}

func (*GormSink) Name() string { return "gorm" }

// CreateSession records the session samples are attached to.
func (g *GormSink) CreateSession(ctx context.Context, session *model.Session) error {
	return g.db.WithContext(ctx).Create(session).Error
}

func (g *GormSink) WriteSamples(ctx context.Context, samples []model.IndexSample) error {
	if len(samples) == 0 {
		return nil
	}
	return g.db.WithContext(ctx).Omit(clause.Associations).CreateInBatches(&samples, g.batchSize).Error
}

// InfluxSink forwards samples to an InfluxDB manager.
type InfluxSink struct {
	manager *influx.Manager
}

func NewInfluxSink(manager *influx.Manager) *InfluxSink {
	return &InfluxSink{manager: manager}
}

func (*InfluxSink) Name() string { return "influx" }

func (i *InfluxSink) WriteSamples(_ context.Context, samples []model.IndexSample) error {
	var errs []error
	for _, sample := range samples {
		if err := i.manager.WriteSample(sample); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
