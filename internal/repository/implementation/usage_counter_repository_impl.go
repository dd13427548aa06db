package implementation

import (
	"context"
	"errors"
	"time"

	"legal-annotation-be/internal/entity"
	"legal-annotation-be/internal/model"
	"legal-annotation-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UsageCounterRepositoryImpl struct {
	db *gorm.DB
}

func NewUsageCounterRepository(db *gorm.DB) contract.UsageCounterRepository {
	return &UsageCounterRepositoryImpl{db: db}
}

func (r *UsageCounterRepositoryImpl) Get(ctx context.Context, userId uuid.UUID, resource entity.UsageResource, periodStart time.Time) (int, error) {
	var m model.UsageCounter
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND resource = ? AND period_start = ?", userId, string(resource), periodStart).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return m.Count, nil
}

// Increment is a single upsert; concurrent callers never lose an increment,
// but nothing ties it to the preceding limit check.
func (r *UsageCounterRepositoryImpl) Increment(ctx context.Context, userId uuid.UUID, resource entity.UsageResource, periodStart time.Time) error {
	m := &model.UsageCounter{
		Id:          uuid.New(),
		UserId:      userId,
		Resource:    string(resource),
		PeriodStart: periodStart,
		Count:       1,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "resource"}, {Name: "period_start"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"count":      gorm.Expr("usage_counters.count + 1"),
				"updated_at": time.Now(),
			}),
		}).
		Create(m).Error
}
