package contract

import (
	"context"
	"time"

	"legal-annotation-be/internal/entity"
	"legal-annotation-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SubscriptionRepository interface {
	// Plans
	CreatePlan(ctx context.Context, plan *entity.SubscriptionPlan) error
	UpdatePlan(ctx context.Context, plan *entity.SubscriptionPlan) error
	FindOnePlan(ctx context.Context, specs ...specification.Specification) (*entity.SubscriptionPlan, error)
	FindAllPlans(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionPlan, error)

	// User Subscriptions
	CreateSubscription(ctx context.Context, subscription *entity.UserSubscription) error
	FindAllSubscriptions(ctx context.Context, specs ...specification.Specification) ([]*entity.UserSubscription, error)
}

type UsageCounterRepository interface {
	// Get returns the counter value for the period, 0 when no row exists.
	Get(ctx context.Context, userId uuid.UUID, resource entity.UsageResource, periodStart time.Time) (int, error)
	// Increment adds one to the counter, creating the row on first use.
	Increment(ctx context.Context, userId uuid.UUID, resource entity.UsageResource, periodStart time.Time) error
}
