package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SubscriptionPlan struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name          string    `gorm:"type:varchar(255);not null"`
	Slug          string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Description   string    `gorm:"type:text"`
	Tagline       string    `gorm:"type:text"`
	Price         float64   `gorm:"type:decimal(10,2);not null"`
	BillingPeriod string    `gorm:"type:varchar(20);not null"`
	// Cumulative Limits
	MaxAnnotationsPerDocument int `gorm:"default:50"` // -1 = unlimited
	MaxCollaboratorsPerShare  int `gorm:"default:2"`  // -1 = unlimited
	// Periodic Limits
	DocumentUploadMonthlyLimit int `gorm:"default:5"` // 0 = disabled, -1 = unlimited
	AiQueryDailyLimit          int `gorm:"default:0"` // 0 = disabled, -1 = unlimited
	// Display Settings
	IsMostPopular bool                        `gorm:"default:false"`
	IsActive      bool                        `gorm:"default:true"`
	SortOrder     int                         `gorm:"default:0"`
	Features      datatypes.JSONSlice[string] `gorm:"type:jsonb"`
}

func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

type UserSubscription struct {
	Id                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId             uuid.UUID `gorm:"type:uuid;not null;index"`
	PlanId             uuid.UUID `gorm:"type:uuid;not null;index"`
	Status             string    `gorm:"type:varchar(50);not null"`
	CurrentPeriodStart time.Time `gorm:"not null"`
	CurrentPeriodEnd   time.Time `gorm:"not null"`
	PaymentStatus      string    `gorm:"type:varchar(50);not null"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}

func (UserSubscription) TableName() string {
	return "user_subscriptions"
}

type UsageCounter struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_usage_counters_key,priority:1"`
	Resource    string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_usage_counters_key,priority:2"`
	PeriodStart time.Time `gorm:"not null;uniqueIndex:idx_usage_counters_key,priority:3"`
	Count       int       `gorm:"not null;default:0"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (UsageCounter) TableName() string {
	return "usage_counters"
}
