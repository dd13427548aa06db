// FILE: internal/entity/subscription_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string
type PaymentStatus string
type BillingPeriod string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusInactive SubscriptionStatus = "inactive"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"

	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"

	BillingPeriodMonthly BillingPeriod = "monthly"
	BillingPeriodYearly  BillingPeriod = "yearly"
)

// Limit values: -1 = unlimited, 0 = disabled.
type SubscriptionPlan struct {
	Id            uuid.UUID
	Name          string
	Slug          string
	Description   string
	Tagline       string
	Price         float64
	BillingPeriod BillingPeriod
	// Cumulative limits
	MaxAnnotationsPerDocument int
	MaxCollaboratorsPerShare  int
	// Periodic limits
	DocumentUploadMonthlyLimit int
	AiQueryDailyLimit          int
	// Display
	IsMostPopular bool
	IsActive      bool
	SortOrder     int
	Features      []string
}

type UserSubscription struct {
	Id                 uuid.UUID
	UserId             uuid.UUID
	PlanId             uuid.UUID
	Status             SubscriptionStatus
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	PaymentStatus      PaymentStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// GrantsAccessAt reports whether the subscription still entitles the user to
// its plan at the given time.
func (s *UserSubscription) GrantsAccessAt(now time.Time) bool {
	if !s.CurrentPeriodEnd.After(now) {
		return false
	}
	switch {
	case s.Status == SubscriptionStatusActive:
		return true
	case s.Status == SubscriptionStatusCanceled: // access retained until period end
		return true
	case s.PaymentStatus == PaymentStatusPaid:
		return true
	}
	return false
}

// FreePlan is used when a user has no subscription granting access.
func FreePlan() *SubscriptionPlan {
	return &SubscriptionPlan{
		Name:                       "Free Plan",
		Slug:                       "free",
		BillingPeriod:              BillingPeriodMonthly,
		MaxAnnotationsPerDocument:  50,
		MaxCollaboratorsPerShare:   2,
		DocumentUploadMonthlyLimit: 5,
		AiQueryDailyLimit:          0,
		IsActive:                   true,
	}
}
