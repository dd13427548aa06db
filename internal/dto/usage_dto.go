// DTOs for usage limits and status checking
package dto

import (
	"time"

	"github.com/google/uuid"
)

// UsageLimit represents a single limit status
type UsageLimit struct {
	Used     int        `json:"used"`
	Limit    int        `json:"limit"` // -1 = unlimited, 0 = disabled
	CanUse   bool       `json:"can_use"`
	ResetsAt *time.Time `json:"resets_at,omitempty"`
}

type UsageStatusResponse struct {
	Plan             PlanInfo   `json:"plan"`
	DocumentUploads  UsageLimit `json:"document_uploads"`
	AiQueries        UsageLimit `json:"ai_queries"`
	UpgradeAvailable bool       `json:"upgrade_available"`
}

type PlanInfo struct {
	Id   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// PlanWithFeaturesResponse is returned by GET /api/plans (public)
type PlanWithFeaturesResponse struct {
	Id            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	Slug          string        `json:"slug"`
	Tagline       string        `json:"tagline"`
	Price         float64       `json:"price"`
	BillingPeriod string        `json:"billing_period"`
	IsMostPopular bool          `json:"is_most_popular"`
	Limits        PlanLimitsDTO `json:"limits"`
	Features      []string      `json:"features"`
}

type PlanLimitsDTO struct {
	MaxAnnotationsPerDocument  int `json:"max_annotations_per_document"`
	MaxCollaboratorsPerShare   int `json:"max_collaborators_per_share"`
	DocumentUploadMonthlyLimit int `json:"document_upload_monthly"`
	AiQueryDailyLimit          int `json:"ai_query_daily"`
}
