package mapper

import (
	"legal-annotation-be/internal/entity"
	"legal-annotation-be/internal/model"

	"gorm.io/datatypes"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) PlanToEntity(p *model.SubscriptionPlan) *entity.SubscriptionPlan {
	if p == nil {
		return nil
	}
	return &entity.SubscriptionPlan{
		Id:                         p.Id,
		Name:                       p.Name,
		Slug:                       p.Slug,
		Description:                p.Description,
		Tagline:                    p.Tagline,
		Price:                      p.Price,
		BillingPeriod:              entity.BillingPeriod(p.BillingPeriod),
		MaxAnnotationsPerDocument:  p.MaxAnnotationsPerDocument,
		MaxCollaboratorsPerShare:   p.MaxCollaboratorsPerShare,
		DocumentUploadMonthlyLimit: p.DocumentUploadMonthlyLimit,
		AiQueryDailyLimit:          p.AiQueryDailyLimit,
		IsMostPopular:              p.IsMostPopular,
		IsActive:                   p.IsActive,
		SortOrder:                  p.SortOrder,
		Features:                   []string(p.Features),
	}
}

func (m *SubscriptionMapper) PlanToModel(p *entity.SubscriptionPlan) *model.SubscriptionPlan {
	if p == nil {
		return nil
	}
	return &model.SubscriptionPlan{
		Id:                         p.Id,
		Name:                       p.Name,
		Slug:                       p.Slug,
		Description:                p.Description,
		Tagline:                    p.Tagline,
		Price:                      p.Price,
		BillingPeriod:              string(p.BillingPeriod),
		MaxAnnotationsPerDocument:  p.MaxAnnotationsPerDocument,
		MaxCollaboratorsPerShare:   p.MaxCollaboratorsPerShare,
		DocumentUploadMonthlyLimit: p.DocumentUploadMonthlyLimit,
		AiQueryDailyLimit:          p.AiQueryDailyLimit,
		IsMostPopular:              p.IsMostPopular,
		IsActive:                   p.IsActive,
		SortOrder:                  p.SortOrder,
		Features:                   datatypes.JSONSlice[string](p.Features),
	}
}

func (m *SubscriptionMapper) UserSubscriptionToEntity(s *model.UserSubscription) *entity.UserSubscription {
	if s == nil {
		return nil
	}
	return &entity.UserSubscription{
		Id:                 s.Id,
		UserId:             s.UserId,
		PlanId:             s.PlanId,
		Status:             entity.SubscriptionStatus(s.Status),
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		PaymentStatus:      entity.PaymentStatus(s.PaymentStatus),
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) UserSubscriptionToModel(s *entity.UserSubscription) *model.UserSubscription {
	if s == nil {
		return nil
	}
	return &model.UserSubscription{
		Id:                 s.Id,
		UserId:             s.UserId,
		PlanId:             s.PlanId,
		Status:             string(s.Status),
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		PaymentStatus:      string(s.PaymentStatus),
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}
