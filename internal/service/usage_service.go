// Service for plan lookup and usage limit checking
package service

import (
	"context"
	"time"

	"legal-annotation-be/internal/dto"
	"legal-annotation-be/internal/entity"
	"legal-annotation-be/internal/pkg/logger"
	"legal-annotation-be/internal/repository/specification"
	"legal-annotation-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IUsageService interface {
	// Public
	GetAllActivePlans(ctx context.Context) ([]*dto.PlanWithFeaturesResponse, error)

	// User
	GetUserUsageStatus(ctx context.Context, userId uuid.UUID) (*dto.UsageStatusResponse, error)
	GetUserPlan(ctx context.Context, userId uuid.UUID) (*entity.SubscriptionPlan, error)

	// Check returns *dto.LimitExceededError when the user may not consume one
	// more unit of resource. scope is the document for per-document limits.
	Check(ctx context.Context, userId uuid.UUID, resource entity.UsageResource, scope uuid.UUID) error
	// Increment records one unit of a periodic resource. Cumulative
	// resources are counted from their own rows and ignore it.
	Increment(ctx context.Context, userId uuid.UUID, resource entity.UsageResource) error
	CheckCollaborators(ctx context.Context, userId uuid.UUID, annotationId uuid.UUID, grantee uuid.UUID) error
}

type usageService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
	now        func() time.Time
}

func NewUsageService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IUsageService {
	return &usageService{
		uowFactory: uowFactory,
		logger:     log,
		now:        time.Now,
	}
}

func (s *usageService) GetAllActivePlans(ctx context.Context) ([]*dto.PlanWithFeaturesResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	plans, err := uow.SubscriptionRepository().FindAllPlans(ctx,
		specification.Filter("is_active", true),
		specification.OrderBy{Field: "sort_order"},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.PlanWithFeaturesResponse, 0, len(plans))
	for _, plan := range plans {
		if !plan.IsActive {
			continue
		}
		features := plan.Features
		if features == nil {
			features = []string{}
		}
		result = append(result, &dto.PlanWithFeaturesResponse{
			Id:            plan.Id,
			Name:          plan.Name,
			Slug:          plan.Slug,
			Tagline:       plan.Tagline,
			Price:         plan.Price,
			BillingPeriod: string(plan.BillingPeriod),
			IsMostPopular: plan.IsMostPopular,
			Limits: dto.PlanLimitsDTO{
				MaxAnnotationsPerDocument:  plan.MaxAnnotationsPerDocument,
				MaxCollaboratorsPerShare:   plan.MaxCollaboratorsPerShare,
				DocumentUploadMonthlyLimit: plan.DocumentUploadMonthlyLimit,
				AiQueryDailyLimit:          plan.AiQueryDailyLimit,
			},
			Features: features,
		})
	}

	return result, nil
}

func (s *usageService) GetUserUsageStatus(ctx context.Context, userId uuid.UUID) (*dto.UsageStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	plan, err := s.getUserPlan(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	now := s.now()
	uploads, err := s.periodic(ctx, uow, userId, entity.UsageResourceDocumentUpload, plan.DocumentUploadMonthlyLimit, now)
	if err != nil {
		return nil, err
	}
	queries, err := s.periodic(ctx, uow, userId, entity.UsageResourceAiQuery, plan.AiQueryDailyLimit, now)
	if err != nil {
		return nil, err
	}

	return &dto.UsageStatusResponse{
		Plan: dto.PlanInfo{
			Id:   plan.Id,
			Name: plan.Name,
			Slug: plan.Slug,
		},
		DocumentUploads:  uploads,
		AiQueries:        queries,
		UpgradeAvailable: plan.Slug == entity.FreePlan().Slug,
	}, nil
}

func (s *usageService) periodic(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, resource entity.UsageResource, limit int, now time.Time) (dto.UsageLimit, error) {
	start, reset := periodBounds(resource, now)
	used, err := uow.UsageCounterRepository().Get(ctx, userId, resource, start)
	if err != nil {
		return dto.UsageLimit{}, err
	}
	return dto.UsageLimit{
		Used:     used,
		Limit:    limit,
		CanUse:   canUseLimit(used, limit),
		ResetsAt: &reset,
	}, nil
}

func (s *usageService) GetUserPlan(ctx context.Context, userId uuid.UUID) (*entity.SubscriptionPlan, error) {
	return s.getUserPlan(ctx, s.uowFactory.NewUnitOfWork(ctx), userId)
}

func (s *usageService) Check(ctx context.Context, userId uuid.UUID, resource entity.UsageResource, scope uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	plan, err := s.getUserPlan(ctx, uow, userId)
	if err != nil {
		return err
	}

	var limit, used int
	var resetAfter time.Time
	switch resource {
	case entity.UsageResourceAnnotation:
		limit = plan.MaxAnnotationsPerDocument
		if limit < 0 {
			return nil
		}
		count, err := uow.AnnotationRepository().Count(ctx,
			specification.UserOwnedBy{UserID: userId},
			specification.ByDocumentID{DocumentID: scope},
		)
		if err != nil {
			return err
		}
		used = int(count)
	case entity.UsageResourceDocumentUpload, entity.UsageResourceAiQuery:
		limit = plan.DocumentUploadMonthlyLimit
		if resource == entity.UsageResourceAiQuery {
			limit = plan.AiQueryDailyLimit
		}
		if limit < 0 {
			return nil
		}
		var start time.Time
		start, resetAfter = periodBounds(resource, s.now())
		used, err = uow.UsageCounterRepository().Get(ctx, userId, resource, start)
		if err != nil {
			return err
		}
	default:
		return dto.NewValidationError("resource", "unknown resource %q", resource)
	}

	if !canUseLimit(used, limit) {
		s.logger.Info("USAGE", "Limit reached", map[string]interface{}{
			"user_id":  userId.String(),
			"resource": string(resource),
			"used":     used,
			"limit":    limit,
		})
		return &dto.LimitExceededError{
			Resource:   string(resource),
			Limit:      limit,
			Used:       used,
			ResetAfter: resetAfter,
		}
	}
	return nil
}

func (s *usageService) Increment(ctx context.Context, userId uuid.UUID, resource entity.UsageResource) error {
	if resource == entity.UsageResourceAnnotation {
		return nil
	}
	start, _ := periodBounds(resource, s.now())
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.UsageCounterRepository().Increment(ctx, userId, resource, start)
}

// CheckCollaborators limits how many users one annotation may be shared
// with. Re-granting an existing grantee never counts as a new collaborator.
func (s *usageService) CheckCollaborators(ctx context.Context, userId uuid.UUID, annotationId uuid.UUID, grantee uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	plan, err := s.getUserPlan(ctx, uow, userId)
	if err != nil {
		return err
	}
	limit := plan.MaxCollaboratorsPerShare
	if limit < 0 {
		return nil
	}

	existing, err := uow.AnnotationShareRepository().FindOne(ctx,
		specification.ByAnnotationID{AnnotationID: annotationId},
		specification.UserOwnedBy{UserID: grantee},
	)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	count, err := uow.AnnotationShareRepository().Count(ctx, specification.ByAnnotationID{AnnotationID: annotationId})
	if err != nil {
		return err
	}
	if !canUseLimit(int(count), limit) {
		return &dto.LimitExceededError{
			Resource: "collaborator",
			Limit:    limit,
			Used:     int(count),
		}
	}
	return nil
}

// getUserPlan gets the user's current plan or returns default free plan
func (s *usageService) getUserPlan(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.SubscriptionPlan, error) {
	subs, err := uow.SubscriptionRepository().FindAllSubscriptions(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for _, sub := range subs {
		if !sub.GrantsAccessAt(now) {
			continue
		}
		plan, err := uow.SubscriptionRepository().FindOnePlan(ctx, specification.ByID{ID: sub.PlanId})
		if err != nil {
			return nil, err
		}
		if plan != nil {
			return plan, nil
		}
		break
	}

	// A seeded "free" row overrides the built-in defaults.
	free, err := uow.SubscriptionRepository().FindOnePlan(ctx, specification.BySlug{Slug: entity.FreePlan().Slug})
	if err != nil {
		return nil, err
	}
	if free != nil {
		return free, nil
	}
	return entity.FreePlan(), nil
}

// periodBounds returns the UTC start of the counting period containing now
// and the moment the next one begins.
func periodBounds(resource entity.UsageResource, now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	if resource == entity.UsageResourceDocumentUpload {
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// -1 is unlimited, 0 disabled.
func canUseLimit(used int, limit int) bool {
	if limit < 0 {
		return true
	}
	return used < limit
}
