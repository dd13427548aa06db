package unitofwork

import (
	"context"

	"legal-annotation-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AnnotationRepository() contract.AnnotationRepository
	AnnotationCommentRepository() contract.AnnotationCommentRepository
	AnnotationShareRepository() contract.AnnotationShareRepository
	AnnotationEmbeddingRepository() contract.AnnotationEmbeddingRepository

	DocumentRepository() contract.DocumentRepository

	SubscriptionRepository() contract.SubscriptionRepository
	UsageCounterRepository() contract.UsageCounterRepository
}
