package unitofwork

import (
	"context"
	"fmt"

	"legal-annotation-be/internal/repository/contract"
	"legal-annotation-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // active transaction, nil outside Begin/Commit
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) AnnotationRepository() contract.AnnotationRepository {
	return implementation.NewAnnotationRepository(u.getDB())
}

func (u *UnitOfWorkImpl) AnnotationCommentRepository() contract.AnnotationCommentRepository {
	return implementation.NewAnnotationCommentRepository(u.getDB())
}

func (u *UnitOfWorkImpl) AnnotationShareRepository() contract.AnnotationShareRepository {
	return implementation.NewAnnotationShareRepository(u.getDB())
}

func (u *UnitOfWorkImpl) AnnotationEmbeddingRepository() contract.AnnotationEmbeddingRepository {
	return implementation.NewAnnotationEmbeddingRepository(u.getDB())
}

func (u *UnitOfWorkImpl) DocumentRepository() contract.DocumentRepository {
	return implementation.NewDocumentRepository(u.getDB())
}

func (u *UnitOfWorkImpl) SubscriptionRepository() contract.SubscriptionRepository {
	return implementation.NewSubscriptionRepository(u.getDB())
}

func (u *UnitOfWorkImpl) UsageCounterRepository() contract.UsageCounterRepository {
	return implementation.NewUsageCounterRepository(u.getDB())
}
