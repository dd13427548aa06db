package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

type ByPageNumber struct {
	PageNumber int
}

func (s ByPageNumber) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("page_number = ?", s.PageNumber)
}

type ByAnnotationType struct {
	Type string
}

func (s ByAnnotationType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("type = ?", s.Type)
}

type ByColor struct {
	Color string
}

func (s ByColor) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("color = ?", s.Color)
}

type ByAnnotationID struct {
	AnnotationID uuid.UUID
}

func (s ByAnnotationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("annotation_id = ?", s.AnnotationID)
}

type ByAnnotationIDs struct {
	AnnotationIDs []uuid.UUID
}

func (s ByAnnotationIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("annotation_id IN ?", s.AnnotationIDs)
}

// VisibleTo keeps annotations the user owns or has been granted a share on.
type VisibleTo struct {
	UserID uuid.UUID
}

func (s VisibleTo) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(
		"annotations.user_id = ? OR annotations.id IN (?)",
		s.UserID,
		db.Session(&gorm.Session{NewDB: true}).Table("annotation_shares").Select("annotation_id").Where("user_id = ?", s.UserID),
	)
}
