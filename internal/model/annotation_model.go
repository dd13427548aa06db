package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type Annotation struct {
	Id           uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId   uuid.UUID         `gorm:"type:uuid;not null;index:idx_annotations_document_page,priority:1"`
	UserId       uuid.UUID         `gorm:"type:uuid;not null;index"`
	PageNumber   int               `gorm:"not null;index:idx_annotations_document_page,priority:2"`
	Type         string            `gorm:"type:varchar(20);not null;check:type IN ('highlight','note','drawing','text','stamp')"`
	Color        string            `gorm:"type:varchar(20);not null"`
	PositionX    float64           `gorm:"not null;check:position_x >= 0"`
	PositionY    float64           `gorm:"not null;check:position_y >= 0"`
	Width        float64           `gorm:"not null;check:width >= 0"`
	Height       float64           `gorm:"not null;check:height >= 0"`
	Content      *string           `gorm:"type:text"`
	SelectedText *string           `gorm:"type:text"`
	Properties   datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt    time.Time         `gorm:"autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"autoUpdateTime"`
}

func (Annotation) TableName() string {
	return "annotations"
}

type AnnotationComment struct {
	Id           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AnnotationId uuid.UUID  `gorm:"type:uuid;not null;index"`
	UserId       uuid.UUID  `gorm:"type:uuid;not null;index"`
	ParentId     *uuid.UUID `gorm:"type:uuid;index"`
	Content      string     `gorm:"type:text;not null"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime"`

	Annotation Annotation `gorm:"foreignKey:AnnotationId;constraint:OnDelete:CASCADE"`
}

func (AnnotationComment) TableName() string {
	return "annotation_comments"
}

type AnnotationShare struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AnnotationId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_annotation_shares_pair,priority:1"`
	UserId       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_annotation_shares_pair,priority:2;index"`
	Permission   string    `gorm:"type:varchar(20);not null;check:permission IN ('view','comment','edit')"`
	GrantedBy    uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`

	Annotation Annotation `gorm:"foreignKey:AnnotationId;constraint:OnDelete:CASCADE"`
}

func (AnnotationShare) TableName() string {
	return "annotation_shares"
}

type AnnotationEmbedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AnnotationId   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Document       string          `gorm:"type:text"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text dimension
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
}

func (AnnotationEmbedding) TableName() string {
	return "annotation_embeddings"
}
