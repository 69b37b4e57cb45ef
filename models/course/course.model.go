package course

import (
	"gorm.io/gorm"
)

// Course represents a published course in the catalog. The catalog itself is
// managed elsewhere; the payment core reads Price/Currency as the canonical
// amount for a purchase (client-supplied amounts are never trusted).
type Course struct {
	gorm.Model
	Title        string `json:"title" gorm:"not null"`
	Description  string `json:"description" gorm:"type:text"`
	InstructorID uint   `json:"instructor_id" gorm:"index"`
	Price        int64  `json:"price" gorm:"not null"` // minor currency units
	Currency     string `json:"currency" gorm:"size:8;not null;default:'USD'"`
	ThumbnailURL string `json:"thumbnail_url"`
	IsPublished  bool   `json:"is_published" gorm:"default:false"`
	IsDeleted    bool   `gorm:"default:false"`
}
