package model

import (
	"time"

	"gorm.io/datatypes"
)

// AssetKind 上层资产种类：模块的容器
type AssetKind string

const (
	AssetJig      AssetKind = "jig"
	AssetPlaylist AssetKind = "playlist"
	AssetCourse   AssetKind = "course"
	AssetResource AssetKind = "resource"
)

func AssetKindValid(k AssetKind) bool {
	switch k {
	case AssetJig, AssetPlaylist, AssetCourse, AssetResource:
		return true
	}
	return false
}

type Privacy string

const (
	PrivacyPublic   Privacy = "public"
	PrivacyUnlisted Privacy = "unlisted"
	PrivacyPrivate  Privacy = "private"
)

// swagger:model Activity
type Activity struct {
	UUIDBase
	Kind        AssetKind `gorm:"size:16;not null;index" json:"kind"`
	CreatorID   uint      `gorm:"not null;index" json:"creatorId"`
	DisplayName string    `gorm:"size:255" json:"displayName"`
	Description string    `gorm:"type:text" json:"description"`
	Language    string    `gorm:"size:10;default:'en'" json:"language"`
	Privacy     Privacy   `gorm:"size:16;default:'private'" json:"privacy"`
	ThemeID     string    `gorm:"size:64" json:"themeId"`
	// taxonomy ids as JSON arrays; resolved by the taxonomy service
	Categories  datatypes.JSON `gorm:"type:json" json:"categories"`
	AgeRanges   datatypes.JSON `gorm:"type:json" json:"ageRanges"`
	PublishedAt *time.Time     `json:"publishedAt"`

	Modules []Module `gorm:"foreignKey:ActivityID;references:ID" json:"modules,omitempty"`
}

func (Activity) TableName() string {
	return "activities"
}
