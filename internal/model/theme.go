package model

import "gorm.io/datatypes"

// Theme 平台内置主题；资产引用主题，模块可继承或覆盖
type Theme struct {
	BaseModel
	Code    string         `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Name    string         `gorm:"size:128" json:"name"`
	Colors  datatypes.JSON `gorm:"type:json" json:"colors"`
	Enabled bool           `gorm:"default:true" json:"enabled"`
}

func (Theme) TableName() string {
	return "themes"
}
