package model

import (
	"gorm.io/datatypes"
)

type ModuleSlot string

const (
	SlotDraft ModuleSlot = "draft"
	SlotLive  ModuleSlot = "live"
)

// Module 一个模块的一个槽位。draft 与 live 是独立的物理行，发布即
// draft→live 的原子拷贝。Body 内嵌 editor_state，服务端不解释。
// swagger:model Module
type Module struct {
	BaseModel
	ModuleID   string         `gorm:"size:36;not null;uniqueIndex:idx_module_slot,priority:1" json:"moduleId"`
	ActivityID string         `gorm:"size:36;not null;index" json:"activityId"`
	Slot       ModuleSlot     `gorm:"size:8;not null;uniqueIndex:idx_module_slot,priority:2" json:"slot"`
	Kind       string         `gorm:"size:32;not null" json:"kind"`
	Position   int            `gorm:"default:0" json:"position"`
	IsComplete bool           `gorm:"default:false" json:"isComplete"`
	Body       datatypes.JSON `gorm:"type:json" json:"body"`
}

func (Module) TableName() string {
	return "modules"
}
