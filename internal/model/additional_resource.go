package model

type ResourceType string

const (
	ResourceLink  ResourceType = "link"
	ResourcePDF   ResourceType = "pdf"
	ResourceImage ResourceType = "image"
	ResourceAudio ResourceType = "audio"
)

func ResourceTypeValid(t ResourceType) bool {
	switch t {
	case ResourceLink, ResourcePDF, ResourceImage, ResourceAudio:
		return true
	}
	return false
}

// AdditionalResource 附加资料：随资产一起分发的链接或文件
// swagger:model AdditionalResource
type AdditionalResource struct {
	UUIDBase
	ActivityID   string       `gorm:"size:36;not null;index" json:"activityId"`
	DisplayName  string       `gorm:"size:255" json:"displayName"`
	ResourceType ResourceType `gorm:"size:16;not null" json:"resourceType"`
	URL          string       `gorm:"size:1024" json:"url"`
}

func (AdditionalResource) TableName() string {
	return "additional_resources"
}
