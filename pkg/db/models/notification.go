package models

import (
	"time"

	dbtypes "github.com/coexhq/coex-backend/pkg/db/types"
	"github.com/coexhq/coex-backend/pkg/enums"
)

// Notification stores an in-app notification addressed to a single user.
type Notification struct {
	ID        uint                   `gorm:"column:id;primaryKey" json:"id"`
	UserID    uint                   `gorm:"column:user_id;not null;index" json:"userId"`
	Title     string                 `gorm:"column:title;not null" json:"title"`
	Message   string                 `gorm:"column:message;not null" json:"message"`
	Type      enums.NotificationType `gorm:"column:type;not null" json:"type"`
	Read      bool                   `gorm:"column:read;not null;default:false" json:"read"`
	ReadAt    *time.Time             `gorm:"column:read_at" json:"readAt,omitempty"`
	Metadata  dbtypes.JSONMap        `gorm:"column:metadata;type:text" json:"metadata,omitempty"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
