package models

import (
	"time"
)

// Module is a persisted module. Data holds the JSON encoded module data; the
// name is kept in its own column so records can be looked up and renamed.
type Module struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name string `gorm:"uniqueIndex;not null" json:"name"`
	Data string `gorm:"type:text;not null" json:"data"`
}

// TableName specifies the table name for GORM
func (Module) TableName() string {
	return "modules"
}
