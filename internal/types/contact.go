package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ContactStatusNew      = "new"
	ContactStatusRead     = "read"
	ContactStatusReplied  = "replied"
	ContactStatusArchived = "archived"
)

func ValidContactStatus(status string) bool {
	switch status {
	case ContactStatusNew, ContactStatusRead, ContactStatusReplied, ContactStatusArchived:
		return true
	default:
		return false
	}
}

// Contact is one submitted contact-form message.
type Contact struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"not null;index" json:"email"`
	Phone     string         `gorm:"not null" json:"phone"`
	Subject   string         `json:"subject,omitempty"`
	Message   string         `gorm:"not null" json:"message"`
	Status    string         `gorm:"not null;default:'new';index" json:"status"`
	IPAddress string         `json:"ipAddress,omitempty"`
	Meta      datatypes.JSON `json:"meta,omitempty"` // user agent, referrer
	CreatedAt time.Time      `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null" json:"updatedAt"`
}

func (Contact) TableName() string { return "contact" }
