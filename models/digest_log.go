// models/digest_log.go
package models

import (
	"time"

	"github.com/Erick01081/ComisionTecni/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DigestStatusSent   = "sent"
	DigestStatusFailed = "failed"
)

// DigestLog records one attempt to send the daily digest to one recipient.
type DigestLog struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ReportDate   utils.Date `gorm:"type:date;index;not null" json:"reportDate"`
	Recipient    string     `gorm:"type:varchar(20);not null" json:"recipient"`
	Channel      string     `gorm:"type:varchar(20)" json:"channel"` // whatsapp, sms
	Message      string     `gorm:"type:text" json:"message"`
	Status       string     `gorm:"type:varchar(20);index" json:"status"`
	ErrorMessage string     `gorm:"type:text" json:"errorMessage,omitempty"`
	SentAt       time.Time  `gorm:"index" json:"sentAt"`
}

func (l *DigestLog) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}
