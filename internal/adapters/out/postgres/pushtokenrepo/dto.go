// Package pushtokenrepo is the device token registry.
package pushtokenrepo

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/notification"

	"github.com/google/uuid"
)

// PushTokenDTO is keyed by the token itself: a token addresses exactly one
// app install, whoever is logged in on it.
type PushTokenDTO struct {
	Token     string    `gorm:"type:varchar(512);primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Platform  string    `gorm:"type:varchar(16);not null"`
	DeviceID  string    `gorm:"type:varchar(255)"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (PushTokenDTO) TableName() string {
	return "push_tokens"
}

func fromDomain(t notification.PushToken, now time.Time) PushTokenDTO {
	return PushTokenDTO{
		Token:     t.Token(),
		UserID:    t.UserID().Bytes(),
		Platform:  string(t.Platform()),
		DeviceID:  t.DeviceID(),
		UpdatedAt: now,
	}
}

func toDomain(dto PushTokenDTO) (notification.PushToken, error) {
	userID, err := kernel.UUIDFromBytes(dto.UserID[:])
	if err != nil {
		return notification.PushToken{}, err
	}
	platform, err := notification.ParsePlatform(dto.Platform)
	if err != nil {
		return notification.PushToken{}, err
	}
	return notification.NewPushToken(userID, dto.Token, platform, dto.DeviceID)
}
