// FILE: internal/model/inspector_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type Inspector struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Phone     string    `gorm:"type:varchar(32);not null;uniqueIndex"`
	Email     string    `gorm:"type:varchar(255)"`
	Status    string    `gorm:"type:varchar(20);not null;default:'active'"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Inspector) TableName() string {
	return "inspectors"
}
