package model

import "time"

type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:now()" json:"-"`
	UpdatedAt time.Time `gorm:"null" json:"-"`
}
