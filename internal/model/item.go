package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a catalogue entry that purchase requests can reference
type Item struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Cost      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost"`
	CreatedAt time.Time       `json:"-"`
}
