package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	DiscordUsername string          `json:"discordUsername" gorm:"size:64;not null"`
	DiscordID       string          `json:"discordId" gorm:"size:32;not null"`
	ProductID       uint            `json:"productId" gorm:"not null;index"`
	Price           decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt       time.Time       `json:"createdAt" gorm:"not null"`
}

// OrderInput carries a new order. Price must already be the item's current
// price; an empty Status becomes pending.
type OrderInput struct {
	DiscordUsername string
	DiscordID       string
	ProductID       uint
	Price           decimal.Decimal
	Status          OrderStatus
}

// OrderPatch changes an order's status. When From is set the change only
// applies while the stored status still equals *From.
type OrderPatch struct {
	Status *OrderStatus
	From   *OrderStatus
}
