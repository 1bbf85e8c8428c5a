package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CatalogItem struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"size:255;not null"`
	Description string          `json:"description" gorm:"type:text;not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Type        CatalogItemType `json:"type" gorm:"type:varchar(20);not null"`
	Features    StringList      `json:"features" gorm:"type:text;not null"`
	Images      StringList      `json:"images" gorm:"type:text;not null"`
	CreatedAt   time.Time       `json:"createdAt" gorm:"not null"`
	// CreatedBy references Account.ID without a foreign key.
	CreatedBy uint `json:"createdBy" gorm:"not null"`
}

type CatalogItemInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Type        CatalogItemType
	Features    []string
	Images      []string
	CreatedBy   uint
}

type CatalogItemPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Type        *CatalogItemType
	Features    []string
	Images      []string
}

// Clone returns a deep copy of the item.
func (i CatalogItem) Clone() CatalogItem {
	i.Features = i.Features.Clone()
	i.Images = i.Images.Clone()
	return i
}
