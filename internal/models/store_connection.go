package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoreConnection holds the credential pair for a connected Shopify store.
// The worker reads it to run unattended syncs after the initial connect.
type StoreConnection struct {
	ID          string    `json:"id" gorm:"type:uuid;primary_key"`
	ShopDomain  string    `json:"shop_domain" gorm:"unique;not null"`
	AccessToken string    `json:"-" gorm:"not null"`
	ShopName    string    `json:"shop_name"`
	Currency    string    `json:"currency"`
	Timezone    string    `json:"timezone"`
	ConnectedAt time.Time `json:"connected_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (sc *StoreConnection) BeforeCreate(tx *gorm.DB) error {
	if sc.ID == "" {
		sc.ID = uuid.New().String()
	}
	return nil
}
