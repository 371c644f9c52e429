package models

import (
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

const (
	LeadStatusNew     = "new"
	LeadStatusOrdered = "ordered"
)

// Conversation is one message exchanged in either direction. Rows are
// append-only; the only access pattern is most-recent-N by sender.
type Conversation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SenderID  string    `gorm:"index;not null" json:"sender_id"`
	AdID      string    `gorm:"type:varchar(100)" json:"ad_id"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
	Role      string    `gorm:"type:varchar(20);not null" json:"role"`
	Text      string    `gorm:"type:text" json:"text"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Lead is the accumulating contact/order record for one sender. Fields are
// filled in independently across turns; status only moves new -> ordered.
type Lead struct {
	SenderID  string    `gorm:"primaryKey" json:"sender_id"`
	AdID      string    `gorm:"type:varchar(100)" json:"ad_id"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	Address   string    `gorm:"type:text" json:"address"`
	Phone     string    `gorm:"type:varchar(50)" json:"phone"`
	Product   string    `gorm:"type:varchar(255)" json:"product"`
	UpdatedAt time.Time `json:"updated_at"`
	Status    string    `gorm:"type:varchar(20);default:new" json:"status"`
}

func (Lead) TableName() string {
	return "leads"
}

// AdProduct is one product slot of an ad's catalog entry. ImageURLs is a
// JSON array string, same encoding the contact tags used before.
type AdProduct struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AdID      string    `gorm:"index;not null" json:"ad_id"`
	Position  int       `gorm:"default:0" json:"position"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Price     string    `gorm:"type:varchar(100)" json:"price"`
	ImageURLs string    `gorm:"type:text" json:"image_urls"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AdProduct) TableName() string {
	return "ad_products"
}
