package store

import (
	"errors"
	"time"

	"messenger-funnel/internal/models"

	"gorm.io/gorm"
)

// Conversations is the append-only turn log. Ordering by timestamp is the
// only access pattern the bot uses.
type Conversations struct {
	db *gorm.DB
}

func NewConversations(db *gorm.DB) *Conversations {
	return &Conversations{db: db}
}

// Append persists one turn and returns it with its assigned id.
func (s *Conversations) Append(senderID, adID, role, text string) (models.Conversation, error) {
	turn := models.Conversation{
		SenderID:  senderID,
		AdID:      adID,
		Timestamp: time.Now(),
		Role:      role,
		Text:      text,
	}
	err := s.db.Create(&turn).Error
	return turn, err
}

// Recent returns the sender's last N turns in chronological order. The
// window is fixed by the caller to cap prompt size.
func (s *Conversations) Recent(senderID string, limit int) ([]models.Conversation, error) {
	var turns []models.Conversation
	err := s.db.Where("sender_id = ?", senderID).
		Order("timestamp DESC").Order("id DESC").
		Limit(limit).
		Find(&turns).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// LastAdID resolves the ad that brought this sender in: the most recent turn
// carrying an ad id wins.
func (s *Conversations) LastAdID(senderID string) (string, error) {
	var turn models.Conversation
	err := s.db.Where("sender_id = ? AND ad_id <> ''", senderID).
		Order("timestamp DESC").Order("id DESC").
		First(&turn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return turn.AdID, nil
}

// BySender returns the full history for the dashboard, oldest first.
func (s *Conversations) BySender(senderID string) ([]models.Conversation, error) {
	var turns []models.Conversation
	err := s.db.Where("sender_id = ?", senderID).
		Order("timestamp ASC").Order("id ASC").
		Find(&turns).Error
	return turns, err
}
