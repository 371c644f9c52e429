package lead

import (
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"messenger-funnel/internal/models"

	"gorm.io/gorm"
)

const fallbackProductLabel = "Order Placed"

const lockStripes = 64

// Repository upserts lead records keyed by sender. A striped mutex set
// serializes the read-then-write per sender, since two messages from the
// same customer can land on concurrent requests. Striping keeps the lock
// memory constant no matter how many one-off senders show up; a hash
// collision only serializes two unrelated senders, never drops the guarantee.
type Repository struct {
	db    *gorm.DB
	locks [lockStripes]sync.Mutex
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) lockFor(senderID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(senderID))
	return &r.locks[h.Sum32()%lockStripes]
}

// Upsert merges the extracted info into the sender's lead. Only non-empty
// fields overwrite; a turn supplying just a phone number never erases a
// previously captured name or address.
func (r *Repository) Upsert(senderID, adID string, info Info) error {
	lock := r.lockFor(senderID)
	lock.Lock()
	defer lock.Unlock()

	var existing models.Lead
	err := r.db.Where("sender_id = ?", senderID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		record := models.Lead{
			SenderID:  senderID,
			AdID:      adID,
			Name:      info.Name,
			Address:   info.Address,
			Phone:     info.Phone,
			UpdatedAt: time.Now(),
			Status:    models.LeadStatusNew,
		}
		return r.db.Create(&record).Error
	}
	if err != nil {
		return err
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if info.Name != "" {
		updates["name"] = info.Name
	}
	if info.Address != "" {
		updates["address"] = info.Address
	}
	if info.Phone != "" {
		updates["phone"] = info.Phone
	}
	if adID != "" && existing.AdID == "" {
		updates["ad_id"] = adID
	}
	return r.db.Model(&models.Lead{}).Where("sender_id = ?", senderID).Updates(updates).Error
}

// MarkOrdered transitions the lead to ordered and stamps the product label.
// The transition is one-directional; repeated order messages just refresh
// the product and timestamp.
func (r *Repository) MarkOrdered(senderID, productLabel string) error {
	lock := r.lockFor(senderID)
	lock.Lock()
	defer lock.Unlock()

	if productLabel == "" {
		productLabel = fallbackProductLabel
	}
	return r.db.Model(&models.Lead{}).Where("sender_id = ?", senderID).Updates(map[string]interface{}{
		"product":    productLabel,
		"status":     models.LeadStatusOrdered,
		"updated_at": time.Now(),
	}).Error
}

// BySender returns the stored lead for a sender, or nil when none exists.
func (r *Repository) BySender(senderID string) (*models.Lead, error) {
	var record models.Lead
	err := r.db.Where("sender_id = ?", senderID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// List returns all leads, most recently touched first.
func (r *Repository) List() ([]models.Lead, error) {
	var records []models.Lead
	err := r.db.Order("updated_at DESC").Find(&records).Error
	return records, err
}
