package catalog

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"messenger-funnel/internal/ai"
	"messenger-funnel/internal/models"

	"gorm.io/gorm"
)

const (
	maxAdSlots      = 5
	maxQueryResults = 3
	maxQueryImages  = 3
	maxImagesPerAd  = 3
)

const keywordPrompt = "You extract product search keywords. Reply with 2-4 short, comma-separated keywords only. No sentences, no explanations."

// Context is the only source of product facts handed to the reply generator.
// An empty Context tells the generator it has no product data at all.
type Context struct {
	Listing   string
	ImageURLs []string
}

func (c Context) Empty() bool {
	return c.Listing == ""
}

// Resolver grounds replies in the ad catalog: by ad id when the sender came
// through a known campaign, by keyword scan otherwise.
type Resolver struct {
	db *gorm.DB
	ai ai.Completer
}

func NewResolver(db *gorm.DB, completer ai.Completer) *Resolver {
	return &Resolver{db: db, ai: completer}
}

// ByAd renders the catalog entry for an ad as "name - price" lines, up to
// five slots, and collects validated image URLs in slot order. An unknown ad
// yields an empty Context.
func (r *Resolver) ByAd(adID string) Context {
	if adID == "" {
		return Context{}
	}

	var products []models.AdProduct
	err := r.db.Where("ad_id = ?", adID).Order("position ASC").Order("id ASC").
		Limit(maxAdSlots).Find(&products).Error
	if err != nil {
		log.Printf("Error loading catalog for ad %s: %v", adID, err)
		return Context{}
	}

	return render(products, maxImagesPerAd*maxAdSlots)
}

// ByQuery derives short search terms from the customer's text and scans the
// whole catalog for product names containing any of them. Exists because an
// ad id is not always recoverable from history.
func (r *Resolver) ByQuery(ctx context.Context, query string) Context {
	keywords := r.deriveKeywords(ctx, query)
	if len(keywords) == 0 {
		return Context{}
	}

	var all []models.AdProduct
	if err := r.db.Order("ad_id ASC").Order("position ASC").Find(&all).Error; err != nil {
		log.Printf("Error scanning catalog: %v", err)
		return Context{}
	}

	seen := make(map[string]bool)
	var matched []models.AdProduct
	for _, product := range all {
		nameLower := strings.ToLower(product.Name)
		for _, kw := range keywords {
			if strings.Contains(nameLower, kw) {
				if !seen[nameLower] {
					seen[nameLower] = true
					matched = append(matched, product)
				}
				break
			}
		}
		if len(matched) >= maxQueryResults {
			break
		}
	}

	return render(matched, maxQueryImages)
}

func (r *Resolver) deriveKeywords(ctx context.Context, query string) []string {
	raw, err := r.ai.Complete(ctx, ai.Request{
		System:      keywordPrompt,
		UserMessage: query,
		MaxTokens:   20,
	})
	if err != nil {
		log.Printf("Keyword derivation failed, falling back to query words: %v", err)
		raw = query
	}

	var keywords []string
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '\n' || r == ' ' }) {
		part = strings.ToLower(strings.TrimSpace(part))
		if len(part) >= 3 {
			keywords = append(keywords, part)
		}
	}
	return keywords
}

func render(products []models.AdProduct, imageCap int) Context {
	var (
		lines  []string
		images []string
	)
	for _, product := range products {
		lines = append(lines, product.Name+" - "+product.Price)
		for _, url := range decodeImageURLs(product.ImageURLs) {
			if len(images) >= imageCap {
				break
			}
			images = append(images, url)
		}
	}
	return Context{
		Listing:   strings.Join(lines, "\n"),
		ImageURLs: images,
	}
}

// decodeImageURLs parses the stored JSON array and drops anything that is
// not an http(s) URL.
func decodeImageURLs(encoded string) []string {
	if encoded == "" {
		return nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(encoded), &urls); err != nil {
		log.Printf("Error parsing image urls: %v", err)
		return nil
	}
	var valid []string
	for _, url := range urls {
		if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
			valid = append(valid, url)
		}
	}
	return valid
}
