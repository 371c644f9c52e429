package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"messenger-funnel/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CatalogHandler lets the merchant attach products and images to an ad id
// without touching the database directly.
type CatalogHandler struct {
	DB *gorm.DB
}

func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{DB: db}
}

func (h *CatalogHandler) GetProducts(c *gin.Context) {
	var products []models.AdProduct
	query := h.DB.Order("ad_id ASC").Order("position ASC")
	if adID := c.Query("ad_id"); adID != "" {
		query = query.Where("ad_id = ?", adID)
	}
	if err := query.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if products == nil {
		products = []models.AdProduct{}
	}
	c.JSON(http.StatusOK, products)
}

type ProductRequest struct {
	AdID      string   `json:"ad_id" binding:"required"`
	Position  int      `json:"position"`
	Name      string   `json:"name" binding:"required"`
	Price     string   `json:"price"`
	ImageURLs []string `json:"image_urls"`
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	urls, err := encodeImageURLs(req.ImageURLs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := models.AdProduct{
		AdID:      req.AdID,
		Position:  req.Position,
		Name:      req.Name,
		Price:     req.Price,
		ImageURLs: urls,
	}
	if err := h.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	urls, err := encodeImageURLs(req.ImageURLs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.DB.Model(&models.AdProduct{}).Where("id = ?", c.Param("id")).Updates(map[string]interface{}{
		"ad_id":      req.AdID,
		"position":   req.Position,
		"name":       req.Name,
		"price":      req.Price,
		"image_urls": urls,
	})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Product updated"})
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	if err := h.DB.Delete(&models.AdProduct{}, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Product deleted"})
}

func encodeImageURLs(urls []string) (string, error) {
	for _, url := range urls {
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return "", fmt.Errorf("image url must start with http:// or https://: %s", url)
		}
	}
	if urls == nil {
		urls = []string{}
	}
	encoded, err := json.Marshal(urls)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
