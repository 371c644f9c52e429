package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"messenger-funnel/internal/database"
	"messenger-funnel/internal/lead"
	"messenger-funnel/internal/models"
	"messenger-funnel/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeSender struct {
	texts []string
}

func (f *fakeSender) SendText(recipientID, text string) error {
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeSender) SendImage(recipientID, imageURL string) error {
	return nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestCatalogCRUD(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	handler := NewCatalogHandler(db)

	r := gin.New()
	r.GET("/api/catalog", handler.GetProducts)
	r.POST("/api/catalog", handler.CreateProduct)
	r.DELETE("/api/catalog/:id", handler.DeleteProduct)

	body := `{"ad_id":"ad-42","position":1,"name":"Leather Watch","price":"Rs. 4500","image_urls":["https://cdn.example.com/w1.jpg"]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/catalog", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/catalog?ad_id=ad-42", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var products []models.AdProduct
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "Leather Watch", products[0].Name)
	assert.Contains(t, products[0].ImageURLs, "https://cdn.example.com/w1.jpg")
}

func TestCreateProductRejectsBadImageURL(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCatalogHandler(openTestDB(t))

	r := gin.New()
	r.POST("/api/catalog", handler.CreateProduct)

	body := `{"ad_id":"ad-42","name":"Leather Watch","image_urls":["ftp://bad.example.com/w1.jpg"]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/catalog", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportLeadsColumnOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	leads := lead.NewRepository(db)
	require.NoError(t, leads.Upsert("s1", "ad-42", lead.Info{Name: "Kasun", Phone: "0771234567", Address: "Galle road"}))

	handler := NewLeadHandler(leads)
	r := gin.New()
	r.GET("/api/leads/export", handler.ExportLeads)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/leads/export", nil))

	require.Equal(t, http.StatusOK, w.Code)
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, "Sender ID,Ad ID,Name,Address,Phone,Product,Updated At,Status", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "s1,ad-42,Kasun,Galle road,0771234567"))
	assert.True(t, strings.HasSuffix(lines[1], ",new"))
}

func TestSendMessagePersistsAssistantTurn(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	conversations := store.NewConversations(db)
	sender := &fakeSender{}
	handler := NewSendHandler(sender, conversations)

	r := gin.New()
	r.POST("/api/send", handler.SendMessage)

	body := `{"recipient_id":"s1","text":"your parcel ships today"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/send", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"your parcel ships today"}, sender.texts)

	turns, err := conversations.BySender("s1")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, models.RoleAssistant, turns[0].Role)
}
