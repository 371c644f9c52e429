package api

import (
	"fmt"
	"net/http"
	"strings"

	"messenger-funnel/internal/lead"

	"github.com/gin-gonic/gin"
)

type LeadHandler struct {
	Leads *lead.Repository
}

func NewLeadHandler(leads *lead.Repository) *LeadHandler {
	return &LeadHandler{Leads: leads}
}

func (h *LeadHandler) GetLeads(c *gin.Context) {
	records, err := h.Leads.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *LeadHandler) GetLead(c *gin.Context) {
	record, err := h.Leads.BySender(c.Param("senderId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// ExportLeads writes the lead book as CSV. The column order matches the
// original spreadsheet layout and must stay that way for downstream imports.
func (h *LeadHandler) ExportLeads(c *gin.Context) {
	records, err := h.Leads.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	csv := "Sender ID,Ad ID,Name,Address,Phone,Product,Updated At,Status\n"
	for _, record := range records {
		csv += fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s,%s\n",
			record.SenderID,
			record.AdID,
			csvEscape(record.Name),
			csvEscape(record.Address),
			record.Phone,
			csvEscape(record.Product),
			record.UpdatedAt.Format("2006-01-02 15:04:05"),
			record.Status,
		)
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=leads.csv")
	c.String(http.StatusOK, csv)
}

func csvEscape(field string) string {
	if strings.ContainsAny(field, ",\"\n") {
		return "\"" + strings.ReplaceAll(field, "\"", "\"\"") + "\""
	}
	return field
}
