package main

import (
	"log"

	"messenger-funnel/internal/ai"
	"messenger-funnel/internal/api"
	"messenger-funnel/internal/bot"
	"messenger-funnel/internal/catalog"
	"messenger-funnel/internal/config"
	"messenger-funnel/internal/database"
	"messenger-funnel/internal/lead"
	"messenger-funnel/internal/messenger"
	"messenger-funnel/internal/reply"
	"messenger-funnel/internal/store"
	"messenger-funnel/internal/webhook"
	"messenger-funnel/internal/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()
	db := database.Init(cfg)

	r := gin.Default()

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	hub := ws.NewHub()
	go hub.Run()

	completer := ai.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel)
	sender := messenger.NewClient(cfg.PageToken)
	conversations := store.NewConversations(db)
	leads := lead.NewRepository(db)
	resolver := catalog.NewResolver(db, completer)
	generator := reply.NewGenerator(completer, cfg.ClosingMarker)

	orchestrator := bot.NewOrchestrator(conversations, leads, resolver, generator, sender, hub, cfg.HistoryLimit)
	webhookHandler := webhook.NewHandler(cfg, orchestrator)
	leadHandler := api.NewLeadHandler(leads)
	conversationHandler := api.NewConversationHandler(conversations)
	catalogHandler := api.NewCatalogHandler(db)
	sendHandler := api.NewSendHandler(sender, conversations)

	// Webhook Routes
	r.GET("/webhook", webhookHandler.VerifyWebhook)
	r.POST("/webhook", webhookHandler.HandleEvent)

	// Live dashboard feed
	r.GET("/ws", func(c *gin.Context) {
		hub.ServeWs(c.Writer, c.Request)
	})

	// Dashboard API Routes
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/leads", leadHandler.GetLeads)
		apiGroup.GET("/leads/export", leadHandler.ExportLeads)
		apiGroup.GET("/leads/:senderId", leadHandler.GetLead)

		apiGroup.GET("/conversations/:senderId", conversationHandler.GetConversation)

		apiGroup.GET("/catalog", catalogHandler.GetProducts)
		apiGroup.POST("/catalog", catalogHandler.CreateProduct)
		apiGroup.PUT("/catalog/:id", catalogHandler.UpdateProduct)
		apiGroup.DELETE("/catalog/:id", catalogHandler.DeleteProduct)

		apiGroup.POST("/send", sendHandler.SendMessage)
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
