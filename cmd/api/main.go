package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/tatamedev/tatame-crm/internal/config"
	"github.com/tatamedev/tatame-crm/internal/infra/database"
	"github.com/tatamedev/tatame-crm/internal/infra/http/handlers"
	appmiddleware "github.com/tatamedev/tatame-crm/internal/infra/http/middleware"
	"github.com/tatamedev/tatame-crm/internal/infra/integration/appwrite"
	"github.com/tatamedev/tatame-crm/internal/infra/integration/whatsapp"
	"github.com/tatamedev/tatame-crm/internal/infra/mail"
	"github.com/tatamedev/tatame-crm/internal/infra/queue"
	"github.com/tatamedev/tatame-crm/internal/usecase"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuração inválida")
	}

	// 1. Cliente do banco hospedado
	awClient := appwrite.NewClient(cfg.AppwriteEndpoint, cfg.AppwriteProject, cfg.AppwriteKey)

	// 2. Repositórios
	leadRepo := database.NewLeadRepository(awClient, cfg.AppwriteDatabaseID, cfg.LeadsCollectionID)
	academyRepo := database.NewAcademyRepository(awClient, cfg.AppwriteDatabaseID, cfg.AcademiesCollectionID)

	// 3. Fila de notificações (opcional: sem host, segue sem fila)
	var producer usecase.NotificationProducer
	var rabbitMQ *queue.RabbitMQ
	if cfg.RabbitHost != "" {
		rabbitMQ, err = queue.NewRabbitMQ(cfg.RabbitUser, cfg.RabbitPass, cfg.RabbitHost, cfg.RabbitPort)
		if err != nil {
			log.Fatal().Err(err).Msg("conexão com RabbitMQ falhou")
		}
		defer rabbitMQ.Conn.Close()
		defer rabbitMQ.Ch.Close()
		producer = queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	} else {
		log.Warn().Msg("RABBITMQ_HOST não definido; notificações desligadas")
	}

	// 4. Integrações de saída
	waClient := whatsapp.NewClient(cfg.WhatsAppToken, cfg.WhatsAppPhoneID)
	mailSender := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPassword, cfg.MailFrom)

	// 5. Worker (consome a fila e dispara WhatsApp/email)
	if rabbitMQ != nil {
		worker := queue.NewWorker(rabbitMQ.Ch, waClient, mailSender, academyRepo)
		go worker.Start(queue.QueueName)
	}

	// 6. Casos de uso
	academyService := usecase.NewAcademyService(academyRepo, log)
	newStore := func() *usecase.LeadStore {
		store := usecase.NewLeadStore(leadRepo, producer, log)
		store.RecentWindow = cfg.RecentWindow
		return store
	}
	sessions := usecase.NewSessionManager(awClient, academyService, newStore, log)

	// 7. Handlers
	authHandler := handlers.NewAuthHandler(sessions)
	leadHandler := handlers.NewLeadHandler()
	academyHandler := handlers.NewAcademyHandler(academyService)

	var rabbitConn *amqp091.Connection
	if rabbitMQ != nil {
		rabbitConn = rabbitMQ.Conn
	}
	healthHandler := handlers.NewHealthHandler(awClient, rabbitConn, waClient, cfg.MailHost)

	// 8. Router
	allowed := cfg.AllowOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(appmiddleware.RequestLogger(log))
	r.Use(appmiddleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.RequireSession(sessions))

		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/me", authHandler.Me)

		r.Get("/academy", academyHandler.Get)
		r.Put("/academy", academyHandler.Update)

		r.Get("/leads", leadHandler.List)
		r.Post("/leads", leadHandler.Create)
		r.Post("/leads/refresh", leadHandler.Refresh)
		r.Post("/leads/import", leadHandler.Import)
		r.Get("/leads/export", leadHandler.Export)
		r.Get("/leads/{id}", leadHandler.Get)
		r.Patch("/leads/{id}", leadHandler.Update)
		r.Delete("/leads/{id}", leadHandler.Delete)
		r.Get("/leads/{id}/whatsapp", leadHandler.WhatsAppTemplates)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info().Str("addr", addr).Msg("API no ar")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal().Err(err).Msg("servidor encerrou")
	}
}
