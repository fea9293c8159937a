package app

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "bizdash/docs"
	"bizdash/internal/config"
	"bizdash/internal/handlers"
	"bizdash/internal/pdf"
	"bizdash/internal/repositories"
	"bizdash/internal/routes"
	"bizdash/internal/scheduler"
	"bizdash/internal/services"
	"bizdash/internal/upstream"
)

// Server is the wired HTTP application.
type Server struct {
	Router *gin.Engine
	Addr   string
	db     *sql.DB
}

func (s *Server) Close() {
	if s.db == nil {
		return
	}
	if err := s.db.Close(); err != nil {
		log.Printf("[app][db][close][err] %v", err)
	}
}

// OpenDB returns nil when no DSN is configured.
func OpenDB(cfg *config.Config) (*sql.DB, error) {
	if cfg.Database.DSN == "" {
		return nil, nil
	}
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// NewItemSource prefers the remote API and falls back to the local table.
func NewItemSource(cfg *config.Config, db *sql.DB) (services.ItemSource, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if cfg.Upstream.BaseURL != "" {
		log.Printf("[app][source] upstream %s", cfg.Upstream.BaseURL)
		return upstream.NewClient(cfg.Upstream.BaseURL, upstream.Options{
			Token:         cfg.Upstream.Token,
			Timeout:       cfg.Upstream.Timeout,
			RetryAttempts: cfg.Upstream.RetryAttempts,
			Location:      loc,
		}), nil
	}
	if db == nil {
		return nil, fmt.Errorf("no item source: set upstream.base_url or database.url")
	}
	log.Printf("[app][source] database")
	return repositories.NewSchedulerItemRepository(db, loc), nil
}

// NewSchedulerOptions maps the scheduler section onto the page controller options.
func NewSchedulerOptions(cfg *config.Config) (services.SchedulerOptions, error) {
	loc, err := cfg.Location()
	if err != nil {
		return services.SchedulerOptions{}, err
	}
	policy, err := scheduler.ParseTransitionPolicy(cfg.Scheduler.TransitionPolicy)
	if err != nil {
		return services.SchedulerOptions{}, err
	}
	return services.SchedulerOptions{
		Policy:              policy,
		OverdueLookbackDays: cfg.Scheduler.OverdueLookbackDays,
		AllHorizonYears:     cfg.Scheduler.AllHorizonYears,
		Location:            loc,
	}, nil
}

func newDigest(cfg *config.Config, source services.ItemSource) services.DigestService {
	if len(cfg.Notifications.Recipients) == 0 {
		return nil
	}
	var mail services.MailSender
	if cfg.Email.SMTPHost != "" {
		mail = services.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
		)
	}
	var chat services.ChatSender
	if cfg.Telegram.BotToken != "" {
		chat = services.NewTelegramService(cfg.Telegram.BotToken)
	}

	recipients := make([]services.DigestRecipient, 0, len(cfg.Notifications.Recipients))
	for _, r := range cfg.Notifications.Recipients {
		recipients = append(recipients, services.DigestRecipient{
			Name:           r.Name,
			Email:          r.Email,
			TelegramChatID: r.TelegramChatID,
			AssignedTo:     r.AssignedTo,
		})
	}
	loc, _ := cfg.Location()
	return services.NewDigestService(source, mail, chat, recipients, services.DigestOptions{
		LookbackDays: cfg.Scheduler.OverdueLookbackDays,
		Location:     loc,
	})
}

// Build wires repositories, services and handlers into a router.
func Build(cfg *config.Config) (*Server, error) {
	// === DB ===
	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	// === Services ===
	source, err := NewItemSource(cfg, db)
	if err != nil {
		return nil, err
	}
	opts, err := NewSchedulerOptions(cfg)
	if err != nil {
		return nil, err
	}
	sessions := services.NewSessionStore(func() services.SchedulerService {
		return services.NewSchedulerService(source, opts)
	})

	var persister services.Persister
	if db != nil {
		persister = repositories.NewSchedulerItemRepository(db, opts.Location)
	}
	digest := newDigest(cfg, source)
	pdfGen := pdf.NewReportGenerator(cfg.Files.FontPath)

	// === Handlers ===
	schedulerHandler := handlers.NewSchedulerHandler(sessions, digest, pdfGen, persister)

	// === Gin ===
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// JWT/RBAC live inside SetupRoutes
	routes.SetupRoutes(router, []byte(cfg.Auth.JWTSecret), schedulerHandler)

	return &Server{
		Router: router,
		Addr:   fmt.Sprintf(":%d", cfg.Server.Port),
		db:     db,
	}, nil
}

func Run(cfg *config.Config) error {
	srv, err := Build(cfg)
	if err != nil {
		return err
	}
	defer srv.Close()

	log.Printf("[app] listening on %s", srv.Addr)
	if err := srv.Router.Run(srv.Addr); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
