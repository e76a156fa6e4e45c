package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/relaychat/apiserver/config"
	"github.com/relaychat/apiserver/internal/auth"
	"github.com/relaychat/apiserver/internal/db"
	"github.com/relaychat/apiserver/internal/handlers"
	"github.com/relaychat/apiserver/internal/mq"
	"github.com/relaychat/apiserver/internal/services"
	"github.com/relaychat/apiserver/internal/storage"
	"github.com/relaychat/apiserver/internal/store"
)

// Server wraps the HTTP server and its shared process-wide state: the
// immutable token key pair, the connection pool and the optional
// event broker. All of it is constructed once at startup and injected
// into handlers by reference.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     *mq.MQ
}

// New constructs a Server. Bad key material, an unreachable database
// or a misconfigured broker/storage backend all fail construction so
// the process never serves traffic half-initialized.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}

	ek, err := auth.LoadEncodingKey(cfg.Auth.PrivateKeyFile, cfg.Auth.TokenTTL)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("load signing key: %w", err)
	}
	dk, err := auth.LoadDecodingKey(cfg.Auth.PublicKeyFile)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("load verification key: %w", err)
	}

	broker, err := NewBroker(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	fileStore, err := newFileStorage(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		if broker != nil {
			_ = broker.Close()
		}
		return nil, fmt.Errorf("init file storage: %w", err)
	}

	userRepo := store.NewUserRepository(dbConn)
	workspaceRepo := store.NewWorkspaceRepository(dbConn)
	chatRepo := store.NewChatRepository(dbConn)
	messageRepo := store.NewMessageRepository(dbConn)

	var publisher services.EventPublisher
	if broker != nil {
		publisher = broker
	}

	userService := services.NewUserService(userRepo, workspaceRepo)
	chatService := services.NewChatService(chatRepo, publisher)
	messageService := services.NewMessageService(messageRepo, chatRepo, publisher)

	workspaceHandler := handlers.NewWorkspaceHandler(userService)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/api", func(r chi.Router) {
		handlers.AuthRouter(r, userService, ek)

		r.Group(func(r chi.Router) {
			r.Use(handlers.RequireAuth(dk))
			r.Get("/users", workspaceHandler.ListChatUsers)
			r.Route("/chat", func(r chi.Router) {
				handlers.ChatRouter(r, chatService, messageService)
			})
			if fileStore != nil {
				handlers.FileRouter(r, fileStore)
			}
		})
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		broker:     broker,
	}, nil
}

// NewBroker constructs the configured event broker, or nil when event
// publishing is disabled.
func NewBroker(ctx context.Context, cfg config.MQConfig) (*mq.MQ, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		backend, err := mq.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return mq.New(backend), nil
	case "pubsub":
		backend, err := mq.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return mq.New(backend), nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.Backend)
	}
}

func newFileStorage(ctx context.Context, cfg config.StorageConfig) (*storage.Storage, error) {
	var backend storage.ObjectStorage
	switch cfg.Backend {
	case "":
		return nil, nil
	case "minio":
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		backend = client
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		backend = client
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}

	fileStore := storage.NewStorage(backend)
	if err := fileStore.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return fileStore, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.broker != nil {
		_ = s.broker.Close()
	}
	return s.httpServer.Close()
}
