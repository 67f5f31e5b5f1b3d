package container

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"urbanfix-backend/internal/config"
	"urbanfix-backend/internal/detector"
	"urbanfix-backend/internal/inference"
	"urbanfix-backend/internal/mailer"
	"urbanfix-backend/internal/repository"
	"urbanfix-backend/internal/service"
	"urbanfix-backend/internal/storage"
	"urbanfix-backend/internal/transport"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Container holds all application dependencies
type Container struct {
	config      *config.Config
	mongoClient *mongo.Client
	fileStore   storage.FileStore
	handler     http.Handler
}

// NewContainer builds the dependency graph: file store, inference client,
// pipeline, Mongo repository, mailer, services and the HTTP handler.
func NewContainer(cfg *config.Config) (*Container, error) {
	fileStore, err := storage.NewLocalFileStore(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file store: %w", err)
	}

	inferenceClient := inference.NewClient(inference.Options{
		Endpoint: cfg.InferenceEndpoint(),
		APIKey:   cfg.InferenceAPIKey,
		Timeout:  cfg.InferenceTimeout,
	}, fileStore)

	pipeline := detector.NewPipeline(inferenceClient, fileStore)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	userRepo := repository.NewMongoUserRepository(mongoClient, cfg.MongoDatabase)
	reportMailer := mailer.NewSMTPMailer(mailer.Options{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		User:      cfg.EmailUser,
		Password:  cfg.EmailPassword,
		Recipient: cfg.EmailRecipient,
	})

	detectionService := service.NewDetectionService(pipeline)
	reportService := service.NewReportService(fileStore, reportMailer, userRepo)
	userService := service.NewUserService(userRepo)

	handler := transport.NewHandler(detectionService, reportService, userService, cfg)

	return &Container{
		config:      cfg,
		mongoClient: mongoClient,
		fileStore:   fileStore,
		handler:     handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// FileStore returns the upload-directory file store
func (c *Container) FileStore() storage.FileStore {
	return c.fileStore
}

// Close releases held resources
func (c *Container) Close(ctx context.Context) error {
	return c.mongoClient.Disconnect(ctx)
}
