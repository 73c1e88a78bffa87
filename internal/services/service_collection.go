package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"

	"pedium/internal/cache"
	"pedium/internal/config"
	"pedium/internal/documents"
	"pedium/internal/repositories"
	"pedium/internal/viewed"
)

// ServiceCollection holds all services with dependency injection
type ServiceCollection struct {
	// Core Services
	ArticleService    ArticleService    `json:"-"`
	SocialService     SocialService     `json:"-"`
	AuthService       AuthService       `json:"-"`
	EnrichmentService EnrichmentService `json:"-"`
	FileService       FileService       `json:"-"`

	// Repository Collection
	Repositories *repositories.Collection `json:"-"`

	// Infrastructure Components
	Documents  *documents.Client      `json:"-"`
	Cache      cache.Cache            `json:"-"`
	ViewedSet  *viewed.Store          `json:"-"`
	Cloudinary *cloudinary.Cloudinary `json:"-"`
	Logger     *zap.Logger            `json:"-"`
	Config     *config.Config         `json:"-"`
}

// ServiceHealth reports the reachability of the external collaborators
type ServiceHealth struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Dependencies map[string]string `json:"dependencies"`
	Issues       []string          `json:"issues,omitempty"`
}

// NewServiceCollection wires repositories and services in dependency
// order on top of an already-constructed document store client.
func NewServiceCollection(
	store *documents.Client,
	cfg *config.Config,
	logger *zap.Logger,
) (*ServiceCollection, error) {
	if store == nil {
		return nil, fmt.Errorf("document store client is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	sc := &ServiceCollection{
		Documents: store,
		Config:    cfg,
		Logger:    logger,
	}

	if err := sc.initializeInfrastructure(); err != nil {
		return nil, fmt.Errorf("failed to initialize infrastructure: %w", err)
	}
	sc.initializeRepositories()
	sc.initializeServices()

	logger.Info("service collection initialized")
	return sc, nil
}

// ===============================
// INITIALIZATION
// ===============================

func (sc *ServiceCollection) initializeInfrastructure() error {
	c, err := cache.New(sc.Config.Cache, sc.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	sc.Cache = c
	sc.ViewedSet = viewed.NewStore(c, sc.Logger)

	if sc.Config.Storage.CloudName != "" {
		cld, err := cloudinary.NewFromParams(
			sc.Config.Storage.CloudName,
			sc.Config.Storage.APIKey,
			sc.Config.Storage.APISecret,
		)
		if err != nil {
			return fmt.Errorf("failed to initialize cloudinary: %w", err)
		}
		sc.Cloudinary = cld
	}
	return nil
}

func (sc *ServiceCollection) initializeRepositories() {
	sc.Repositories = repositories.NewCollection(sc.Documents, sc.Config.Documents, sc.Logger)
}

func (sc *ServiceCollection) initializeServices() {
	sc.EnrichmentService = NewEnrichmentService(sc.Config.AI, sc.Logger)
	sc.FileService = NewFileService(sc.Cloudinary, sc.Config.Storage, sc.Logger)

	sc.AuthService = NewAuthService(
		sc.Config.Auth,
		sc.Documents.Account(),
		google.Endpoint,
		sc.Logger,
	)

	sc.ArticleService = NewArticleService(
		sc.Repositories.Articles,
		sc.EnrichmentService,
		sc.FileService,
		sc.Logger,
	)

	sc.SocialService = NewSocialService(
		sc.Repositories.Articles,
		sc.Repositories.Comments,
		sc.Repositories.Follows,
		sc.ViewedSet,
		sc.Logger,
	)
}

// ===============================
// HEALTH AND LIFECYCLE
// ===============================

// HealthCheck probes the document store and the cache
func (sc *ServiceCollection) HealthCheck(ctx context.Context) *ServiceHealth {
	health := &ServiceHealth{
		Status:       "healthy",
		Timestamp:    time.Now(),
		Dependencies: make(map[string]string),
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sc.Documents.Health(checkCtx); err != nil {
		health.Status = "degraded"
		health.Dependencies["documents"] = "unreachable"
		health.Issues = append(health.Issues, fmt.Sprintf("document store: %v", err))
	} else {
		health.Dependencies["documents"] = "healthy"
	}

	if err := sc.Cache.Health(checkCtx); err != nil {
		health.Status = "degraded"
		health.Dependencies["cache"] = "unreachable"
		health.Issues = append(health.Issues, fmt.Sprintf("cache: %v", err))
	} else {
		health.Dependencies["cache"] = "healthy"
	}

	return health
}

// Shutdown releases held resources
func (sc *ServiceCollection) Shutdown(ctx context.Context) error {
	sc.Logger.Info("shutting down service collection")
	if sc.Cache != nil {
		if err := sc.Cache.Close(); err != nil {
			return fmt.Errorf("cache close: %w", err)
		}
	}
	return nil
}
