package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"library-backend/internal/config"
	bookHandler "library-backend/internal/domains/book/handler"
	bookRepo "library-backend/internal/domains/book/repository"
	bookService "library-backend/internal/domains/book/service"
	loanHandler "library-backend/internal/domains/loan/handler"
	loanRepo "library-backend/internal/domains/loan/repository"
	loanService "library-backend/internal/domains/loan/service"
	recHandler "library-backend/internal/domains/recommendation/handler"
	recRepo "library-backend/internal/domains/recommendation/repository"
	recService "library-backend/internal/domains/recommendation/service"
	userHandler "library-backend/internal/domains/user/handler"
	userRepo "library-backend/internal/domains/user/repository"
	userService "library-backend/internal/domains/user/service"
	infraCache "library-backend/internal/infrastructure/cache"
	infraDatabase "library-backend/internal/infrastructure/database"
	"library-backend/pkg/cache"
	"library-backend/pkg/database"
	"library-backend/pkg/jwt"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph. Every component is a
// singleton built once at startup.
type Container struct {
	// Infrastructure
	Config     *config.Config
	DB         *infraDatabase.PostgresDB
	Cache      cache.Cache
	JWTManager *jwt.Manager
	TxManager  database.TxManager

	// Repositories
	BookRepo bookRepo.RepositoryInterface
	LoanRepo loanRepo.RepositoryInterface
	UserRepo userRepo.RepositoryInterface
	RecRepo  recRepo.RepositoryInterface

	// Services
	BookService bookService.ServiceInterface
	LoanService loanService.ServiceInterface
	UserService userService.ServiceInterface
	RecService  recService.ServiceInterface

	// HTTP handlers
	BookHandler *bookHandler.BookHandler
	LoanHandler *loanHandler.LoanHandler
	UserHandler *userHandler.UserHandler
	RecHandler  *recHandler.RecommendationHandler
}

// ========================================
// CONSTRUCTOR
// ========================================

// NewContainer builds the whole dependency graph in order:
// config, then infrastructure, then repositories, services, handlers.
func NewContainer() (*Container, error) {
	c := &Container{}

	// Step 1: configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	// Step 2: database
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := infraDatabase.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	c.TxManager = database.NewTxManager(db.Pool)

	// Step 3: cache. Redis failure is non-critical: repositories fall
	// back to the database on every miss.
	redisCache := infraCache.NewRedisCache(
		cfg.Redis.Host,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if rc, ok := redisCache.(*infraCache.RedisCache); ok {
		if err := rc.Connect(context.Background()); err != nil {
			log.Printf("redis connection failed (non-critical): %v", err)
		}
	}
	c.Cache = redisCache

	c.JWTManager = jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	// Steps 4-6: domain layers
	c.initRepositories()
	c.initServices()
	c.initHandlers()

	return c, nil
}

// ========================================
// LAYER INITIALIZATION
// ========================================

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.BookRepo = bookRepo.NewPostgresRepository(pool, c.Cache)
	c.LoanRepo = loanRepo.NewPostgresRepository(pool)
	c.UserRepo = userRepo.NewPostgresRepository(pool)
	c.RecRepo = recRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	// The loan service owns the catalog/ledger invariant; book and user
	// services consult it before destructive operations.
	c.LoanService = loanService.NewService(
		c.TxManager,
		c.LoanRepo,
		c.BookRepo,
		c.UserRepo,
		c.Config.Loan,
	)

	c.BookService = bookService.NewService(c.BookRepo, c.LoanService)
	c.UserService = userService.NewService(c.UserRepo, c.JWTManager, c.LoanService)
	c.RecService = recService.NewService(c.RecRepo, c.Cache)
}

func (c *Container) initHandlers() {
	c.BookHandler = bookHandler.NewBookHandler(c.BookService, c.LoanService)
	c.LoanHandler = loanHandler.NewLoanHandler(c.LoanService)
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.RecHandler = recHandler.NewRecommendationHandler(c.RecService)
}

// ========================================
// SHUTDOWN
// ========================================

// Cleanup releases pooled resources during graceful shutdown
func (c *Container) Cleanup() {
	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Pool.Close()
	}

	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
			if err := rc.Close(); err != nil {
				log.Printf("failed to close redis: %v", err)
			}
		}
	}
}
