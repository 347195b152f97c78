package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"library-backend/internal/shared/middleware"
	"library-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c)
		setupUserRoutes(v1, c)
		setupBookRoutes(v1, c)
		setupLoanRoutes(v1, c)
		setupRecommendationRoutes(v1, c)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.UserHandler.Register)
		auth.POST("/login", c.UserHandler.Login)
		auth.POST("/refresh", c.UserHandler.RefreshToken)
	}
}

// ========================================
// USER ROUTES
// ========================================
func setupUserRoutes(v1 *gin.RouterGroup, c *container.Container) {
	users := v1.Group("/users")
	users.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		users.GET("/me", c.UserHandler.GetProfile)
		users.PUT("/me", c.UserHandler.UpdateProfile)
	}

	// Librarian-only member administration
	staff := v1.Group("/users")
	staff.Use(middleware.AuthMiddleware(c.JWTManager), middleware.LibrarianMiddleware())
	{
		staff.GET("", c.UserHandler.ListUsers)
		staff.PUT("/:id/role", c.UserHandler.UpdateUserRole)
		staff.DELETE("/:id", c.UserHandler.DeleteUser)
		staff.GET("/:id/loans", c.LoanHandler.ListForUser)
	}
}

// ========================================
// BOOK ROUTES
// ========================================
func setupBookRoutes(v1 *gin.RouterGroup, c *container.Container) {
	books := v1.Group("/books")
	books.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		books.GET("", c.BookHandler.List)
		books.GET("/:id", c.BookHandler.GetByID)
	}

	// Catalog management is librarian-only
	staff := v1.Group("/books")
	staff.Use(middleware.AuthMiddleware(c.JWTManager), middleware.LibrarianMiddleware())
	{
		staff.POST("", c.BookHandler.Create)
		staff.PUT("/:id", c.BookHandler.Update)
		staff.DELETE("/:id", c.BookHandler.Delete)
		staff.GET("/:id/loans", c.BookHandler.ListOpenLoans)
	}
}

// ========================================
// LOAN ROUTES
// ========================================
func setupLoanRoutes(v1 *gin.RouterGroup, c *container.Container) {
	loans := v1.Group("/loans")
	loans.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		loans.POST("", c.LoanHandler.Borrow)
		loans.GET("", c.LoanHandler.ListOpen)
		loans.GET("/history", c.LoanHandler.ListHistory)
		loans.POST("/:id/return", c.LoanHandler.Return)
		loans.POST("/:id/renew", c.LoanHandler.Renew)
	}
}

// ========================================
// RECOMMENDATION ROUTES
// ========================================
func setupRecommendationRoutes(v1 *gin.RouterGroup, c *container.Container) {
	recs := v1.Group("/recommendations")
	recs.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		recs.GET("", c.RecHandler.Get)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
			"services":  gin.H{},
		}

		// Check database
		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
			}
		}

		// Check redis. Degraded redis is not fatal: caches fall back to
		// the database.
		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
