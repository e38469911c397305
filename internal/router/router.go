package router

import (
	"time"

	"github.com/bloodlink-dev/bloodlink/internal/handlers"
	"github.com/bloodlink-dev/bloodlink/internal/middleware"
	"github.com/bloodlink-dev/bloodlink/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the REST surface. Reads are public, writes require a
// token; admin-operations and console-access are separate, stricter
// gates.
func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", handlers.HealthCheck)

	auth := r.Group("/auth")
	{
		auth.POST("/register", handlers.CreateUser)
		auth.POST("/token", handlers.Token)
		auth.POST("/token/refresh", handlers.RefreshToken)
		auth.POST("/confirm", handlers.ConfirmEmail)
		auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
	}

	users := r.Group("/users")
	{
		users.POST("", handlers.CreateUser) // registration
		users.GET("", middleware.AuthMiddleware(), handlers.ListUsers)
		users.GET("/:id", middleware.AuthMiddleware(), handlers.GetUser)
		users.PUT("/:id", middleware.AuthMiddleware(), handlers.UpdateUser)
		users.PATCH("/:id", middleware.AuthMiddleware(), handlers.UpdateUser)
		users.DELETE("/:id", middleware.AuthMiddleware(), handlers.DeleteUser)
	}

	r.GET("/donors/search", handlers.SearchDonors)

	banks := r.Group("/blood-banks")
	{
		banks.GET("", handlers.ListBloodBanks)
		banks.GET("/:id", handlers.GetBloodBank)
		banks.POST("", middleware.AuthMiddleware(), handlers.CreateBloodBank)
		banks.PUT("/:id", middleware.AuthMiddleware(), handlers.UpdateBloodBank)
		banks.PATCH("/:id", middleware.AuthMiddleware(), handlers.UpdateBloodBank)
		banks.DELETE("/:id", middleware.AuthMiddleware(), handlers.DeleteBloodBank)
	}

	inventory := r.Group("/inventory")
	{
		inventory.GET("", handlers.ListInventory)
		inventory.GET("/:id", handlers.GetInventory)
		inventory.POST("", middleware.AuthMiddleware(), handlers.CreateInventory)
		inventory.PUT("/:id", middleware.AuthMiddleware(), handlers.UpdateInventory)
		inventory.PATCH("/:id", middleware.AuthMiddleware(), handlers.UpdateInventory)
		inventory.DELETE("/:id", middleware.AuthMiddleware(), handlers.DeleteInventory)
	}

	requests := r.Group("/requests")
	{
		requests.GET("", handlers.ListRequests)
		requests.POST("", middleware.AuthMiddleware(), handlers.CreateRequest)
		requests.GET("/mine", middleware.AuthMiddleware(), handlers.MyRequests)
		requests.POST("/:id/approve", middleware.AuthMiddleware(), middleware.RequireAdmin(), handlers.ApproveRequest)
		requests.POST("/:id/reject", middleware.AuthMiddleware(), middleware.RequireAdmin(), handlers.RejectRequest)
	}

	donations := r.Group("/donations")
	{
		donations.GET("", handlers.ListDonations)
		donations.GET("/:id", handlers.GetDonation)
		donations.POST("", middleware.AuthMiddleware(), handlers.CreateDonation)
		donations.POST("/:id/approve", middleware.AuthMiddleware(), middleware.RequireAdmin(), handlers.ApproveDonation)
	}

	admin := r.Group("/admin", middleware.AuthMiddleware(), middleware.RequireAdmin())
	{
		admin.GET("/stats", handlers.AdminStats)
		admin.GET("/analytics", handlers.Analytics)
	}

	console := r.Group("/console", middleware.AuthMiddleware(), middleware.RequireConsole())
	{
		console.GET("/users", handlers.ConsoleListUsers)
		console.PATCH("/users/:id", handlers.ConsoleUpdateUser)
	}

	return r
}
