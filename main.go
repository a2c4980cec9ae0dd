package main

import (
	"log"
	"net/http"

	"texnomart-server/cache"
	"texnomart-server/config"
	"texnomart-server/database"
	"texnomart-server/handlers"
	"texnomart-server/models"
	"texnomart-server/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Connect to database
	db, err := database.Connect(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	// Initialize tables
	if err := db.InitializeTables(); err != nil {
		log.Fatal("Failed to initialize tables:", err)
	}

	// Initialize image storage: Cloudinary when configured, local
	// filesystem otherwise
	if config.AppConfig.CloudinaryURL != "" {
		storage, err := services.NewCloudinaryStorage(config.AppConfig.CloudinaryURL)
		if err != nil {
			log.Fatal("Failed to initialize Cloudinary:", err)
		}
		services.Storage = storage
	} else {
		storage, err := services.NewLocalStorage(config.AppConfig.MediaDir, config.AppConfig.MediaBaseURL)
		if err != nil {
			log.Fatal("Failed to initialize media storage:", err)
		}
		services.Storage = storage
		log.Printf("CLOUDINARY_URL not set, storing media under %s", config.AppConfig.MediaDir)
	}

	// Response cache. Every product write, through any handler, drops
	// the product detail entry and all list entries.
	store := cache.NewMemory()
	db.AddSaveHook(func(table, id string) {
		if table == (models.Product{}).TableName() {
			store.Delete(cache.ProductKey(id))
			store.DeletePattern(cache.ProductListPrefix())
		}
	})

	handlers.InitializeHandlers(db, store, config.AppConfig.JWTSecret)

	// Set Gin mode
	if config.AppConfig.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.Default()

	// Add CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Configure this properly for production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Texnomart server is running",
		})
	})

	// Locally stored media
	if config.AppConfig.CloudinaryURL == "" {
		router.Static("/media", config.AppConfig.MediaDir)
	}

	// Auth routes are exempt from the weekday gate so users can still
	// log in on weekends
	router.POST("/register/", handlers.RegisterUser)
	router.POST("/login/", handlers.LoginUser)
	router.POST("/custom-token/", handlers.LoginUser)
	router.POST("/logout/", handlers.LogoutUser)
	router.POST("/login-jwt/", handlers.LoginJWT)
	router.POST("/logout-jwt/", handlers.LogoutJWT)
	router.POST("/token-refresh/", handlers.RefreshJWT)

	// Catalog routes: reads are public, mutations require auth and a
	// working day
	api := router.Group("/", handlers.WeekdayGate())
	{
		api.GET("/categories/", handlers.GetCategories)
		api.POST("/categories/", handlers.AuthMiddleware(), handlers.CreateCategory)
		api.GET("/categories/:id/", handlers.GetCategory)
		api.PUT("/categories/:id/", handlers.AuthMiddleware(), handlers.UpdateCategory)
		api.DELETE("/categories/:id/", handlers.AuthMiddleware(), handlers.DeleteCategory)

		api.GET("/products/", handlers.GetProducts)
		api.POST("/products/", handlers.AuthMiddleware(), handlers.CreateProduct)
		api.GET("/products/:id/", handlers.GetProduct)
		api.PUT("/products/:id/", handlers.AuthMiddleware(), handlers.UpdateProduct)
		api.DELETE("/products/:id/", handlers.AuthMiddleware(), handlers.DeleteProduct)

		api.GET("/images/:id/", handlers.GetImage)
		api.POST("/images/", handlers.AuthMiddleware(), handlers.CreateImage)

		api.GET("/comment-list/", handlers.GetComments)
		api.POST("/comment-list/", handlers.OptionalAuthMiddleware(), handlers.CreateComment)
		api.GET("/comment-list/:id/", handlers.GetComment)
		api.PUT("/comment-list/:id/", handlers.AuthMiddleware(), handlers.UpdateComment)
		api.DELETE("/comment-list/:id/", handlers.AuthMiddleware(), handlers.DeleteComment)
	}

	// Start server
	port := config.AppConfig.ServerPort
	log.Printf("Server starting on port %s", port)
	handler := c.Handler(router)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
