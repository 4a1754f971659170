// Package server assembles the HTTP router.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"datalog/internal/handlers"
	"datalog/internal/middleware"

	_ "datalog/internal/docs" // Import swagger docs
)

// Handlers groups the request handlers mounted by NewRouter.
type Handlers struct {
	Products *handlers.ProductHandler
	Actions  *handlers.ActionHandler
}

// NewRouter builds the Gin engine serving the API. jwtSecret verifies the
// optional operator tokens presented on /api/v1 requests.
func NewRouter(h Handlers, jwtSecret string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Operator(jwtSecret))

	products := v1.Group("/products")
	products.POST("", h.Products.CreateProduct)
	products.GET("", h.Products.ListProducts)
	products.GET("/:id", h.Products.GetProduct)
	products.PUT("/:id", h.Products.UpdateProduct)
	products.DELETE("/:id", h.Products.DeleteProduct)
	products.GET("/:id/actions", h.Products.GetProductActions)

	actions := v1.Group("/actions")
	actions.GET("", h.Actions.ListActions)
	actions.GET("/:id", h.Actions.GetAction)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
