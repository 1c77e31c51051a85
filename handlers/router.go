package handlers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ecom-backend/config"
)

// SetupRouter builds the engine so main and the tests share one wiring.
func SetupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "API-Authorization")
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.Static("/uploads", cfg.UploadDir)

	h := &Handler{DB: db, Cfg: cfg}
	api := r.Group("/", AuthMiddleware(cfg.APIToken))

	customers := api.Group("/customers")
	{
		customers.GET("", h.ListCustomers)
		customers.POST("", h.CreateCustomer)
		customers.POST("/login", h.LoginCustomer)
		customers.GET("/search", h.SearchCustomers)
		customers.GET("/:id", h.GetCustomer)
		customers.GET("/:id/with-password", h.GetCustomerWithPassword)
		customers.PUT("/:id", h.UpdateCustomer)
		customers.DELETE("/:id", h.DeleteCustomer)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.POST("", h.CreateCategory)
		categories.GET("/root", h.GetRootCategories)
		categories.GET("/hierarchy", h.GetCategoryHierarchy)
		categories.GET("/search", h.SearchCategories)
		categories.GET("/:id", h.GetCategory)
		categories.GET("/:id/with-children", h.GetCategoryWithChildren)
		categories.PUT("/:id", h.UpdateCategory)
		categories.DELETE("/:id", h.DeleteCategory)
	}

	products := api.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.POST("", h.CreateProduct)
		products.GET("/search", h.SearchProducts)
		products.GET("/:id", h.GetProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
		products.POST("/:id/images", h.AddProductImage)
		products.DELETE("/:id/images/:image_id", h.DeleteProductImage)
		products.POST("/:id/variations", h.AddProductVariation)
		products.PUT("/:id/variations/:variation_id", h.UpdateProductVariation)
		products.DELETE("/:id/variations/:variation_id", h.DeleteProductVariation)
	}

	orders := api.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.POST("", h.CreateOrder)
		orders.GET("/customer/:customer_id", h.GetOrdersByCustomer)
		orders.GET("/:id", h.GetOrder)
		orders.PUT("/:id", h.UpdateOrder)
		orders.PATCH("/:id/status", h.UpdateOrderStatus)
		orders.DELETE("/:id", h.DeleteOrder)
		orders.POST("/:id/items", h.AddOrderItem)
		orders.PUT("/:id/items/:item_id", h.UpdateOrderItem)
		orders.DELETE("/:id/items/:item_id", h.DeleteOrderItem)
	}

	return r
}
