package routes

import (
	"civicfix-be/controllers"
	"civicfix-be/middlewares"

	"github.com/gin-gonic/gin"
)

// WardRoutes sets up the ward routes
func WardRoutes(r *gin.Engine) {
	ward := r.Group("/api/ward")
	{
		ward.GET("/", controllers.ListWards)
		ward.GET("/:id", controllers.GetWard)
		ward.POST("/import",
			middlewares.AuthMiddleware(),
			middlewares.RequireRole("admin"),
			controllers.ImportWards)
	}
}
