package routes

import (
	"civicfix-be/controllers"
	"civicfix-be/middlewares"

	"github.com/gin-gonic/gin"
)

// AdminRoutes sets up the authority and admin routes
func AdminRoutes(r *gin.Engine) {
	admin := r.Group("/api/admin", middlewares.AuthMiddleware())
	{
		admin.GET("/complaints",
			middlewares.RequireRole("authority", "admin"),
			controllers.GetWardComplaints)
		admin.PATCH("/complaint/:id/status",
			middlewares.RequireRole("authority"),
			controllers.UpdateComplaintStatus)
		admin.GET("/escalations",
			middlewares.RequireRole("admin"),
			controllers.GetEscalations)
		admin.GET("/analytics",
			middlewares.RequireRole("authority", "admin"),
			controllers.GetAuthorityAnalytics)
	}
}
