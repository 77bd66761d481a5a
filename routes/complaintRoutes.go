package routes

import (
	"civicfix-be/controllers"
	"civicfix-be/middlewares"

	"github.com/gin-gonic/gin"
)

// ComplaintRoutes sets up the complaint and vote routes
func ComplaintRoutes(r *gin.Engine) {
	complaint := r.Group("/api/complaint")
	{
		complaint.POST("/create",
			middlewares.AuthMiddleware(),
			middlewares.RequireRole("citizen"),
			middlewares.ComplaintRateLimiter(5),
			controllers.CreateComplaint)
		complaint.GET("/", controllers.GetAllComplaints)
		complaint.GET("/recent", controllers.RecentComplaints)
		complaint.GET("/nearby", controllers.NearbyComplaints)
		complaint.GET("/duplicate-check", controllers.DuplicateCheck)
		complaint.GET("/mine", middlewares.AuthMiddleware(), controllers.GetMyComplaints)
		complaint.GET("/:id", controllers.GetComplaint)
		complaint.PUT("/:id",
			middlewares.AuthMiddleware(),
			middlewares.RequireRole("citizen"),
			controllers.UpdateComplaint)
		complaint.POST("/:id/upvote",
			middlewares.AuthMiddleware(),
			middlewares.RequireRole("citizen"),
			controllers.UpvoteComplaint)
		complaint.DELETE("/:id/upvote",
			middlewares.AuthMiddleware(),
			middlewares.RequireRole("citizen"),
			controllers.RemoveUpvote)
	}
}
