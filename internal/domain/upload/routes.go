package upload

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the upload API on r (normally the /api group).
// None of the routes need a session; update and delete are gated by the
// upload's secret code.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	uploads := r.Group("/uploads")
	{
		uploads.GET("", h.List)
		uploads.GET("/:id", h.Get)
		uploads.PUT("/:id", h.Update)
		uploads.DELETE("/:id", h.Delete)
	}

	r.GET("/search", h.Search)
	r.GET("/leaderboard", h.Leaderboard)
	r.POST("/upload", h.Upload)
	r.POST("/like/:id", h.Like)
	r.GET("/download/:id", h.Download)
}
