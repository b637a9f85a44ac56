package comment

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	r.GET("/uploads/:id/comments", h.List)
	r.POST("/uploads/:id/comments", h.Add)
}
