package photo

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the photo API under /api and the static image alias
// under /uploads. All routes are public.
func RegisterRoutes(r *gin.Engine, h *Handler, ws *WSHandler) {
	api := r.Group("/api")
	{
		api.GET("/photos", h.List)
		api.DELETE("/photos/:id", h.Delete)
		api.POST("/upload", h.Upload)
		api.POST("/upload/batch", h.UploadBatch)
		api.GET("/qr/:photoId", h.QRCode)
		api.GET("/download/:token", h.Download)
		api.GET("/image/:filename", h.Image)
	}
	if ws != nil {
		api.GET("/ws/photos", ws.HandleFeed)
	}

	r.GET("/uploads/:filename", h.Image)
}
