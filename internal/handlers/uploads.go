package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/mapexe/storefront-backend/internal/middleware"
	"github.com/mapexe/storefront-backend/internal/services"
	"github.com/mapexe/storefront-backend/internal/utils"
)

type UploadHandler struct {
	imageService *services.ImageService
}

func NewUploadHandler(imageService *services.ImageService) *UploadHandler {
	return &UploadHandler{
		imageService: imageService,
	}
}

// POST /uploads/images (multipart field "file")
func (h *UploadHandler) UploadImage(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		utils.ValidationErrorResponse(c, []utils.ValidationError{
			utils.NewValidationError("file", "required", "File is required"),
		})
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	result, err := h.imageService.Upload(c.Request.Context(), middleware.GetPrincipal(c), services.ImageUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Body:     file,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, result)
}
