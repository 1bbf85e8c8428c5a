package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mapexe/storefront-backend/internal/middleware"
	"github.com/mapexe/storefront-backend/internal/services"
	"github.com/mapexe/storefront-backend/internal/utils"
)

type TestimonialHandler struct {
	testimonialService *services.TestimonialService
}

func NewTestimonialHandler(testimonialService *services.TestimonialService) *TestimonialHandler {
	return &TestimonialHandler{
		testimonialService: testimonialService,
	}
}

// GET /testimonials?verified=true|false
func (h *TestimonialHandler) ListTestimonials(c *gin.Context) {
	var verified *bool
	if raw := c.Query("verified"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			utils.ValidationErrorResponse(c, []utils.ValidationError{
				utils.NewValidationError("verified", "boolean", "Verified must be true or false"),
			})
			return
		}
		verified = &v
	}

	testimonials, err := h.testimonialService.ListTestimonials(c.Request.Context(), verified)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, testimonials)
}

// POST /testimonials
func (h *TestimonialHandler) CreateTestimonial(c *gin.Context) {
	var req services.CreateTestimonialRequest
	if !bindJSON(c, &req) {
		return
	}

	testimonial, err := h.testimonialService.CreateTestimonial(c.Request.Context(), middleware.GetPrincipal(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, testimonial)
}

// PUT /testimonials/:id/verify
func (h *TestimonialHandler) VerifyTestimonial(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	testimonial, err := h.testimonialService.Verify(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, testimonial)
}
