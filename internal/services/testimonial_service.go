package services

import (
	"context"

	"github.com/mapexe/storefront-backend/internal/access"
	"github.com/mapexe/storefront-backend/internal/apperr"
	"github.com/mapexe/storefront-backend/internal/models"
	"github.com/mapexe/storefront-backend/internal/storage"
)

type TestimonialService struct {
	store  storage.Store
	policy *access.Policy
}

// CreateTestimonialRequest has no verified field: a client-supplied value is
// dropped during decoding.
type CreateTestimonialRequest struct {
	Name    string  `json:"name" validate:"required,max=100"`
	Role    string  `json:"role" validate:"required,max=100"`
	Rating  float64 `json:"rating" validate:"required,gte=1,lte=5,half_step"`
	Content string  `json:"content" validate:"required,max=2000"`
}

func NewTestimonialService(store storage.Store, policy *access.Policy) *TestimonialService {
	return &TestimonialService{
		store:  store,
		policy: policy,
	}
}

func (s *TestimonialService) ListTestimonials(ctx context.Context, verified *bool) ([]models.Testimonial, error) {
	testimonials, err := s.store.ListTestimonials(ctx, verified)
	if err != nil {
		return nil, storeError("list testimonials", err)
	}
	return testimonials, nil
}

func (s *TestimonialService) CreateTestimonial(ctx context.Context, principal *access.Principal, req *CreateTestimonialRequest) (*models.Testimonial, error) {
	if err := s.policy.Require(principal, access.ResourceTestimonials, access.ActionCreate); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	testimonial, err := s.store.CreateTestimonial(ctx, models.TestimonialInput{
		Name:    req.Name,
		Role:    req.Role,
		Rating:  req.Rating,
		Content: req.Content,
	})
	if err != nil {
		return nil, storeError("create testimonial", err)
	}
	return testimonial, nil
}

// Verify marks a testimonial as verified. There is no way back; verifying
// twice returns the record unchanged.
func (s *TestimonialService) Verify(ctx context.Context, principal *access.Principal, id uint) (*models.Testimonial, error) {
	if err := s.policy.Require(principal, access.ResourceTestimonials, access.ActionVerify); err != nil {
		return nil, err
	}

	testimonial, err := s.store.GetTestimonial(ctx, id)
	if err != nil {
		return nil, storeError("get testimonial", err)
	}
	if testimonial == nil {
		return nil, apperr.NotFound("testimonial")
	}
	if testimonial.Verified {
		return testimonial, nil
	}

	verified := true
	updated, err := s.store.UpdateTestimonial(ctx, id, models.TestimonialPatch{Verified: &verified})
	if err != nil {
		return nil, storeError("verify testimonial", err)
	}
	if updated == nil {
		return nil, apperr.NotFound("testimonial")
	}
	return updated, nil
}
