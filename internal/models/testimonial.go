package models

type Testimonial struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	Name     string  `json:"name" gorm:"size:100;not null"`
	Role     string  `json:"role" gorm:"size:100;not null"`
	Rating   float64 `json:"rating" gorm:"not null"`
	Content  string  `json:"content" gorm:"type:text;not null"`
	Verified bool    `json:"verified" gorm:"not null;default:false"`
}

// TestimonialInput has no verified flag: new testimonials always start
// unverified.
type TestimonialInput struct {
	Name    string
	Role    string
	Rating  float64
	Content string
}

type TestimonialPatch struct {
	Name     *string
	Role     *string
	Rating   *float64
	Content  *string
	Verified *bool
}
