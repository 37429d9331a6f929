package model

import (
	"time"

	"github.com/google/uuid"
)

// PlaceholderImage is stored when a product is created without an image.
const PlaceholderImage = "/images/placeholder.png"

type Product struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Image      string    `json:"image"`
	Content    string    `json:"content"`
	Quantity   int64     `json:"quantity"`
	CategoryID uuid.UUID `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// CategoryName is resolved by a join on read and ignored on write.
	CategoryName string `json:"category_name,omitempty"`
}
