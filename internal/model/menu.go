package model

import "time"

// Category groups menu items for display. DisplayOrder controls the order
// categories appear in on the menu page.
type Category struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	DisplayOrder uint32    `json:"display_order"`
	Icon         *string   `json:"icon,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// MenuItem is a sellable dish belonging to exactly one category. Prices are
// stored in cents to avoid floating point drift. Category is populated by a
// client-side join against the fetched category list and may be nil when the
// categories have not been loaded.
type MenuItem struct {
	ID          uint64    `json:"id"`
	CategoryID  uint64    `json:"category_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	PriceCents  uint32    `json:"price_cents"`
	ImageURL    *string   `json:"image_url,omitempty"`
	IsAvailable bool      `json:"is_available"`
	Badges      []string  `json:"badges,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Category    *Category `json:"category,omitempty"`
}

// MenuItemUpdate carries a partial update for a menu item. Nil fields are
// left untouched by the repository.
type MenuItemUpdate struct {
	CategoryID  *uint64
	Name        *string
	Description *string
	PriceCents  *uint32
	ImageURL    *string
	IsAvailable *bool
	Badges      []string
}
