package catalog

import "time"

// FoodItem is a menu entry in the foodItems collection. Price is in cents.
type FoodItem struct {
	ID          string    `firestore:"-" json:"id"`
	Name        string    `firestore:"name" json:"name"`
	Description string    `firestore:"description" json:"description"`
	Price       int64     `firestore:"price" json:"price"`
	ImageURL    string    `firestore:"imageUrl" json:"image_url"`
	Reservable  bool      `firestore:"reservable" json:"reservable"`
	CreatedAt   time.Time `firestore:"createdAt" json:"created_at"`
}

type NewFoodItem struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Price       int64  `json:"price" validate:"required,min=1"`
	ImageURL    string `json:"image_url"`
}

// UpdateFoodItem carries the editable fields of a menu entry.
type UpdateFoodItem struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Price       int64  `json:"price" validate:"required,min=1"`
}
