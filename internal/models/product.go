package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Catégories de fleurs disponibles dans le catalogue
var ProductCategories = map[string]string{
	"roses":    "Roses",
	"tulips":   "Tulipes",
	"orchids":  "Orchidées",
	"bouquets": "Bouquets",
	"other":    "Autres",
}

func IsValidCategory(category string) bool {
	_, ok := ProductCategories[category]
	return ok
}

type Product struct {
	ID          gocql.UUID `json:"id" db:"product_id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Price       float64    `json:"price" db:"price"`
	Category    string     `json:"category" db:"category"`
	ImageURL    string     `json:"image_url" db:"image_url"`
	IsPopular   bool       `json:"is_popular" db:"is_popular"`
	Rating      float64    `json:"rating" db:"rating"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
