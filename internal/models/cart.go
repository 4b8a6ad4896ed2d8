package models

// CartItem est une ligne de panier stockée dans Redis.
// Une seule ligne par produit : ajouter un produit déjà présent
// incrémente la quantité au lieu de dupliquer la ligne.
type CartItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"image_url,omitempty"`
}

type Cart struct {
	Owner string     `json:"owner"`
	Items []CartItem `json:"items"`
}
