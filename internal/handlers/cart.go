package handlers

import (
	"fmt"
	"net/http"

	"floralie_back_end/internal/cart"
	"floralie_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

// CartHandler expose l'agrégat panier. Le propriétaire est l'utilisateur
// connecté (JWT) ou, à défaut, le jeton de session anonyme X-Session-ID.
type CartHandler struct {
	carts *cart.Service
}

func NewCartHandler(carts *cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

func cartOwner(c *gin.Context) (cart.Owner, error) {
	if userID := c.GetString("user_id"); userID != "" {
		return cart.Owner{UserID: userID}, nil
	}
	if session := c.GetHeader("X-Session-ID"); session != "" {
		return cart.Owner{Session: session}, nil
	}
	return cart.Owner{}, fmt.Errorf("%w: connectez-vous ou fournissez X-Session-ID", models.ErrValidation)
}

// GET /api/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	owner, err := cartOwner(c)
	if err != nil {
		respondError(c, err)
		return
	}

	current, err := h.carts.Get(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}
	total, err := h.carts.Total(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": current.Items, "total": total})
}

// POST /api/cart/add
func (h *CartHandler) AddToCart(c *gin.Context) {
	owner, err := cartOwner(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var input struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	current, err := h.carts.AddItem(c.Request.Context(), owner, input.ProductID, input.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Produit ajouté au panier",
		"items":   current.Items,
	})
}

// PUT /api/cart/:productId : quantité ≤ 0 supprime la ligne
// ("zéro supprime", comportement voulu).
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	owner, err := cartOwner(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	current, err := h.carts.SetItemQuantity(c.Request.Context(), owner, c.Param("productId"), input.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Panier mis à jour",
		"items":   current.Items,
	})
}

// DELETE /api/cart/:productId : idempotent, supprimer une ligne absente
// réussit aussi.
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	owner, err := cartOwner(c)
	if err != nil {
		respondError(c, err)
		return
	}

	current, err := h.carts.RemoveItem(c.Request.Context(), owner, c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Produit supprimé du panier",
		"items":   current.Items,
	})
}

// DELETE /api/cart/clear
func (h *CartHandler) ClearCart(c *gin.Context) {
	owner, err := cartOwner(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.carts.Clear(c.Request.Context(), owner); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Panier vidé avec succès"})
}
