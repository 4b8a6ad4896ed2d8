package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"floralie_back_end/internal/catalog"
	"floralie_back_end/internal/models"
	"floralie_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

const productsPerPage = 6

// ProductHandler sert le catalogue public et la gestion admin des produits.
type ProductHandler struct {
	catalog *catalog.ScyllaStore
}

func NewProductHandler(store *catalog.ScyllaStore) *ProductHandler {
	return &ProductHandler{catalog: store}
}

// GET /api/products?category=roses&page=2
func (h *ProductHandler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	products, err := h.catalog.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération des produits"})
		return
	}

	total := len(products)
	pages := (total + productsPerPage - 1) / productsPerPage
	start := (page - 1) * productsPerPage
	if start > total {
		start = total
	}
	end := start + productsPerPage
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, gin.H{
		"products":   products[start:end],
		"page":       page,
		"pages":      pages,
		"total":      total,
		"categories": models.ProductCategories,
	})
}

// GET /api/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// GET /api/products/search?q=rose
func (h *ProductHandler) SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre q requis"})
		return
	}

	results, err := catalog.SearchProducts(query)
	if err != nil {
		log.Println("❌ Recherche Elasticsearch:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la recherche"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": results, "count": len(results)})
}

// POST /api/admin/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input struct {
		Name        string  `json:"name" binding:"required"`
		Description string  `json:"description"`
		Price       float64 `json:"price" binding:"required"`
		Category    string  `json:"category" binding:"required"`
		IsPopular   bool    `json:"is_popular"`
		ImageURL    string  `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if !models.IsValidCategory(input.Category) {
		respondError(c, fmt.Errorf("%w: catégorie inconnue: %s", models.ErrValidation, input.Category))
		return
	}
	if input.Price <= 0 {
		respondError(c, fmt.Errorf("%w: le prix doit être positif", models.ErrValidation))
		return
	}

	now := time.Now()
	product := models.Product{
		ID:          gocql.TimeUUID(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		IsPopular:   input.IsPopular,
		ImageURL:    input.ImageURL,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.catalog.SaveProduct(c.Request.Context(), product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création du produit"})
		return
	}

	catalog.IndexProduct(product)

	c.JSON(http.StatusCreated, product)
}

// PUT /api/admin/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var input struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
		Category    *string  `json:"category"`
		IsPopular   *bool    `json:"is_popular"`
		ImageURL    *string  `json:"image_url"`
		IsActive    *bool    `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			respondError(c, fmt.Errorf("%w: le prix doit être positif", models.ErrValidation))
			return
		}
		product.Price = *input.Price
	}
	if input.Category != nil {
		if !models.IsValidCategory(*input.Category) {
			respondError(c, fmt.Errorf("%w: catégorie inconnue: %s", models.ErrValidation, *input.Category))
			return
		}
		product.Category = *input.Category
	}
	if input.IsPopular != nil {
		product.IsPopular = *input.IsPopular
	}
	if input.ImageURL != nil {
		product.ImageURL = *input.ImageURL
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	product.UpdatedAt = time.Now()
	if err := h.catalog.SaveProduct(c.Request.Context(), product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour du produit"})
		return
	}

	if product.IsActive {
		catalog.IndexProduct(product)
	} else {
		catalog.RemoveFromIndex(product.ID.String())
	}

	c.JSON(http.StatusOK, product)
}

// DELETE /api/admin/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.catalog.DeleteProduct(c.Request.Context(), product.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression du produit"})
		return
	}
	catalog.RemoveFromIndex(id)

	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé"})
}

// POST /api/admin/products/:id/image
func (h *ProductHandler) UploadProductImage(c *gin.Context) {
	id := c.Param("id")
	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier image requis"})
		return
	}

	url, err := services.UploadProductImage(c.Request.Context(), id, file)
	if err != nil {
		log.Println("❌ Upload MinIO:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de l'envoi de l'image"})
		return
	}

	product.ImageURL = url
	product.UpdatedAt = time.Now()
	if err := h.catalog.SaveProduct(c.Request.Context(), product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour du produit"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": url})
}
