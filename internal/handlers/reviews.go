package handlers

import (
	"net/http"
	"time"

	"floralie_back_end/internal/catalog"
	"floralie_back_end/internal/database"
	"floralie_back_end/internal/models"
	"floralie_back_end/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// ReviewHandler gère les avis clients sur les produits.
type ReviewHandler struct {
	catalog   *catalog.ScyllaStore
	directory *users.Directory
}

func NewReviewHandler(store *catalog.ScyllaStore, directory *users.Directory) *ReviewHandler {
	return &ReviewHandler{catalog: store, directory: directory}
}

// GET /api/products/:id/reviews
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur de connexion à la base"})
		return
	}

	iter := session.Query(
		`SELECT review_id, product_id, user_id, user_name, rating, comment, created_at
		 FROM reviews WHERE product_id = ?`, product.ID).WithContext(c.Request.Context()).Iter()

	var reviews []models.Review
	var r models.Review
	for iter.Scan(&r.ID, &r.ProductID, &r.UserID, &r.UserName, &r.Rating, &r.Comment, &r.CreatedAt) {
		reviews = append(reviews, r)
		r = models.Review{}
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération des avis"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "rating": product.Rating})
}

// POST /api/products/:id/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var input struct {
		Rating  int    `json:"rating" binding:"required"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if input.Rating < 1 || input.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La note doit être comprise entre 1 et 5"})
		return
	}

	userID := c.GetString("user_id")

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur de connexion à la base"})
		return
	}

	// Un seul avis par client et par produit
	iter := session.Query(`SELECT user_id FROM reviews WHERE product_id = ?`, product.ID).
		WithContext(c.Request.Context()).Iter()
	var existing string
	for iter.Scan(&existing) {
		if existing == userID {
			iter.Close()
			c.JSON(http.StatusConflict, gin.H{"error": "Vous avez déjà laissé un avis sur ce produit"})
			return
		}
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la vérification des avis"})
		return
	}

	userName := "Client"
	if user, err := h.directory.GetUser(c.Request.Context(), userID); err == nil && user.Name != "" {
		userName = user.Name
	}

	review := models.Review{
		ID:        gocql.TimeUUID(),
		ProductID: product.ID,
		UserID:    userID,
		UserName:  userName,
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: time.Now(),
	}

	if err := session.Query(
		`INSERT INTO reviews (review_id, product_id, user_id, user_name, rating, comment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		review.ID, review.ProductID, review.UserID, review.UserName,
		review.Rating, review.Comment, review.CreatedAt).WithContext(c.Request.Context()).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de l'enregistrement de l'avis"})
		return
	}

	if rating, err := averageRating(c, session, product.ID); err == nil {
		_ = h.catalog.UpdateRating(c.Request.Context(), product.ID, rating)
	}

	c.JSON(http.StatusCreated, review)
}

func averageRating(c *gin.Context, session *gocql.Session, productID gocql.UUID) (float64, error) {
	iter := session.Query(`SELECT rating FROM reviews WHERE product_id = ?`, productID).
		WithContext(c.Request.Context()).Iter()

	var sum, count, rating int
	for iter.Scan(&rating) {
		sum += rating
		count++
	}
	if err := iter.Close(); err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	return float64(sum) / float64(count), nil
}
