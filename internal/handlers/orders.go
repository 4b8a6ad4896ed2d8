package handlers

import (
	"net/http"

	"floralie_back_end/internal/models"
	"floralie_back_end/internal/orders"

	"github.com/gin-gonic/gin"
)

// OrderHandler couvre le parcours client : passage de commande depuis le
// panier et consultation de l'historique.
type OrderHandler struct {
	orders *orders.Service
}

func NewOrderHandler(service *orders.Service) *OrderHandler {
	return &OrderHandler{orders: service}
}

// POST /api/orders/checkout
func (h *OrderHandler) Checkout(c *gin.Context) {
	owner, err := cartOwner(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var input struct {
		Address  string `json:"address"`
		Comments string `json:"comments"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	order, err := h.orders.Checkout(c.Request.Context(), owner, input.Address, input.Comments)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Commande enregistrée",
		"order":   orderView(order),
	})
}

// GET /api/orders : historique de l'utilisateur connecté
func (h *OrderHandler) MyOrders(c *gin.Context) {
	userID := c.GetString("user_id")
	list, err := h.orders.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]gin.H, 0, len(list))
	for _, order := range list {
		views = append(views, orderView(order))
	}
	c.JSON(http.StatusOK, gin.H{"orders": views})
}

// GET /api/orders/:id : une commande n'est visible que par son
// propriétaire ou un administrateur.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if order.UserID != c.GetString("user_id") && c.GetString("role") != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès refusé"})
		return
	}

	c.JSON(http.StatusOK, orderView(order))
}

// GET /api/orders/statuses : table statut vers libellé pour le front
func (h *OrderHandler) ListStatuses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"statuses": models.StatusLabels})
}

func orderView(order models.Order) gin.H {
	return gin.H{
		"id":           order.ID.String(),
		"status":       order.Status,
		"status_label": order.StatusLabel(),
		"address":      order.Address,
		"comments":     order.Comments,
		"items":        order.Items,
		"total":        order.TotalPrice(),
		"created_at":   order.CreatedAt,
		"updated_at":   order.UpdatedAt,
	}
}
