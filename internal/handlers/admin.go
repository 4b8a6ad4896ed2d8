package handlers

import (
	"net/http"
	"time"

	"floralie_back_end/internal/orders"

	"github.com/gin-gonic/gin"
)

// AdminHandler regroupe la surface réservée aux administrateurs :
// suivi des commandes, changement de statut, rapport de ventes.
type AdminHandler struct {
	orders *orders.Service
}

func NewAdminHandler(service *orders.Service) *AdminHandler {
	return &AdminHandler{orders: service}
}

// GET /api/admin/orders?status=pending
func (h *AdminHandler) ListOrders(c *gin.Context) {
	list, err := h.orders.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	status := c.Query("status")
	views := make([]gin.H, 0, len(list))
	for _, order := range list {
		if status != "" && order.Status != status {
			continue
		}
		view := orderView(order)
		view["user_id"] = order.UserID
		view["chat_id"] = order.ChatID
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{"orders": views, "count": len(views)})
}

// PUT /api/admin/orders/:id/status
func (h *AdminHandler) SetOrderStatus(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	order, err := h.orders.Transition(c.Request.Context(), c.Param("id"), input.Status, c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Statut mis à jour",
		"order":   orderView(order),
	})
}

// GET /api/admin/reports/sales?from=2026-08-01&to=2026-08-31
func (h *AdminHandler) SalesReport(c *gin.Context) {
	var from, to time.Time
	var err error

	if raw := c.Query("from"); raw != "" {
		if from, err = time.Parse("2006-01-02", raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Date 'from' invalide (format attendu: 2006-01-02)"})
			return
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, err = time.Parse("2006-01-02", raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Date 'to' invalide (format attendu: 2006-01-02)"})
			return
		}
		// Inclut toute la journée de fin
		to = to.Add(24*time.Hour - time.Second)
	}

	report, err := h.orders.Report(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
