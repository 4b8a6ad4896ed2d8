package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"floralie_back_end/internal/database"
	"floralie_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// ScyllaStore persiste les commandes dans le keyspace orders. Les lignes
// sont sérialisées en JSON dans la même partition que la commande : une
// seule écriture, donc création atomique.
type ScyllaStore struct{}

func NewScyllaStore() *ScyllaStore {
	return &ScyllaStore{}
}

func (s *ScyllaStore) Insert(ctx context.Context, order models.Order) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}

	return session.Query(`INSERT INTO orders (order_id, user_id, chat_id, address, comments, status, items, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.UserID, order.ChatID, order.Address, order.Comments,
		order.Status, string(itemsJSON), order.CreatedAt, order.UpdatedAt).WithContext(ctx).Exec()
}

func (s *ScyllaStore) Get(ctx context.Context, orderID string) (models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return models.Order{}, err
	}

	oid, err := uuid.Parse(orderID)
	if err != nil {
		return models.Order{}, fmt.Errorf("%w: id commande invalide", models.ErrNotFound)
	}

	var order models.Order
	var itemsJSON string
	err = session.Query(`SELECT order_id, user_id, chat_id, address, comments, status, items, created_at, updated_at
		FROM orders WHERE order_id = ?`, gocql.UUID(oid)).WithContext(ctx).Scan(
		&order.ID, &order.UserID, &order.ChatID, &order.Address, &order.Comments,
		&order.Status, &itemsJSON, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if err == gocql.ErrNotFound {
			return models.Order{}, fmt.Errorf("%w: commande %s", models.ErrNotFound, orderID)
		}
		return models.Order{}, err
	}

	if err := json.Unmarshal([]byte(itemsJSON), &order.Items); err != nil {
		return models.Order{}, fmt.Errorf("erreur décodage lignes commande %s: %v", orderID, err)
	}
	return order, nil
}

func (s *ScyllaStore) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.list(ctx, func(o models.Order) bool { return o.UserID == userID })
}

func (s *ScyllaStore) ListByChat(ctx context.Context, chatID string) ([]models.Order, error) {
	return s.list(ctx, func(o models.Order) bool { return o.ChatID == chatID })
}

func (s *ScyllaStore) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.list(ctx, func(models.Order) bool { return true })
}

func (s *ScyllaStore) list(ctx context.Context, keep func(models.Order) bool) ([]models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT order_id, user_id, chat_id, address, comments, status, items, created_at, updated_at
		FROM orders`).WithContext(ctx).Iter()

	var orders []models.Order
	var o models.Order
	var itemsJSON string
	for iter.Scan(&o.ID, &o.UserID, &o.ChatID, &o.Address, &o.Comments,
		&o.Status, &itemsJSON, &o.CreatedAt, &o.UpdatedAt) {
		if keep(o) {
			if err := json.Unmarshal([]byte(itemsJSON), &o.Items); err == nil {
				orders = append(orders, o)
			}
		}
		o = models.Order{}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	// Les plus récentes d'abord, comme l'historique web
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// CompareAndSetStatus utilise une transaction légère (LWT) : l'UPDATE
// n'est appliqué que si le statut stocké vaut encore from.
func (s *ScyllaStore) CompareAndSetStatus(ctx context.Context, orderID, from, to string, at time.Time) (bool, string, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return false, "", err
	}

	oid, err := uuid.Parse(orderID)
	if err != nil {
		return false, "", fmt.Errorf("%w: id commande invalide", models.ErrNotFound)
	}

	var current string
	applied, err := session.Query(`UPDATE orders SET status = ?, updated_at = ? WHERE order_id = ? IF status = ?`,
		to, at, gocql.UUID(oid), from).WithContext(ctx).ScanCAS(&current)
	if err != nil {
		return false, "", err
	}
	if applied {
		return true, to, nil
	}
	return false, current, nil
}
