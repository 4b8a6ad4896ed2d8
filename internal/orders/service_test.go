package orders

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"floralie_back_end/internal/cart"
	"floralie_back_end/internal/models"
	"floralie_back_end/internal/notify"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// memStore est un Store en mémoire avec la même sémantique CAS que la
// version ScyllaDB (LWT) : un seul gagnant par arête concurrente.
type memStore struct {
	mu     sync.Mutex
	orders map[string]models.Order
}

func newMemStore() *memStore {
	return &memStore{orders: map[string]models.Order{}}
}

func (s *memStore) Insert(ctx context.Context, order models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID.String()] = order
	return nil
}

func (s *memStore) Get(ctx context.Context, orderID string) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return models.Order{}, fmt.Errorf("%w: commande %s", models.ErrNotFound, orderID)
	}
	return order, nil
}

func (s *memStore) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *memStore) ListByChat(ctx context.Context, chatID string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, o := range s.orders {
		if o.ChatID == chatID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *memStore) ListAll(ctx context.Context) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	return out, nil
}

func (s *memStore) CompareAndSetStatus(ctx context.Context, orderID, from, to string, at time.Time) (bool, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return false, "", fmt.Errorf("%w: commande %s", models.ErrNotFound, orderID)
	}
	if order.Status != from {
		return false, order.Status, nil
	}
	order.Status = to
	order.UpdatedAt = at
	s.orders[orderID] = order
	return true, to, nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]models.Product
}

func (f *fakeCatalog) GetProduct(ctx context.Context, id string) (models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return models.Product{}, fmt.Errorf("%w: produit %s", models.ErrNotFound, id)
	}
	return p, nil
}

func (f *fakeCatalog) Price(ctx context.Context, id string) (float64, error) {
	p, err := f.GetProduct(ctx, id)
	return p.Price, err
}

func (f *fakeCatalog) List(ctx context.Context, category string) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Product
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCatalog) FindByName(ctx context.Context, name string) (models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.Name == name {
			return p, nil
		}
	}
	return models.Product{}, fmt.Errorf("%w: produit %q", models.ErrNotFound, name)
}

func (f *fakeCatalog) add(name string, price float64) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := gocql.TimeUUID()
	f.products[id.String()] = models.Product{ID: id, Name: name, Price: price, IsActive: true}
	return id.String()
}

func (f *fakeCatalog) setPrice(id string, price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.products[id]
	p.Price = price
	f.products[id] = p
}

func (f *fakeCatalog) remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.products, id)
}

type fakeDirectory struct {
	admins map[string]bool
}

func (d *fakeDirectory) IsAuthorizedAdmin(ctx context.Context, actorID string) (bool, error) {
	return d.admins[actorID], nil
}

// recorder capture les événements émis, pour vérifier le quoi et le quand.
type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Dispatch(evt notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recorder) all() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Event, len(r.events))
	copy(out, r.events)
	return out
}

type fixture struct {
	svc      *Service
	store    *memStore
	carts    *cart.Service
	catalog  *fakeCatalog
	notifier *recorder
}

func newFixture() *fixture {
	store := newMemStore()
	cat := &fakeCatalog{products: map[string]models.Product{}}
	carts := cart.NewService(cart.NewMemoryStore(), cat)
	notifier := &recorder{}
	directory := &fakeDirectory{admins: map[string]bool{"admin-1": true}}
	return &fixture{
		svc:      NewService(store, carts, cat, directory, notifier),
		store:    store,
		carts:    carts,
		catalog:  cat,
		notifier: notifier,
	}
}

func (f *fixture) fillCart(t *testing.T, owner cart.Owner, productID string, qty int) {
	t.Helper()
	_, err := f.carts.AddItem(context.Background(), owner, productID, qty)
	require.NoError(t, err)
}

func TestCheckoutCreatesPendingOrder(t *testing.T) {
	f := newFixture()
	roses := f.catalog.add("Roses rouges", 12.50)
	tulips := f.catalog.add("Tulipes", 8.00)
	owner := cart.Owner{UserID: "u1"}
	ctx := context.Background()

	f.fillCart(t, owner, roses, 3)
	f.fillCart(t, owner, tulips, 2)

	order, err := f.svc.Checkout(ctx, owner, "12 rue des Lilas, Bruxelles", "Sonnez deux fois")
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, "u1", order.UserID)
	assert.Equal(t, "12 rue des Lilas, Bruxelles", order.Address)
	assert.Len(t, order.Items, 2)
	assert.InDelta(t, 53.50, order.TotalPrice(), 0.001)

	// Le panier est détruit par la conversion
	c, err := f.carts.Get(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	// Un événement de création est émis, après l'écriture durable
	events := f.notifier.all()
	require.Len(t, events, 1)
	assert.True(t, events[0].Created)
	assert.Equal(t, models.StatusPending, events[0].Status)
	assert.InDelta(t, 53.50, events[0].Total, 0.001)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Checkout(context.Background(), cart.Owner{UserID: "u1"}, "12 rue des Lilas", "")
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Zero(t, f.store.count())
	assert.Empty(t, f.notifier.all())
}

func TestCheckoutRequiresAddress(t *testing.T) {
	f := newFixture()
	roses := f.catalog.add("Roses rouges", 12.50)
	owner := cart.Owner{UserID: "u1"}
	f.fillCart(t, owner, roses, 1)

	_, err := f.svc.Checkout(context.Background(), owner, "   ", "")
	assert.ErrorIs(t, err, models.ErrValidation)

	// L'adresse est validée avant la prise du panier : rien n'est perdu
	c, err := f.carts.Get(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, c.Items, 1)
}

func TestCheckoutRestoresCartWhenCreateFails(t *testing.T) {
	f := newFixture()
	roses := f.catalog.add("Roses rouges", 12.50)
	owner := cart.Owner{UserID: "u1"}
	ctx := context.Background()
	f.fillCart(t, owner, roses, 2)

	// Le produit disparaît du catalogue entre l'ajout et le checkout
	f.catalog.remove(roses)

	_, err := f.svc.Checkout(ctx, owner, "12 rue des Lilas", "")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Zero(t, f.store.count())

	// Le panier a été restauré après l'échec
	c, err := f.carts.Get(ctx, owner)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestConcurrentCheckoutCreatesSingleOrder(t *testing.T) {
	f := newFixture()
	roses := f.catalog.add("Roses rouges", 12.50)
	owner := cart.Owner{UserID: "u1"}
	f.fillCart(t, owner, roses, 2)

	results := make([]error, 2)
	var g errgroup.Group
	for i := 0; i < 2; i++ {
		i := i
		g.Go(func() error {
			_, err := f.svc.Checkout(context.Background(), owner, "12 rue des Lilas", "")
			results[i] = err
			return nil
		})
	}
	require.NoError(t, g.Wait())

	// Exactement un checkout gagne, l'autre voit un panier déjà vide
	var ok, failed int
	for _, err := range results {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, models.ErrValidation)
			failed++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, f.store.count())
}

func TestOrderPricesAreFrozenAtCreation(t *testing.T) {
	f := newFixture()
	roses := f.catalog.add("Roses rouges", 12.50)
	owner := cart.Owner{UserID: "u1"}
	ctx := context.Background()
	f.fillCart(t, owner, roses, 2)

	order, err := f.svc.Checkout(ctx, owner, "12 rue des Lilas", "")
	require.NoError(t, err)
	require.InDelta(t, 25.00, order.TotalPrice(), 0.001)

	// Le prix catalogue bouge, le total historique ne bouge pas
	f.catalog.setPrice(roses, 99.00)

	stored, err := f.svc.Get(ctx, order.ID.String())
	require.NoError(t, err)
	assert.InDelta(t, 25.00, stored.TotalPrice(), 0.001)
}

func TestCreateFromBotBuffer(t *testing.T) {
	f := newFixture()
	roses := f.catalog.add("Roses rouges", 12.50)

	order, err := f.svc.Create(context.Background(), CreateInput{
		ChatID:  "424242",
		Address: "12 rue des Lilas",
		Items:   []models.CartItem{{ProductID: roses, Name: "Roses rouges", Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, "424242", order.ChatID)
	assert.Empty(t, order.UserID)
	assert.InDelta(t, 37.50, order.TotalPrice(), 0.001)

	list, err := f.svc.ListByChat(context.Background(), "424242")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateRejectsInvalidQuantity(t *testing.T) {
	f := newFixture()
	roses := f.catalog.add("Roses rouges", 12.50)

	_, err := f.svc.Create(context.Background(), CreateInput{
		UserID:  "u1",
		Address: "12 rue des Lilas",
		Items:   []models.CartItem{{ProductID: roses, Name: "Roses rouges", Quantity: 0}},
	})
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Zero(t, f.store.count())
}

func createOrder(t *testing.T, f *fixture) models.Order {
	t.Helper()
	roses := f.catalog.add("Roses rouges", 12.50)
	order, err := f.svc.Create(context.Background(), CreateInput{
		UserID:  "u1",
		Address: "12 rue des Lilas",
		Items:   []models.CartItem{{ProductID: roses, Name: "Roses rouges", Quantity: 2}},
	})
	require.NoError(t, err)
	return order
}

func TestTransitionHappyPath(t *testing.T) {
	f := newFixture()
	order := createOrder(t, f)
	ctx := context.Background()

	updated, err := f.svc.Transition(ctx, order.ID.String(), models.StatusConfirmed, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)

	updated, err = f.svc.Transition(ctx, order.ID.String(), models.StatusShipped, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, updated.Status)

	updated, err = f.svc.Transition(ctx, order.ID.String(), models.StatusDelivered, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, updated.Status)

	// 1 événement de création + 3 de changement de statut
	events := f.notifier.all()
	require.Len(t, events, 4)
	assert.Equal(t, models.StatusDelivered, events[3].Status)
	assert.False(t, events[3].Created)
	assert.NotEmpty(t, events[3].Message)
}

func TestTransitionRejectsSkippedStep(t *testing.T) {
	f := newFixture()
	order := createOrder(t, f)

	_, err := f.svc.Transition(context.Background(), order.ID.String(), models.StatusShipped, "admin-1")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	stored, getErr := f.svc.Get(context.Background(), order.ID.String())
	require.NoError(t, getErr)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestTransitionRejectsSameStatus(t *testing.T) {
	f := newFixture()
	order := createOrder(t, f)

	_, err := f.svc.Transition(context.Background(), order.ID.String(), models.StatusPending, "admin-1")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	f := newFixture()
	order := createOrder(t, f)

	_, err := f.svc.Transition(context.Background(), order.ID.String(), "paid", "admin-1")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestTransitionRequiresAdmin(t *testing.T) {
	f := newFixture()
	order := createOrder(t, f)

	_, err := f.svc.Transition(context.Background(), order.ID.String(), models.StatusConfirmed, "u1")
	assert.ErrorIs(t, err, models.ErrPermission)

	// Acteur inconnu : refus également, pas d'erreur interne
	_, err = f.svc.Transition(context.Background(), order.ID.String(), models.StatusConfirmed, "ghost")
	assert.ErrorIs(t, err, models.ErrPermission)
}

func TestTerminalStatusesAreClosed(t *testing.T) {
	f := newFixture()
	order := createOrder(t, f)
	ctx := context.Background()

	_, err := f.svc.Transition(ctx, order.ID.String(), models.StatusCanceled, "admin-1")
	require.NoError(t, err)

	for _, status := range []string{models.StatusPending, models.StatusConfirmed,
		models.StatusShipped, models.StatusDelivered} {
		_, err := f.svc.Transition(ctx, order.ID.String(), status, "admin-1")
		assert.ErrorIs(t, err, models.ErrInvalidTransition, "canceled → %s", status)
	}
}

func TestConcurrentTransitionsSingleWinner(t *testing.T) {
	f := newFixture()
	order := createOrder(t, f)

	// Deux administrateurs confirment en même temps : un seul gagne,
	// l'autre est rejeté après réévaluation depuis le statut devenu courant
	results := make([]error, 2)
	var g errgroup.Group
	for i := 0; i < 2; i++ {
		i := i
		g.Go(func() error {
			_, err := f.svc.Transition(context.Background(), order.ID.String(), models.StatusConfirmed, "admin-1")
			results[i] = err
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var ok, rejected int
	for _, err := range results {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, models.ErrInvalidTransition)
			rejected++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rejected)

	stored, err := f.svc.Get(context.Background(), order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, stored.Status)
}

func TestTransitionNotFoundOrder(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Transition(context.Background(), gocql.TimeUUID().String(), models.StatusConfirmed, "admin-1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
