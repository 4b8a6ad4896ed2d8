package bot

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"floralie_back_end/internal/models"
	"floralie_back_end/internal/orders"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	products []models.Product
}

func (f *fakeCatalog) GetProduct(ctx context.Context, id string) (models.Product, error) {
	for _, p := range f.products {
		if p.ID.String() == id {
			return p, nil
		}
	}
	return models.Product{}, fmt.Errorf("%w: produit %s", models.ErrNotFound, id)
}

func (f *fakeCatalog) Price(ctx context.Context, id string) (float64, error) {
	p, err := f.GetProduct(ctx, id)
	return p.Price, err
}

func (f *fakeCatalog) List(ctx context.Context, category string) ([]models.Product, error) {
	return f.products, nil
}

func (f *fakeCatalog) FindByName(ctx context.Context, name string) (models.Product, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, p := range f.products {
		if strings.ToLower(p.Name) == want && p.IsActive {
			return p, nil
		}
	}
	return models.Product{}, fmt.Errorf("%w: produit %q", models.ErrNotFound, name)
}

type fakeCreator struct {
	inputs []orders.CreateInput
	err    error
}

func (f *fakeCreator) Create(ctx context.Context, input orders.CreateInput) (models.Order, error) {
	if f.err != nil {
		return models.Order{}, f.err
	}
	f.inputs = append(f.inputs, input)
	order := models.Order{ID: gocql.TimeUUID(), ChatID: input.ChatID, Status: models.StatusPending}
	for _, item := range input.Items {
		order.Items = append(order.Items, models.OrderItem{
			Name: item.Name, Quantity: item.Quantity, Price: item.Price,
		})
	}
	return order, nil
}

func atHour(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2026, 8, 31, hour, 30, 0, 0, time.Local)
	}
}

func newTestFlow(creator *fakeCreator) (*Flow, *fakeCatalog) {
	cat := &fakeCatalog{products: []models.Product{
		{ID: gocql.TimeUUID(), Name: "Roses rouges", Price: 12.50, IsActive: true},
		{ID: gocql.TimeUUID(), Name: "Tulipes", Price: 8.00, IsActive: true},
		{ID: gocql.TimeUUID(), Name: "Pivoines fanées", Price: 5.00, IsActive: false},
	}}
	flow := NewFlow(cat, creator, 9, 20)
	flow.now = atHour(10)
	return flow, cat
}

func TestWithinOperatingHours(t *testing.T) {
	cases := []struct {
		hour int
		want bool
	}{
		{8, false},
		{9, true},   // borne d'ouverture incluse
		{19, true},
		{20, false}, // borne de fermeture exclue
		{23, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, WithinOperatingHours(atHour(tc.hour)(), 9, 20), "heure %d", tc.hour)
	}
}

func TestStartRefusedOutsideOperatingHours(t *testing.T) {
	flow, _ := newTestFlow(&fakeCreator{})
	flow.now = atHour(22)

	_, reply, err := flow.Start(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.Contains(t, reply, "fermée")
	assert.Contains(t, reply, "9h")
	assert.Contains(t, reply, "20h")
}

func TestStartListsOnlyActiveProducts(t *testing.T) {
	flow, _ := newTestFlow(&fakeCreator{})

	conv, reply, err := flow.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateSelectProduct, conv.State)
	assert.Contains(t, reply, "Roses rouges")
	assert.Contains(t, reply, "Tulipes")
	assert.NotContains(t, reply, "Pivoines fanées")
}

func TestFullOrderConversation(t *testing.T) {
	creator := &fakeCreator{}
	flow, cat := newTestFlow(creator)
	ctx := context.Background()

	conv, _, err := flow.Start(ctx)
	require.NoError(t, err)

	reply, done, err := flow.Step(ctx, "424242", &conv, "roses rouges")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, StateSelectQuantity, conv.State)
	assert.Contains(t, reply, "12.50")

	reply, done, err = flow.Step(ctx, "424242", &conv, "3")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, StateAskingAddress, conv.State)
	assert.Contains(t, reply, "adresse")

	reply, done, err = flow.Step(ctx, "424242", &conv, "12 rue des Lilas, Bruxelles")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, StateConfirmation, conv.State)
	assert.Contains(t, reply, "Roses rouges x3")
	assert.Contains(t, reply, "37.50")

	reply, done, err = flow.Step(ctx, "424242", &conv, "confirmer")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Contains(t, reply, "enregistrée")

	require.Len(t, creator.inputs, 1)
	input := creator.inputs[0]
	assert.Equal(t, "424242", input.ChatID)
	assert.Equal(t, "12 rue des Lilas, Bruxelles", input.Address)
	require.Len(t, input.Items, 1)
	assert.Equal(t, cat.products[0].ID.String(), input.Items[0].ProductID)
	assert.Equal(t, 3, input.Items[0].Quantity)
}

func TestCustomQuantityPath(t *testing.T) {
	flow, _ := newTestFlow(&fakeCreator{})
	ctx := context.Background()

	conv, _, err := flow.Start(ctx)
	require.NoError(t, err)

	_, _, err = flow.Step(ctx, "1", &conv, "Tulipes")
	require.NoError(t, err)

	_, done, err := flow.Step(ctx, "1", &conv, "autre")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, StateCustomQuantity, conv.State)

	_, done, err = flow.Step(ctx, "1", &conv, "25")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, StateAskingAddress, conv.State)
	assert.Equal(t, 25, conv.Quantity)
}

func TestUnknownProductReprompts(t *testing.T) {
	flow, _ := newTestFlow(&fakeCreator{})
	ctx := context.Background()

	conv, _, err := flow.Start(ctx)
	require.NoError(t, err)

	reply, done, err := flow.Step(ctx, "1", &conv, "Cactus")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, StateSelectProduct, conv.State) // pas de progression
	assert.Contains(t, reply, "introuvable")
}

func TestInvalidQuantityReprompts(t *testing.T) {
	flow, _ := newTestFlow(&fakeCreator{})
	ctx := context.Background()

	conv, _, err := flow.Start(ctx)
	require.NoError(t, err)
	_, _, err = flow.Step(ctx, "1", &conv, "Tulipes")
	require.NoError(t, err)

	for _, input := range []string{"abc", "0", "-2", "1.5"} {
		reply, done, err := flow.Step(ctx, "1", &conv, input)
		require.NoError(t, err)
		assert.False(t, done)
		assert.Equal(t, StateSelectQuantity, conv.State, "entrée %q", input)
		assert.Contains(t, reply, "invalide")
	}
}

func TestEmptyAddressReprompts(t *testing.T) {
	flow, _ := newTestFlow(&fakeCreator{})
	ctx := context.Background()

	conv, _, err := flow.Start(ctx)
	require.NoError(t, err)
	_, _, err = flow.Step(ctx, "1", &conv, "Tulipes")
	require.NoError(t, err)
	_, _, err = flow.Step(ctx, "1", &conv, "2")
	require.NoError(t, err)

	_, done, err := flow.Step(ctx, "1", &conv, "   ")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, StateAskingAddress, conv.State)
}

func TestCancelWorksFromEveryState(t *testing.T) {
	states := []string{StateSelectProduct, StateSelectQuantity,
		StateCustomQuantity, StateAskingAddress, StateConfirmation}

	for _, state := range states {
		for _, input := range []string{"/cancel", "annuler", "ANNULER", "❌ Annuler"} {
			creator := &fakeCreator{}
			flow, _ := newTestFlow(creator)
			conv := Conversation{State: state}

			reply, done, err := flow.Step(context.Background(), "1", &conv, input)
			require.NoError(t, err)
			assert.True(t, done, "état %s, entrée %q", state, input)
			assert.Contains(t, reply, "annulée")
			assert.Empty(t, creator.inputs, "annuler ne doit rien créer")
		}
	}
}

func TestConfirmationRequiresExplicitYes(t *testing.T) {
	creator := &fakeCreator{}
	flow, _ := newTestFlow(creator)
	conv := Conversation{State: StateConfirmation, ProductName: "Tulipes", Quantity: 2, Address: "12 rue des Lilas"}

	_, done, err := flow.Step(context.Background(), "1", &conv, "peut-être")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Empty(t, creator.inputs)

	_, done, err = flow.Step(context.Background(), "1", &conv, "oui")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Len(t, creator.inputs, 1)
}

func TestConfirmationFailureEndsGracefully(t *testing.T) {
	creator := &fakeCreator{err: fmt.Errorf("%w: produit disparu", models.ErrNotFound)}
	flow, _ := newTestFlow(creator)
	conv := Conversation{State: StateConfirmation, ProductName: "Tulipes", Quantity: 2, Address: "12 rue des Lilas"}

	reply, done, err := flow.Step(context.Background(), "1", &conv, "confirmer")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Contains(t, reply, "Impossible de créer la commande")
}

func TestMemoryStateStoreRoundTrip(t *testing.T) {
	store := NewMemoryStateStore()
	ctx := context.Background()

	conv, err := store.Get(ctx, "42")
	require.NoError(t, err)
	assert.Nil(t, conv)

	require.NoError(t, store.Put(ctx, "42", Conversation{State: StateAskingAddress, Quantity: 3}))

	conv, err = store.Get(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Equal(t, StateAskingAddress, conv.State)
	assert.Equal(t, 3, conv.Quantity)

	require.NoError(t, store.Delete(ctx, "42"))
	conv, err = store.Get(ctx, "42")
	require.NoError(t, err)
	assert.Nil(t, conv)
}
