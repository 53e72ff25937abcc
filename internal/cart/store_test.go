package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/unicorn-emporium/internal/kv"
	"github.com/terra-clan/unicorn-emporium/internal/models"
)

var (
	sparkle = models.Product{ID: 1, Name: "Sparkle Supreme", Price: 9999, Category: models.CategoryClassic, Image: "🦄"}
	rainbow = models.Product{ID: 2, Name: "Rainbow Dash", Price: 12999, Category: models.CategoryRainbow, Image: "🌈"}
	moon    = models.Product{ID: 4, Name: "Mystic Moon", Price: 14999, Category: models.CategoryCelestial, Image: "🌙"}
)

func newStore(t *testing.T) (*Store, *kv.MemoryStore) {
	t.Helper()
	mem := kv.NewMemoryStore()
	return NewStore(context.Background(), mem), mem
}

func TestAddItem_IncrementsExistingLine(t *testing.T) {
	s, _ := newStore(t)

	s.AddItem(sparkle)
	s.AddItem(sparkle)

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(1), lines[0].ID)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestRemoveItem(t *testing.T) {
	s, _ := newStore(t)
	s.AddItem(sparkle)
	s.AddItem(rainbow)

	s.RemoveItem(99)
	assert.Len(t, s.Lines(), 2, "unknown id leaves the cart unchanged")

	s.RemoveItem(sparkle.ID)
	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, rainbow.ID, lines[0].ID)
}

func TestSetQuantity(t *testing.T) {
	s, _ := newStore(t)
	s.AddItem(sparkle)
	s.AddItem(rainbow)

	s.SetQuantity(rainbow.ID, 7)
	assert.Equal(t, 8, s.ItemCount())

	s.SetQuantity(sparkle.ID, 0)
	lines := s.Lines()
	require.Len(t, lines, 1, "quantity 0 behaves like RemoveItem")
	assert.Equal(t, rainbow.ID, lines[0].ID)

	s.SetQuantity(rainbow.ID, -3)
	assert.Empty(t, s.Lines())
}

func TestSetQuantity_UnknownProduct(t *testing.T) {
	s, _ := newStore(t)
	s.AddItem(sparkle)

	s.SetQuantity(rainbow.ID, 5)
	assert.Equal(t, 1, s.ItemCount())
}

func TestTotals(t *testing.T) {
	s, _ := newStore(t)
	assert.Equal(t, int64(0), s.Total())
	assert.Equal(t, 0, s.ItemCount())

	s.AddItem(sparkle)
	s.AddItem(rainbow)
	s.AddItem(rainbow)

	assert.Equal(t, int64(35997), s.Total())
	assert.Equal(t, 3, s.ItemCount())
}

func TestClear(t *testing.T) {
	s, mem := newStore(t)
	s.AddItem(sparkle)
	s.Clear()

	assert.Empty(t, s.Lines())
	raw, ok, err := mem.Load(context.Background(), StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestPanels(t *testing.T) {
	s, _ := newStore(t)
	s.AddItem(sparkle)

	s.OpenCart()
	assert.True(t, s.Snapshot().CartOpen)

	s.OpenCheckout()
	snap := s.Snapshot()
	assert.False(t, snap.CartOpen)
	assert.True(t, snap.CheckoutOpen)

	s.OpenSuccess("ABC123XYZ")
	snap = s.Snapshot()
	assert.False(t, snap.CheckoutOpen)
	assert.True(t, snap.SuccessOpen)
	assert.Empty(t, snap.Lines)
	assert.Equal(t, "ABC123XYZ", snap.OrderNumber)

	s.CloseSuccess()
	assert.False(t, s.Snapshot().SuccessOpen)
	assert.Equal(t, "ABC123XYZ", s.OrderNumber())
}

func TestCloseCheckoutAndCart(t *testing.T) {
	s, _ := newStore(t)

	s.OpenCart()
	s.CloseCart()
	assert.False(t, s.Snapshot().CartOpen)

	s.OpenCheckout()
	s.CloseCheckout()
	assert.False(t, s.Snapshot().CheckoutOpen)
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()

	s := NewStore(ctx, mem)
	s.AddItem(moon)
	s.AddItem(sparkle)
	s.AddItem(sparkle)
	s.AddItem(rainbow)
	s.SetQuantity(rainbow.ID, 4)

	reloaded := NewStore(ctx, mem)
	assert.Equal(t, s.Lines(), reloaded.Lines())
}

func TestPersistence_FlattenedFormat(t *testing.T) {
	s, mem := newStore(t)
	s.AddItem(sparkle)

	raw, ok, err := mem.Load(context.Background(), StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t,
		`[{"id":1,"name":"Sparkle Supreme","price":9999,"category":"classic","image":"🦄","description":"","features":null,"quantity":1}]`,
		string(raw))
}

func TestRehydrate_Defaults(t *testing.T) {
	ctx := context.Background()

	t.Run("absent", func(t *testing.T) {
		s := NewStore(ctx, kv.NewMemoryStore())
		assert.Empty(t, s.Lines())
	})

	t.Run("unparsable", func(t *testing.T) {
		mem := kv.NewMemoryStore()
		require.NoError(t, mem.Save(ctx, StorageKey, []byte(`{"not":"a list"`)))
		s := NewStore(ctx, mem)
		assert.Empty(t, s.Lines())
	})

	t.Run("load error", func(t *testing.T) {
		s := NewStore(ctx, failingStore{})
		assert.Empty(t, s.Lines())
		s.AddItem(sparkle) // save failure is swallowed
		assert.Equal(t, 1, s.ItemCount())
	})

	t.Run("nil store", func(t *testing.T) {
		s := NewStore(ctx, nil)
		s.AddItem(sparkle)
		assert.Equal(t, int64(9999), s.Total())
	})
}

func TestSubscribe(t *testing.T) {
	s, _ := newStore(t)

	var got []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) {
		got = append(got, snap)
	})

	s.AddItem(sparkle)
	s.OpenCheckout()
	require.Len(t, got, 2)
	assert.Len(t, got[0].Lines, 1)
	assert.True(t, got[1].CheckoutOpen)

	unsubscribe()
	s.AddItem(rainbow)
	assert.Len(t, got, 2)
}

func TestSubscribe_ListenerMayReadStore(t *testing.T) {
	s, _ := newStore(t)

	var total int64
	s.Subscribe(func(Snapshot) {
		total = s.Total()
	})

	s.AddItem(rainbow)
	assert.Equal(t, rainbow.Price, total)
}

func TestLinesAreCopies(t *testing.T) {
	s, _ := newStore(t)
	s.AddItem(sparkle)

	lines := s.Lines()
	lines[0].Quantity = 50
	assert.Equal(t, 1, s.ItemCount())
}

type failingStore struct{}

func (failingStore) Load(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("storage unavailable")
}

func (failingStore) Save(context.Context, string, []byte) error {
	return errors.New("storage unavailable")
}
