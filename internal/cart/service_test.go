package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-kedai/internal/lock"
	"github.com/noah-isme/backend-kedai/internal/menu"
	"github.com/noah-isme/backend-kedai/internal/pricing"
)

type fakeItems map[string]menu.Item

func (f fakeItems) MenuItem(_ context.Context, id string) (menu.Item, bool, error) {
	it, ok := f[id]
	return it, ok, nil
}

func newRedisService(t *testing.T, items fakeItems) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return &Service{
		Store:  RedisStore{R: client, TTL: time.Hour},
		Items:  items,
		Locker: lock.Locker{R: client, RetryBackoff: time.Millisecond},
		Clock:  pricing.FixedClock(testNow),
	}, mr
}

func TestServiceAddLineResolvesCatalogIDs(t *testing.T) {
	item := latte()
	svc, mr := newRedisService(t, fakeItems{item.ID: item})
	ctx := context.Background()

	id, _, err := svc.Create(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists("cart:"+id))

	c, line, err := svc.AddLine(ctx, id, AddLineRequest{
		ItemID:      "latte",
		Quantity:    2,
		VariationID: "lg",
		Flavor:      "Vanilla",
		AddOns:      []AddOnRequest{{ID: "shot", Count: 1}, {ID: "shot", Count: 1}},
	})
	require.NoError(t, err)
	require.True(t, line.UnitPrice.Equal(money("219")))
	require.True(t, c.Total().Equal(money("438")))
	require.Equal(t, []pricing.SelectedAddOn{{AddOn: item.AddOns[0], Count: 2}}, line.AddOns)

	reloaded, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, reloaded.Lines, 1)
	require.True(t, reloaded.Total().Equal(money("438")))
	require.Equal(t, "Large", reloaded.Lines[0].Variation.Name)
}

func TestServiceRejectsUnknownReferences(t *testing.T) {
	item := latte()
	hidden := latte()
	hidden.ID = "hidden"
	hidden.Available = false
	svc, _ := newRedisService(t, fakeItems{item.ID: item, hidden.ID: hidden})
	ctx := context.Background()
	id, _, err := svc.Create(ctx)
	require.NoError(t, err)

	_, _, err = svc.AddLine(ctx, id, AddLineRequest{ItemID: "ghost", Quantity: 1})
	require.ErrorIs(t, err, ErrItemNotFound)

	_, _, err = svc.AddLine(ctx, id, AddLineRequest{ItemID: "hidden", Quantity: 1})
	require.ErrorIs(t, err, ErrItemUnavailable)

	_, _, err = svc.AddLine(ctx, id, AddLineRequest{ItemID: "latte", Quantity: 1, VariationID: "xl"})
	require.ErrorIs(t, err, pricing.ErrInvalidSelection)

	_, _, err = svc.AddLine(ctx, id, AddLineRequest{ItemID: "latte", Quantity: 1, Flavor: "Mint"})
	require.ErrorIs(t, err, pricing.ErrInvalidSelection)

	_, _, err = svc.AddLine(ctx, id, AddLineRequest{ItemID: "latte", Quantity: 1, AddOns: []AddOnRequest{{ID: "gold", Count: 1}}})
	require.ErrorIs(t, err, pricing.ErrInvalidSelection)

	_, _, err = svc.AddLine(ctx, "missing-cart", AddLineRequest{ItemID: "latte", Quantity: 1})
	require.ErrorIs(t, err, ErrNotFound)

	c, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, c.IsEmpty())
}

func TestServiceUpdateRemoveAndClear(t *testing.T) {
	item := latte()
	svc, _ := newRedisService(t, fakeItems{item.ID: item})
	ctx := context.Background()
	id, _, err := svc.Create(ctx)
	require.NoError(t, err)

	_, first, err := svc.AddLine(ctx, id, AddLineRequest{ItemID: "latte", Quantity: 1})
	require.NoError(t, err)
	_, second, err := svc.AddLine(ctx, id, AddLineRequest{ItemID: "latte", Quantity: 1, Flavor: "Caramel"})
	require.NoError(t, err)

	c, err := svc.UpdateQuantity(ctx, id, first.ID, 3)
	require.NoError(t, err)
	require.True(t, c.Total().Equal(money("516")))

	_, err = svc.UpdateQuantity(ctx, id, "nope", 3)
	require.ErrorIs(t, err, ErrLineNotFound)

	c, err = svc.RemoveLine(ctx, id, second.ID)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)

	c, err = svc.Clear(ctx, id)
	require.NoError(t, err)
	require.True(t, c.IsEmpty())
}

func TestServiceConcurrentAddsAreSerialised(t *testing.T) {
	item := latte()
	svc, _ := newRedisService(t, fakeItems{item.ID: item})
	ctx := context.Background()
	id, _, err := svc.Create(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.AddLine(ctx, id, AddLineRequest{ItemID: "latte", Quantity: 1})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	c, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	require.Equal(t, 10, c.ItemCount())
}

func TestMemoryStoreExpires(t *testing.T) {
	now := testNow
	store := NewMemoryStore(time.Minute)
	store.Now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "c1", New()))
	_, err := store.Load(ctx, "c1")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Load(ctx, "c1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreRefreshesTTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := RedisStore{R: client, TTL: time.Hour}
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "c1", New()))
	mr.FastForward(50 * time.Minute)
	require.NoError(t, store.Save(ctx, "c1", New()))
	mr.FastForward(50 * time.Minute)

	_, err = store.Load(ctx, "c1")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "c1"))
	_, err = store.Load(ctx, "c1")
	require.ErrorIs(t, err, ErrNotFound)
}
