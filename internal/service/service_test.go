package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"coffeehouse/internal/catalog"
	"coffeehouse/internal/events"
	"coffeehouse/internal/repository"
	"coffeehouse/internal/schedule"
)

type fixture struct {
	store    *repository.MemoryStore
	sched    *schedule.Manual
	bus      *events.Bus
	catalog  *CatalogService
	cart     *CartService
	loyalty  *LoyaltyService
	orders   *OrderService
	tracker  *OrderTracker
	chat     *ChatService
	profiles *ProfileService

	loyaltyRepo *repository.LoyaltyRepository
	orderRepo   *repository.OrderRepository
	profileRepo *repository.ProfileRepository
}

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func setup(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	tx := repository.NewStoreTx(store)
	sched := schedule.NewManual()
	bus := events.New()
	menu := catalog.Default()

	carts := repository.NewCartRepository(store, nil)
	orders := repository.NewOrderRepository(store, nil)
	loyalty := repository.NewLoyaltyRepository(store, nil)
	profiles := repository.NewProfileRepository(store, nil)
	chat := repository.NewChatRepository(store, nil)

	ls := NewLoyaltyService(loyalty, tx, nil)
	ls.now = func() time.Time { return fixedNow }
	os, err := NewOrderService(orders, carts, profiles, ls, tx, bus, OrderServiceConfig{NodeID: 1, QRBaseURL: "https://example.test/order/"}, nil)
	require.NoError(t, err)
	os.now = func() time.Time { return fixedNow }
	cs := NewChatService(chat, tx, sched, time.Second, bus, nil)
	cs.now = func() time.Time { return fixedNow }

	return &fixture{
		store:       store,
		sched:       sched,
		bus:         bus,
		catalog:     NewCatalogService(menu),
		cart:        NewCartService(menu, carts, loyalty, profiles, tx, nil),
		loyalty:     ls,
		orders:      os,
		tracker:     NewOrderTracker(os, sched, 5*time.Second, nil),
		chat:        cs,
		profiles:    NewProfileService(profiles),
		loyaltyRepo: loyalty,
		orderRepo:   orders,
		profileRepo: profiles,
	}
}

func ptr[T any](v T) *T { return &v }

var ctx = context.Background()
