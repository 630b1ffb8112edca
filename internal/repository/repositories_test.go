package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffeehouse/internal/domain"
)

func put(t *testing.T, s Store, key, value string) {
	t.Helper()
	require.NoError(t, s.Update(context.Background(), func(tx Tx) error {
		return tx.Put(key, []byte(value))
	}))
}

func TestCartRepository_RoundTripAndMalformed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := NewCartRepository(store, nil)

	lines, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)

	size := &domain.Size{ID: "m", Name: "M", Price: 50}
	want := []domain.CartLine{{
		Product:        domain.Product{ID: "3", Name: "Латте", Price: 220},
		Quantity:       2,
		SelectedSize:   size,
		SelectedAddons: []domain.Addon{{ID: "extra-shot", Price: 60}},
	}}
	require.NoError(t, repo.Save(ctx, want))
	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	put(t, store, "session:local:cart", "{not json")
	got, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, repo.Clear(ctx))
	got, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoad_MalformedStateReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		raw  string
	}{
		{"type mismatch", `[{"product":{"id":"1","price":150},"quantity":2},{"product":{"id":"2","price":200},"quantity":"x"}]`},
		{"truncated", `[{"product":{"id":"1","price":150},"quantity":2},{"product":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := NewMemoryStore()
			put(t, store, "session:local:cart", tc.raw)
			put(t, store, "session:local:orders", tc.raw)
			put(t, store, "session:local:loyalty_transactions", tc.raw)
			put(t, store, "session:local:chat_messages", tc.raw)

			lines, err := NewCartRepository(store, nil).Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, lines)

			orders, err := NewOrderRepository(store, nil).List(ctx)
			require.NoError(t, err)
			assert.Empty(t, orders)

			log, err := NewLoyaltyRepository(store, nil).Transactions(ctx)
			require.NoError(t, err)
			assert.Empty(t, log)

			msgs, err := NewChatRepository(store, nil).List(ctx)
			require.NoError(t, err)
			assert.Empty(t, msgs)
		})
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	store := NewMemoryStore()
	repo := NewCartRepository(store, nil)
	alice := WithSession(context.Background(), "alice")
	bob := WithSession(context.Background(), "bob")

	require.NoError(t, repo.Save(alice, []domain.CartLine{{Product: domain.Product{ID: "1"}, Quantity: 1}}))

	got, err := repo.Load(bob)
	require.NoError(t, err)
	assert.Empty(t, got)
	got, err = repo.Load(alice)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	assert.Equal(t, "session:local:cart", ScopedKey(context.Background(), KeyCart))
	assert.Equal(t, "session:alice:cart", ScopedKey(alice, KeyCart))
}

func TestOrderRepository_NewestFirstAndUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(NewMemoryStore(), nil)

	first := &domain.Order{ID: "1", Status: domain.OrderStatusPending, Total: 100}
	second := &domain.Order{ID: "2", Status: domain.OrderStatusPending, Total: 200}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2", list[0].ID)
	assert.Equal(t, "1", list[1].ID)

	first.Status = domain.OrderStatusPreparing
	require.NoError(t, repo.Update(ctx, first))
	got, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPreparing, got.Status)

	_, err = repo.GetByID(ctx, "404")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &domain.Order{ID: "404"}), ErrNotFound)
}

func TestLoyaltyRepository_Balance(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := NewLoyaltyRepository(store, nil)

	b, err := repo.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, StartingBalance, b)

	cases := []struct {
		raw  string
		want int64
	}{
		{`250`, 250},
		{`"120"`, 120},
		{`"0100"`, 100},
		{`abc`, StartingBalance},
		{`null`, StartingBalance},
		{`-5`, StartingBalance},
	}
	for _, tc := range cases {
		put(t, store, "session:local:loyalty_points", tc.raw)
		b, err := repo.Balance(ctx)
		require.NoError(t, err)
		assert.Equal(t, tc.want, b, tc.raw)
	}

	require.NoError(t, repo.SetBalance(ctx, 42))
	b, err = repo.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), b)
}

func TestLoyaltyRepository_TransactionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewLoyaltyRepository(NewMemoryStore(), nil)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.PrependTransaction(ctx, domain.LoyaltyTransaction{ID: "a", Type: domain.TransactionEarned, Amount: 10, Date: now}))
	require.NoError(t, repo.PrependTransaction(ctx, domain.LoyaltyTransaction{ID: "b", Type: domain.TransactionSpent, Amount: 5, Date: now}))

	list, err := repo.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
}

func TestChatRepository_Append(t *testing.T) {
	ctx := context.Background()
	repo := NewChatRepository(NewMemoryStore(), nil)
	require.NoError(t, repo.Append(ctx, domain.ChatMessage{ID: "1", Text: "hi", Sender: domain.SenderUser}))
	require.NoError(t, repo.Append(ctx, domain.ChatMessage{ID: "2", Text: "hello", Sender: domain.SenderCafe}))

	msgs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "1", msgs[0].ID)
	assert.Equal(t, domain.SenderCafe, msgs[1].Sender)
}

func TestProfileRepository_UserInfoAndDraft(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := NewProfileRepository(store, nil)

	info, err := repo.UserInfo(ctx)
	require.NoError(t, err)
	assert.Nil(t, info)

	require.NoError(t, repo.SaveUserInfo(ctx, domain.UserInfo{Name: "Анна", Phone: "+7 900 000-00-00"}))
	info, err = repo.UserInfo(ctx)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "Анна", info.Name)

	d, err := repo.Draft(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutDraft{DeliveryType: domain.DeliveryTypePickup}, d)

	require.NoError(t, repo.SaveDraft(ctx, domain.CheckoutDraft{DeliveryType: domain.DeliveryTypeDelivery, LoyaltyPoints: 30}))
	d, err = repo.Draft(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryTypeDelivery, d.DeliveryType)
	assert.Equal(t, int64(30), d.LoyaltyPoints)

	// значения, записанные без JSON-кавычек
	put(t, store, "session:local:checkout_delivery_type", "delivery")
	put(t, store, "session:local:checkout_loyalty_points", "abc")
	d, err = repo.Draft(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryTypeDelivery, d.DeliveryType)
	assert.Equal(t, int64(0), d.LoyaltyPoints)

	require.NoError(t, repo.ClearDraft(ctx))
	d, err = repo.Draft(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryTypePickup, d.DeliveryType)
}
