package httpapi

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffeehouse/internal/catalog"
	"coffeehouse/internal/domain"
	"coffeehouse/internal/events"
	"coffeehouse/internal/repository"
	"coffeehouse/internal/schedule"
	"coffeehouse/internal/service"
)

func init() { gin.SetMode(gin.TestMode) }

type testServer struct {
	*Server
	sched *schedule.Manual
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	store := repository.NewMemoryStore()
	tx := repository.NewStoreTx(store)
	sched := schedule.NewManual()
	bus := events.New()
	menu := catalog.Default()

	carts := repository.NewCartRepository(store, nil)
	loyaltyRepo := repository.NewLoyaltyRepository(store, nil)
	profiles := repository.NewProfileRepository(store, nil)

	loyalty := service.NewLoyaltyService(loyaltyRepo, tx, nil)
	orders, err := service.NewOrderService(repository.NewOrderRepository(store, nil), carts, profiles, loyalty, tx, bus,
		service.OrderServiceConfig{NodeID: 1, QRBaseURL: "https://example.test/o/"}, nil)
	require.NoError(t, err)

	srv := NewServer(Services{
		Catalog: service.NewCatalogService(menu),
		Cart:    service.NewCartService(menu, carts, loyaltyRepo, profiles, tx, nil),
		Loyalty: loyalty,
		Orders:  orders,
		Tracker: service.NewOrderTracker(orders, sched, 5*time.Second, nil),
		Chat:    service.NewChatService(repository.NewChatRepository(store, nil), tx, sched, time.Second, bus, nil),
		Profile: service.NewProfileService(profiles),
		Events:  bus,
	}, nil)
	return &testServer{Server: srv, sched: sched}
}

func doJSON(t *testing.T, s *testServer, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return doJSONAs(t, s, "", method, path, body)
}

func doJSONAs(t *testing.T, s *testServer, session, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

var checkoutForm = map[string]any{
	"deliveryType":  "delivery",
	"paymentMethod": "online",
	"name":          "Анна",
	"phone":         "+7 900 123-45-67",
	"address":       "Тверская, 1",
}

func TestCatalogEndpoints(t *testing.T) {
	s := setupServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/v1/catalog/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.CategoryInfo](t, w), 4)

	w = doJSON(t, s, http.MethodGet, "/api/v1/catalog/products?category=dessert", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Product](t, w), 4)

	w = doJSON(t, s, http.MethodGet, "/api/v1/catalog/products?q=%D0%BB%D0%B0%D1%82%D1%82%D0%B5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Product](t, w), 2)

	w = doJSON(t, s, http.MethodGet, "/api/v1/catalog/products?category=soup", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/v1/catalog/products/5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Раф кофе", decode[domain.Product](t, w).Name)

	w = doJSON(t, s, http.MethodGet, "/api/v1/catalog/products/77", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartFlow(t *testing.T) {
	s := setupServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/cart/lines", map[string]any{"productId": "2", "sizeId": "m", "addonIds": []string{"syrup-caramel"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	line := decode[cartLine](t, w)
	assert.Equal(t, "2:m:syrup-caramel", line.Key)
	assert.Equal(t, int64(200+50+40), line.LineTotal)

	w = doJSON(t, s, http.MethodPost, "/api/v1/cart/lines/"+line.Key+"/increment", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2), decode[cartLine](t, w).Quantity)

	w = doJSON(t, s, http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[cartResponse](t, w)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, int64(2), view.Count)
	assert.Equal(t, int64(580), view.Quote.Subtotal)
	assert.Equal(t, domain.DeliveryTypePickup, view.Draft.DeliveryType)

	w = doJSON(t, s, http.MethodGet, "/api/v1/cart/quote?delivery_type=delivery&points=1000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	q := decode[map[string]int64](t, w)
	assert.Equal(t, int64(100), q["pointsUsed"])
	assert.Equal(t, int64(580+200-100), q["total"])

	w = doJSON(t, s, http.MethodGet, "/api/v1/cart/quote?points=many", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(t, s, http.MethodGet, "/api/v1/cart/quote?delivery_type=drone", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/v1/cart/lines/"+line.Key+"/decrement", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, s, http.MethodPost, "/api/v1/cart/lines/"+line.Key+"/decrement", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, s, http.MethodPost, "/api/v1/cart/lines/"+line.Key+"/decrement", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/v1/cart/lines", map[string]any{"productId": "1"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, s, http.MethodDelete, "/api/v1/cart/lines/"+decode[cartLine](t, w).Key, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, s, http.MethodDelete, "/api/v1/cart", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/v1/cart/lines", map[string]any{"productId": "1", "sizeId": "xl"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(t, s, http.MethodPost, "/api/v1/cart/lines", "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutFlow(t *testing.T) {
	s := setupServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/orders", checkoutForm)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/v1/cart/lines", map[string]any{"productId": "15"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, s, http.MethodPut, "/api/v1/checkout/draft", map[string]any{"deliveryType": "delivery", "loyaltyPoints": 40})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, s, http.MethodGet, "/api/v1/checkout/draft", nil)
	assert.Equal(t, domain.CheckoutDraft{DeliveryType: domain.DeliveryTypeDelivery, LoyaltyPoints: 40}, decode[domain.CheckoutDraft](t, w))

	w = doJSON(t, s, http.MethodPost, "/api/v1/orders", map[string]any{"deliveryType": "delivery", "name": "", "phone": "x"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[struct {
		Fields map[string]string `json:"fields"`
	}](t, w)
	assert.Equal(t, "Введите имя", body.Fields["name"])
	assert.Equal(t, "Неверный формат телефона", body.Fields["phone"])
	assert.Equal(t, "Введите адрес доставки", body.Fields["address"])

	form := map[string]any{"name": "Анна", "phone": "+7 900", "address": "Тверская, 1", "paymentMethod": "online"}
	w = doJSON(t, s, http.MethodPost, "/api/v1/orders", form)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	o := decode[domain.Order](t, w)
	assert.Equal(t, domain.DeliveryTypeDelivery, o.DeliveryType)
	assert.Equal(t, int64(40), o.LoyaltyPointsUsed)
	assert.Equal(t, int64(420+200-40), o.Total)
	assert.Equal(t, int64(29), o.LoyaltyPointsEarned)
	assert.Equal(t, 1, s.sched.Pending())

	w = doJSON(t, s, http.MethodGet, "/api/v1/cart", nil)
	assert.Empty(t, decode[cartResponse](t, w).Lines)

	w = doJSON(t, s, http.MethodGet, "/api/v1/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Order](t, w), 1)

	s.sched.Advance(5 * time.Second)
	w = doJSON(t, s, http.MethodGet, "/api/v1/orders/"+o.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.OrderStatusPreparing, decode[domain.Order](t, w).Status)
	assert.Equal(t, 1, s.sched.Pending())

	w = doJSON(t, s, http.MethodGet, "/api/v1/orders/"+o.ID+"/qrcode", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = doJSON(t, s, http.MethodGet, "/api/v1/orders/nope", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "/", decode[map[string]string](t, w)["redirect"])

	w = doJSON(t, s, http.MethodGet, "/api/v1/loyalty", nil)
	require.Equal(t, http.StatusOK, w.Code)
	l := decode[loyaltyResponse](t, w)
	assert.Equal(t, int64(100-40+29), l.Balance)
	assert.Len(t, l.Transactions, 2)

	w = doJSON(t, s, http.MethodGet, "/api/v1/loyalty/reconcile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[service.Reconciliation](t, w).Consistent)

	w = doJSON(t, s, http.MethodGet, "/api/v1/profile", nil)
	assert.Equal(t, "Анна", decode[domain.UserInfo](t, w).Name)
}

func TestSessionHeader(t *testing.T) {
	s := setupServer(t)

	w := doJSONAs(t, s, "1001", http.MethodPost, "/api/v1/cart/lines", map[string]any{"productId": "1"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSONAs(t, s, "1001", http.MethodGet, "/api/v1/cart", nil)
	assert.Len(t, decode[cartResponse](t, w).Lines, 1)
	w = doJSON(t, s, http.MethodGet, "/api/v1/cart", nil)
	assert.Empty(t, decode[cartResponse](t, w).Lines)

	w = doJSONAs(t, s, "../etc", http.MethodGet, "/api/v1/cart", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatEndpoints(t *testing.T) {
	s := setupServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/v1/chat/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.ChatMessage](t, w), 1)

	w = doJSON(t, s, http.MethodGet, "/api/v1/chat/quick-messages", nil)
	quick := decode[[]string](t, w)
	require.Len(t, quick, 4)

	w = doJSON(t, s, http.MethodPost, "/api/v1/chat/messages", map[string]string{"text": quick[1]})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, s, http.MethodPost, "/api/v1/chat/messages", map[string]string{"text": "   "})
	assert.Equal(t, http.StatusNoContent, w.Code)

	s.sched.Advance(time.Second)
	w = doJSON(t, s, http.MethodGet, "/api/v1/chat/messages", nil)
	msgs := decode[[]domain.ChatMessage](t, w)
	require.Len(t, msgs, 3)
	assert.Equal(t, domain.SenderUser, msgs[1].Sender)
	assert.Equal(t, domain.SenderCafe, msgs[2].Sender)
	assert.Contains(t, service.CafeReplies, msgs[2].Text)
}

func TestProfileEndpoints(t *testing.T) {
	s := setupServer(t)

	w := doJSON(t, s, http.MethodPut, "/api/v1/profile", map[string]string{"name": "Анна"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, s, http.MethodPut, "/api/v1/profile", map[string]string{"name": "Анна", "phone": "+7 900"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/v1/profile", nil)
	assert.Equal(t, "+7 900", decode[domain.UserInfo](t, w).Phone)

	w = doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOrderEventsStream(t *testing.T) {
	s := setupServer(t)
	w := doJSON(t, s, http.MethodPost, "/api/v1/cart/lines", map[string]any{"productId": "1"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, s, http.MethodPost, "/api/v1/orders", checkoutForm)
	require.Equal(t, http.StatusCreated, w.Code)
	o := decode[domain.Order](t, w)

	ts := httptest.NewServer(s.Engine())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/orders/" + o.ID + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reader := bufio.NewReader(resp.Body)
	readStatus := func() domain.OrderStatus {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data:") {
				var got domain.Order
				require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &got))
				return got.Status
			}
		}
	}

	assert.Equal(t, domain.OrderStatusPending, readStatus())
	want := []domain.OrderStatus{
		domain.OrderStatusPreparing, domain.OrderStatusReady, domain.OrderStatusDelivering, domain.OrderStatusCompleted,
	}
	for _, st := range want {
		s.sched.Advance(5 * time.Second)
		assert.Equal(t, st, readStatus())
	}
	assert.Equal(t, 0, s.sched.Pending())
}
