package domain

import (
	"sort"
	"strings"
	"time"
)

// Category категория меню
type Category string

const (
	CategoryHot     Category = "hot"
	CategoryCold    Category = "cold"
	CategoryDessert Category = "dessert"
	CategoryFood    Category = "food"
)

// CategoryInfo описание категории для витрины
type CategoryInfo struct {
	ID    Category `json:"id"`
	Name  string   `json:"name"`
	Icon  string   `json:"icon"`
	Emoji string   `json:"emoji"`
}

// Addon добавка к напитку, цена прибавляется к цене позиции
type Addon struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// Size вариант объёма, цена прибавляется к базовой
type Size struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// Product товар каталога
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Image       string   `json:"image"`
	Emoji       string   `json:"emoji,omitempty"`
	Category    Category `json:"category"`
	Available   bool     `json:"available"`
	Addons      []Addon  `json:"addons,omitempty"`
	Sizes       []Size   `json:"sizes,omitempty"`
}

// FindAddon ищет добавку по id
func (p Product) FindAddon(id string) (Addon, bool) {
	for _, a := range p.Addons {
		if a.ID == id {
			return a, true
		}
	}
	return Addon{}, false
}

// FindSize ищет вариант объёма по id
func (p Product) FindSize(id string) (Size, bool) {
	for _, s := range p.Sizes {
		if s.ID == id {
			return s, true
		}
	}
	return Size{}, false
}

// LineKey канонический ключ позиции корзины: product:size:addon,addon
type LineKey string

// CartLine позиция корзины
type CartLine struct {
	Product        Product `json:"product"`
	Quantity       int64   `json:"quantity"`
	SelectedSize   *Size   `json:"selectedSize,omitempty"`
	SelectedAddons []Addon `json:"selectedAddons,omitempty"`
}

// Key строит ключ позиции. Порядок добавок не важен.
func (l CartLine) Key() LineKey {
	return MakeLineKey(l.Product.ID, l.SelectedSize, l.SelectedAddons)
}

// MakeLineKey ключ для товара, размера и набора добавок
func MakeLineKey(productID string, size *Size, addons []Addon) LineKey {
	sizeID := ""
	if size != nil {
		sizeID = size.ID
	}
	ids := make([]string, 0, len(addons))
	for _, a := range addons {
		ids = append(ids, a.ID)
	}
	sort.Strings(ids)
	return LineKey(productID + ":" + sizeID + ":" + strings.Join(ids, ","))
}

// DeliveryType способ получения заказа
type DeliveryType string

const (
	DeliveryTypeDelivery DeliveryType = "delivery"
	DeliveryTypePickup   DeliveryType = "pickup"
)

// Valid проверяет значение
func (t DeliveryType) Valid() bool {
	return t == DeliveryTypeDelivery || t == DeliveryTypePickup
}

// PaymentMethod способ оплаты
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodOnline PaymentMethod = "online"
)

// OrderStatus тип статуса заказа
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPreparing  OrderStatus = "preparing"
	OrderStatusReady      OrderStatus = "ready"
	OrderStatusDelivering OrderStatus = "delivering"
	OrderStatusCompleted  OrderStatus = "completed"
)

// OrderStatusFlow фиксированная последовательность статусов
var OrderStatusFlow = []OrderStatus{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusDelivering,
	OrderStatusCompleted,
}

// Index позиция статуса в последовательности, -1 для неизвестного
func (s OrderStatus) Index() int {
	for i, st := range OrderStatusFlow {
		if st == s {
			return i
		}
	}
	return -1
}

// Next следующий статус. Для completed возвращает completed.
// Неизвестный статус считается pending.
func (s OrderStatus) Next() OrderStatus {
	i := s.Index()
	if i < 0 {
		i = 0
	}
	if i >= len(OrderStatusFlow)-1 {
		return OrderStatusCompleted
	}
	return OrderStatusFlow[i+1]
}

// Terminal заказ завершён
func (s OrderStatus) Terminal() bool { return s == OrderStatusCompleted }

// Order сущность заказа
type Order struct {
	ID                  string        `json:"id"`
	Items               []CartLine    `json:"items"`
	Subtotal            int64         `json:"subtotal"`
	DeliveryFee         int64         `json:"deliveryFee"`
	Discount            int64         `json:"discount"`
	Total               int64         `json:"total"`
	DeliveryType        DeliveryType  `json:"deliveryType"`
	PaymentMethod       PaymentMethod `json:"paymentMethod"`
	Address             string        `json:"address,omitempty"`
	Phone               string        `json:"phone"`
	Name                string        `json:"name"`
	Status              OrderStatus   `json:"status"`
	CreatedAt           time.Time     `json:"createdAt"`
	LoyaltyPointsUsed   int64         `json:"loyaltyPointsUsed"`
	LoyaltyPointsEarned int64         `json:"loyaltyPointsEarned"`
}

// TransactionType тип операции с баллами
type TransactionType string

const (
	TransactionEarned TransactionType = "earned"
	TransactionSpent  TransactionType = "spent"
)

// LoyaltyTransaction запись журнала баллов
type LoyaltyTransaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Amount      int64           `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
}

// Sender автор сообщения чата
type Sender string

const (
	SenderUser Sender = "user"
	SenderCafe Sender = "cafe"
)

// ChatMessage сообщение чата
type ChatMessage struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// UserInfo контактные данные последнего заказа
type UserInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
}

// CheckoutDraft выбор, сделанный в корзине и переданный на оформление
type CheckoutDraft struct {
	DeliveryType  DeliveryType `json:"deliveryType"`
	LoyaltyPoints int64        `json:"loyaltyPoints"`
}
