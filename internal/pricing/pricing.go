// Package pricing считает стоимость корзины, доставки и баллов.
// Все суммы целые, в единицах цены каталога.
package pricing

import "coffeehouse/internal/domain"

const (
	// DeliveryFee фиксированная стоимость доставки
	DeliveryFee int64 = 200
	// AccrualPercent доля суммы заказа, начисляемая баллами
	AccrualPercent int64 = 5
)

// UnitPrice цена одной единицы позиции: база + размер + добавки
func UnitPrice(line domain.CartLine) int64 {
	price := line.Product.Price
	if line.SelectedSize != nil {
		price += line.SelectedSize.Price
	}
	for _, a := range line.SelectedAddons {
		price += a.Price
	}
	return price
}

// LineTotal стоимость позиции с учётом количества
func LineTotal(line domain.CartLine) int64 {
	if line.Quantity <= 0 {
		return 0
	}
	return UnitPrice(line) * line.Quantity
}

// Subtotal сумма позиций без доставки и скидки
func Subtotal(lines []domain.CartLine) int64 {
	var sum int64
	for _, l := range lines {
		sum += LineTotal(l)
	}
	return sum
}

// DeliveryFeeFor стоимость доставки для способа получения
func DeliveryFeeFor(t domain.DeliveryType) int64 {
	if t == domain.DeliveryTypeDelivery {
		return DeliveryFee
	}
	return 0
}

// LoyaltyDiscount скидка баллами не больше подытога
func LoyaltyDiscount(pointsUsed, subtotal int64) int64 {
	return clamp(pointsUsed, subtotal)
}

// MaxRedeemable сколько баллов можно списать при данном балансе
func MaxRedeemable(balance, subtotal int64) int64 {
	return clamp(balance, subtotal)
}

// Total итог заказа, никогда не отрицательный
func Total(lines []domain.CartLine, t domain.DeliveryType, pointsUsed int64) int64 {
	subtotal := Subtotal(lines)
	total := subtotal + DeliveryFeeFor(t) - LoyaltyDiscount(pointsUsed, subtotal)
	if total < 0 {
		return 0
	}
	return total
}

// EarnedPoints floor(5% от итога)
func EarnedPoints(total int64) int64 {
	if total <= 0 {
		return 0
	}
	return total * AccrualPercent / 100
}

// Quote расчёт корзины для витрины и оформления
type Quote struct {
	Subtotal        int64 `json:"subtotal"`
	DeliveryFee     int64 `json:"deliveryFee"`
	PointsRequested int64 `json:"pointsRequested"`
	MaxPoints       int64 `json:"maxPoints"`
	PointsUsed      int64 `json:"pointsUsed"`
	Discount        int64 `json:"discount"`
	Total           int64 `json:"total"`
	PointsEarned    int64 `json:"pointsEarned"`
}

// NewQuote считает заказ. Запрошенные баллы ограничиваются балансом и подытогом.
func NewQuote(lines []domain.CartLine, t domain.DeliveryType, requested, balance int64) Quote {
	subtotal := Subtotal(lines)
	maxPoints := MaxRedeemable(balance, subtotal)
	used := clamp(requested, maxPoints)
	total := Total(lines, t, used)
	return Quote{
		Subtotal:        subtotal,
		DeliveryFee:     DeliveryFeeFor(t),
		PointsRequested: requested,
		MaxPoints:       maxPoints,
		PointsUsed:      used,
		Discount:        LoyaltyDiscount(used, subtotal),
		Total:           total,
		PointsEarned:    EarnedPoints(total),
	}
}

// min(v, limit) с отрицательными значениями как 0
func clamp(v, limit int64) int64 {
	if v < 0 || limit < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}
