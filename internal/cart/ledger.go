// Package cart реализует правила объединения позиций корзины.
package cart

import "coffeehouse/internal/domain"

// Ledger упорядоченный список позиций, порядок вставки сохраняется.
// Количество каждой позиции всегда >= 1.
type Ledger struct {
	lines []domain.CartLine
}

// FromLines собирает ledger из сохранённого состояния. Позиции с
// неположительным количеством отбрасываются, совпадающие объединяются.
func FromLines(lines []domain.CartLine) *Ledger {
	l := &Ledger{lines: make([]domain.CartLine, 0, len(lines))}
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		if i := l.index(line.Key()); i >= 0 {
			l.lines[i].Quantity += line.Quantity
			continue
		}
		l.lines = append(l.lines, line)
	}
	return l
}

// Add добавляет единицу товара. Если позиция с тем же товаром, размером и
// набором добавок уже есть, увеличивает её количество.
func (l *Ledger) Add(product domain.Product, size *domain.Size, addons []domain.Addon) domain.CartLine {
	key := domain.MakeLineKey(product.ID, size, addons)
	if i := l.index(key); i >= 0 {
		l.lines[i].Quantity++
		return l.lines[i]
	}
	line := domain.CartLine{Product: product, Quantity: 1}
	if size != nil {
		s := *size
		line.SelectedSize = &s
	}
	if len(addons) > 0 {
		line.SelectedAddons = append([]domain.Addon(nil), addons...)
	}
	l.lines = append(l.lines, line)
	return line
}

// Increment +1 к позиции. false, если позиции нет.
func (l *Ledger) Increment(key domain.LineKey) bool {
	i := l.index(key)
	if i < 0 {
		return false
	}
	l.lines[i].Quantity++
	return true
}

// Decrement -1 к позиции; при количестве 1 позиция удаляется.
// false, если позиции нет.
func (l *Ledger) Decrement(key domain.LineKey) bool {
	i := l.index(key)
	if i < 0 {
		return false
	}
	if l.lines[i].Quantity <= 1 {
		l.removeAt(i)
		return true
	}
	l.lines[i].Quantity--
	return true
}

// Remove удаляет позицию, отсутствие позиции не ошибка
func (l *Ledger) Remove(key domain.LineKey) {
	if i := l.index(key); i >= 0 {
		l.removeAt(i)
	}
}

// Clear очищает корзину
func (l *Ledger) Clear() { l.lines = l.lines[:0] }

// Lines копия позиций в порядке добавления
func (l *Ledger) Lines() []domain.CartLine {
	out := make([]domain.CartLine, len(l.lines))
	copy(out, l.lines)
	return out
}

// Get позиция по ключу
func (l *Ledger) Get(key domain.LineKey) (domain.CartLine, bool) {
	if i := l.index(key); i >= 0 {
		return l.lines[i], true
	}
	return domain.CartLine{}, false
}

// Len число позиций
func (l *Ledger) Len() int { return len(l.lines) }

// Count общее число единиц товара
func (l *Ledger) Count() int64 {
	var n int64
	for _, line := range l.lines {
		n += line.Quantity
	}
	return n
}

func (l *Ledger) index(key domain.LineKey) int {
	for i, line := range l.lines {
		if line.Key() == key {
			return i
		}
	}
	return -1
}

func (l *Ledger) removeAt(i int) {
	l.lines = append(l.lines[:i], l.lines[i+1:]...)
}
