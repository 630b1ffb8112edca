package catalog

import "coffeehouse/internal/domain"

var coffeeSizes = []domain.Size{
	{ID: "s", Name: "Маленький 250 мл", Price: 0},
	{ID: "m", Name: "Средний 350 мл", Price: 50},
	{ID: "l", Name: "Большой 450 мл", Price: 90},
}

var coffeeAddons = []domain.Addon{
	{ID: "syrup-vanilla", Name: "Ванильный сироп", Price: 40},
	{ID: "syrup-caramel", Name: "Карамельный сироп", Price: 40},
	{ID: "extra-shot", Name: "Дополнительный шот", Price: 60},
	{ID: "oat-milk", Name: "Овсяное молоко", Price: 50},
}

var coldAddons = []domain.Addon{
	{ID: "ice", Name: "Больше льда", Price: 0},
	{ID: "syrup-mint", Name: "Мятный сироп", Price: 40},
}

const imageBase = "https://images.unsplash.com/"

func image(id string) string {
	return imageBase + id + "?w=800&h=600&fit=crop&auto=format"
}

var defaultProducts = []domain.Product{
	// горячие напитки
	{ID: "1", Name: "Эспрессо", Description: "Классический крепкий кофе", Price: 150, Image: image("photo-1510591509098-f4fdc6d0ff04"), Category: domain.CategoryHot, Available: true, Addons: coffeeAddons[:3]},
	{ID: "2", Name: "Капучино", Description: "Эспрессо с молочной пеной", Price: 200, Image: image("photo-1572442388796-11668a67e53d"), Category: domain.CategoryHot, Available: true, Addons: coffeeAddons, Sizes: coffeeSizes},
	{ID: "3", Name: "Латте", Description: "Эспрессо с молоком и пеной", Price: 220, Image: image("photo-1564890369478-c89ca6d9cde9"), Category: domain.CategoryHot, Available: true, Addons: coffeeAddons, Sizes: coffeeSizes},
	{ID: "4", Name: "Американо", Description: "Эспрессо с горячей водой", Price: 180, Image: image("photo-1517487881594-2787fef5ebf7"), Category: domain.CategoryHot, Available: true, Addons: coffeeAddons, Sizes: coffeeSizes},
	{ID: "5", Name: "Раф кофе", Description: "Кофе с ванильным сахаром и сливками", Price: 250, Image: image("photo-1495474472287-4d71bcdd2085"), Category: domain.CategoryHot, Available: true, Addons: coffeeAddons, Sizes: coffeeSizes},
	// холодные напитки
	{ID: "6", Name: "Айс Латте", Description: "Латте со льдом", Price: 240, Image: image("photo-1461023058943-07fcbe16d735"), Category: domain.CategoryCold, Available: true, Addons: append(coldAddons[:1:1], coffeeAddons...), Sizes: coffeeSizes[1:]},
	{ID: "7", Name: "Фраппе", Description: "Холодный кофе со льдом и молоком", Price: 260, Image: image("photo-1461023058943-07fcbe16d735"), Category: domain.CategoryCold, Available: true, Addons: coffeeAddons[:2]},
	{ID: "8", Name: "Мохито", Description: "Освежающий напиток с мятой", Price: 200, Image: image("photo-1525385133512-2f3bdd039054"), Category: domain.CategoryCold, Available: true, Addons: coldAddons},
	{ID: "9", Name: "Лимонад", Description: "Свежий лимонад с мятой", Price: 180, Image: image("photo-1523677011783-c91d1bbe2fdc"), Category: domain.CategoryCold, Available: true, Addons: coldAddons},
	// десерты
	{ID: "10", Name: "Чизкейк", Description: "Нежный чизкейк с ягодами", Price: 320, Image: image("photo-1524351199678-941a58a3df50"), Category: domain.CategoryDessert, Available: true},
	{ID: "11", Name: "Тирамису", Description: "Классический итальянский десерт", Price: 350, Image: image("photo-1571877227200-a0d98ea607e9"), Category: domain.CategoryDessert, Available: true},
	{ID: "12", Name: "Брауни", Description: "Шоколадный брауни с мороженым", Price: 280, Image: image("photo-1606313564200-e75d5e30476c"), Category: domain.CategoryDessert, Available: true},
	{ID: "13", Name: "Круассан", Description: "Свежий круассан с джемом", Price: 150, Image: image("photo-1555507036-ab1f4038808a"), Category: domain.CategoryDessert, Available: true},
	// еда
	{ID: "14", Name: "Сэндвич с курицей", Description: "Свежий сэндвич с курицей и овощами", Price: 380, Image: image("photo-1539252554453-80ab65ce3586"), Category: domain.CategoryFood, Available: true},
	{ID: "15", Name: "Салат Цезарь", Description: "Классический салат с курицей", Price: 420, Image: image("photo-1546793665-c74683f339c1"), Category: domain.CategoryFood, Available: true},
	{ID: "16", Name: "Паста Карбонара", Description: "Итальянская паста с беконом", Price: 450, Image: image("photo-1621996346565-e3dbc646d9a9"), Category: domain.CategoryFood, Available: true},
}

var defaultCategories = []domain.CategoryInfo{
	{ID: domain.CategoryHot, Name: "Горячие напитки", Emoji: "☕", Icon: imageBase + "photo-1510591509098-f4fdc6d0ff04?w=100&h=100&fit=crop&auto=format"},
	{ID: domain.CategoryCold, Name: "Холодные напитки", Emoji: "🧊", Icon: imageBase + "photo-1461023058943-07fcbe16d735?w=100&h=100&fit=crop&auto=format"},
	{ID: domain.CategoryDessert, Name: "Десерты", Emoji: "🍰", Icon: imageBase + "photo-1571877227200-a0d98ea607e9?w=100&h=100&fit=crop&auto=format"},
	{ID: domain.CategoryFood, Name: "Еда", Emoji: "🍽️", Icon: imageBase + "photo-1546069901-ba9599a7e63c?w=100&h=100&fit=crop&auto=format"},
}
