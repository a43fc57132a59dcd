package storefront

import (
	"strings"

	"naijashop/internal/domain/model"
)

// バックエンドが使えないときの商品一覧
var sampleCatalog = []model.Product{
	{ID: 900001, Name: "Classic Lipstick", Description: "Long-lasting matte lipstick in a range of vibrant colours.", Price: 1299, Category: model.CategoryBeauty, Brand: "BeautyCo", Stock: 50, Rating: 4.2, Image: "https://picsum.photos/seed/lipstick/600/600"},
	{ID: 900002, Name: "Floral Eau de Parfum", Description: "A delicate floral fragrance with notes of jasmine and rose.", Price: 4999, Category: model.CategoryBeauty, Brand: "Aroma", Stock: 25, Rating: 4.6, Image: "https://picsum.photos/seed/perfume/600/600"},
	{ID: 900003, Name: "Eyeshadow Palette", Description: "Neutral and shimmer shades for everyday and glam looks.", Price: 2999, Category: model.CategoryBeauty, Brand: "ColorLux", Stock: 40, Rating: 4.1, Image: "https://picsum.photos/seed/eyeshadow/600/600"},
	{ID: 900004, Name: "Wireless Earbuds", Description: "Bluetooth earbuds with charging case and noise isolation.", Price: 18500, Category: model.CategoryElectronics, Brand: "SoundWave", Stock: 30, Rating: 4.4, Image: "https://picsum.photos/seed/earbuds/600/600"},
	{ID: 900005, Name: "Ankara Print Shirt", Description: "Cotton shirt in a bold Ankara print.", Price: 9500, Category: model.CategoryClothing, Brand: "Lagos Threads", Stock: 45, Rating: 4.5, Image: "https://picsum.photos/seed/ankara/600/600"},
	{ID: 900006, Name: "Non-stick Frying Pan", Description: "28cm frying pan with heat-resistant handle.", Price: 7200, Category: model.CategoryHome, Brand: "KitchenPro", Stock: 60, Rating: 4.0, Image: "https://picsum.photos/seed/pan/600/600"},
	{ID: 900007, Name: "Things Fall Apart", Description: "Chinua Achebe's classic novel, paperback edition.", Price: 3500, Category: model.CategoryBooks, Brand: "Heinemann", Stock: 80, Rating: 4.9, Image: "https://picsum.photos/seed/novel/600/600"},
	{ID: 900008, Name: "Football Size 5", Description: "Match-grade football for grass and turf.", Price: 6800, Category: model.CategorySports, Brand: "Kickoff", Stock: 35, Rating: 4.3, Image: "https://picsum.photos/seed/football/600/600"},
}

// 検索語とカテゴリで絞り込む（大文字小文字は区別しない）
func sampleProducts(search, category string) []model.Product {
	search = strings.ToLower(strings.TrimSpace(search))
	category = strings.ToLower(strings.TrimSpace(category))

	out := []model.Product{}
	for _, p := range sampleCatalog {
		if category != "" && string(p.Category) != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.Description), search) {
			continue
		}
		p.IsActive = true
		p.Currency = model.CurrencyNGN
		out = append(out, p)
	}
	return out
}
