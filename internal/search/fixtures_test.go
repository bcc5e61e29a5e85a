package search

import "github.com/tendant/sortbin/pkg/recycling"

func testDataset() *recycling.Dataset {
	return recycling.NewDataset(
		[]recycling.Item{
			{Name: "Soda Can", Category: "metal"},
			{Name: "Candle", Category: "trash"},
			{Name: "Glass Jar", Category: "glass"},
			{Name: "Plastic Bottle", Category: "plastic"},
			{Name: "Cardboard Box", Category: "paper"},
			{Name: "Aluminum Foil", Category: "metal"},
			{Name: "Newspaper", Category: "paper"},
			{Name: "Pizza Box", Category: "paper"},
			{Name: "Milk Carton", Category: "paper"},
		},
		[]recycling.KeywordGroup{
			{Category: "plastic", Keywords: []string{"bottle", "bag", "wrap"}},
			{Category: "glass", Keywords: []string{"jar", "bottle", "window"}},
			{Category: "metal", Keywords: []string{"can", "tin", "foil"}},
			{Category: "compost", Keywords: []string{"peel", "coffee grounds"}},
		},
	)
}
