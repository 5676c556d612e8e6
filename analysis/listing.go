package analysis

import "stock-analyzer/models"

// ListingDateLayout is the DD-MM-YYYY layout used for listing dates
const ListingDateLayout = "02-01-2006"

// Listing derives the first traded session from a full-history series and
// the return earned since then at currentPrice.
func Listing(history models.PriceSeries, currentPrice *float64) models.ListingInfo {
	first, ok := firstBar(history)
	if !ok {
		return models.ListingInfo{}
	}

	date := first.Date
	info := models.ListingInfo{Date: &date}

	if !Defined(first.Open) {
		return info
	}
	price := Round2(first.Open)
	info.Price = &price

	if currentPrice != nil {
		info.Return = PercentChange(price, *currentPrice)
	}
	return info
}

func firstBar(s models.PriceSeries) (models.Bar, bool) {
	if len(s) == 0 {
		return models.Bar{}, false
	}
	return s[0], true
}
