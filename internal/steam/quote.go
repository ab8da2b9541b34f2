// Package steam talks to the Steam Community Market price-overview endpoint
// and normalizes its localized text fields into numeric quotes.
package steam

import "fmt"

// Quote is one ephemeral price/volume reading for an item. It is never
// stored directly; the updater converts it into an observation row.
type Quote struct {
	LowestPrice      float64
	MedianPrice      float64
	Volume           int64
	SpreadAbsolute   float64
	SpreadPercentage float64
}

// Valid reports whether the quote is usable: a positive lowest price and at
// least one traded unit. A zero median is legitimate for illiquid items.
func (q Quote) Valid() bool {
	return q.LowestPrice > 0 && q.Volume > 0
}

func (q Quote) String() string {
	return fmt.Sprintf("Quote(lowest=%.2f, median=%.2f, volume=%d, spread=%.1f%%)",
		q.LowestPrice, q.MedianPrice, q.Volume, q.SpreadPercentage)
}

// BuildQuote parses the three raw text fields and derives the spread
// metrics. The absolute spread is |median-lowest| when both are known, the
// relative spread is its share of the lowest price in percent.
func BuildQuote(lowestRaw, medianRaw, volumeRaw string) Quote {
	q := Quote{
		LowestPrice: ParsePrice(lowestRaw),
		MedianPrice: ParsePrice(medianRaw),
		Volume:      ParseVolume(volumeRaw),
	}
	if q.MedianPrice > 0 && q.LowestPrice > 0 {
		q.SpreadAbsolute = q.MedianPrice - q.LowestPrice
		if q.SpreadAbsolute < 0 {
			q.SpreadAbsolute = -q.SpreadAbsolute
		}
	}
	if q.LowestPrice > 0 && q.SpreadAbsolute > 0 {
		q.SpreadPercentage = q.SpreadAbsolute / q.LowestPrice * 100
	}
	return q
}
