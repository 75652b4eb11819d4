package enums

// StockStatus is the list-view classification of an item against its threshold.
type StockStatus string

const (
	StockStatusLow StockStatus = "Low"
	StockStatusOK  StockStatus = "OK"
)

// ClassifyStock returns Low when a positive threshold is strictly above stock.
func ClassifyStock(stock, threshold int) StockStatus {
	if threshold > 0 && stock < threshold {
		return StockStatusLow
	}
	return StockStatusOK
}
