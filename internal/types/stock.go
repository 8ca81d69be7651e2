package types

// DefaultStockFields is the field selection used when a caller does not ask for specific fields.
var DefaultStockFields = []string{"id", "name", "list", "priceData{open, high, low, close, date}"}

// Stock is a tradable instrument together with its daily price history.
type Stock struct {
	ID        string `yaml:"id" json:"id" validate:"required"`
	Name      string `yaml:"name" json:"name"`
	List      string `yaml:"list" json:"list"`
	PriceData []Bar  `yaml:"price_data,omitempty" json:"priceData,omitempty"`
}

// Summary returns the stock without its price history.
// Signals and trades carry the summary so they stay small when persisted.
func (s Stock) Summary() Stock {
	return Stock{
		ID:   s.ID,
		Name: s.Name,
		List: s.List,
	}
}

// LastBar returns the most recent bar of the price history.
func (s Stock) LastBar() (Bar, bool) {
	if len(s.PriceData) == 0 {
		return Bar{}, false
	}

	return s.PriceData[len(s.PriceData)-1], true
}

// InLists reports whether the stock belongs to one of lists. An empty filter matches every stock.
func (s Stock) InLists(lists []string) bool {
	if len(lists) == 0 {
		return true
	}

	for _, list := range lists {
		if s.List == list {
			return true
		}
	}

	return false
}
