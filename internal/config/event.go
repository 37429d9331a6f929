package config

type Event struct {
	// LowStockThreshold is the remaining quantity at or below which a
	// recorded stock change is reported as low stock.
	LowStockThreshold int64 `env:"EVENT_LOW_STOCK_THRESHOLD" envDefault:"5"`
}
