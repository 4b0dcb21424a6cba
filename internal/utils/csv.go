package utils

import (
	"cryptoGridBot/internal/domain"
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

func WriteTradesToCSV(trades []*domain.Trade, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"id", "timestamp", "symbol", "side", "quantity", "price", "total_value", "commission", "strategy", "reason", "order_id", "realized_pnl"})

	for _, t := range trades {
		writer.Write([]string{
			t.ID,
			t.Timestamp.Format(time.RFC3339),
			t.Symbol,
			string(t.Side),
			strconv.FormatFloat(t.Quantity, 'f', -1, 64),
			strconv.FormatFloat(t.Price, 'f', -1, 64),
			strconv.FormatFloat(t.TotalValue, 'f', -1, 64),
			strconv.FormatFloat(t.Commission, 'f', -1, 64),
			t.Strategy,
			t.Reason,
			t.OrderID,
			strconv.FormatFloat(t.RealizedPnL, 'f', -1, 64),
		})
	}
	return writer.Error()
}
