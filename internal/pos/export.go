package pos

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/merchpos/merchpos/internal/models"
)

// CSVHeader is the first row of every export.
const CSVHeader = "Item,Quantity,Price,Total,Timestamp"

// HistoryCSV renders sale records, oldest first, as flat comma-joined rows.
// Values are written as-is without quoting: an item name containing a comma
// corrupts its row.
func HistoryCSV(records []models.SaleRecord) string {
	rows := make([]string, 0, len(records)+1)
	rows = append(rows, CSVHeader)
	for _, r := range records {
		rows = append(rows, fmt.Sprintf("%s,%d,%s,%s,%s",
			r.Item, r.Qty, formatAmount(r.Price), formatAmount(r.Total),
			r.Timestamp.UTC().Format(time.RFC3339)))
	}
	return strings.Join(rows, "\n")
}

// formatAmount drops trailing zeros so whole prices render as "10", not
// "10.000000".
func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
