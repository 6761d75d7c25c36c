package records

import (
	"strconv"
	"strings"
	"time"

	"github.com/subscription-bot/server/internal/dialogue/model"
)

// Column positions of the fixed leading columns.
const (
	colTime = iota
	colUserID
	colHandle
	fixedColumns
)

// Column is one header cell. Field names the session field for form columns.
type Column struct {
	Header string
	Field  string
	Width  float64
}

// Schema is the ordered header list. The first three columns are always the
// timestamp, user id and handle.
type Schema []Column

var DefaultSchema = Schema{
	{Header: "Дата", Width: 20},
	{Header: "User ID", Width: 14},
	{Header: "Username", Width: 20},
	{Header: "ФИО", Field: "name", Width: 30},
	{Header: "Адрес", Field: "address", Width: 40},
	{Header: "Телефон", Field: "phone", Width: 18},
	{Header: "Доставка", Field: "delivery", Width: 30},
	{Header: "Тип подписки", Field: "sub_type", Width: 18},
	{Header: "Номера", Field: "issues", Width: 16},
	{Header: "Стоимость", Field: "price", Width: 14},
}

func (s Schema) Headers() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.Header
	}
	return out
}

// Matches reports whether a stored header row equals the schema.
func (s Schema) Matches(row []string) bool {
	if len(row) != len(s) {
		return false
	}
	for i, c := range s {
		if strings.TrimSpace(row[i]) != c.Header {
			return false
		}
	}
	return true
}

// Row lays rec out in schema order.
func (s Schema) Row(rec model.Record) []any {
	row := make([]any, len(s))
	for i, c := range s {
		switch i {
		case colTime:
			row[i] = rec.Time.Format(timeLayout)
		case colUserID:
			// Text, so long ids never turn into scientific notation.
			row[i] = strconv.FormatInt(rec.UserID, 10)
		case colHandle:
			row[i] = rec.Handle
		default:
			row[i] = rec.Fields[c.Field]
		}
	}
	return row
}

// Parse is the inverse of Row for a stored row.
func (s Schema) Parse(row []string) model.Record {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	rec := model.Record{Handle: cell(colHandle), Fields: map[string]string{}}
	rec.Time, _ = time.ParseInLocation(timeLayout, cell(colTime), time.Local)
	rec.UserID, _ = strconv.ParseInt(NormalizeID(cell(colUserID)), 10, 64)
	for i := fixedColumns; i < len(s); i++ {
		if v := cell(i); v != "" {
			rec.Fields[s[i].Field] = v
		}
	}
	return rec
}
