package pohoda

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/misdekor/pohoda-bridge/internal/eshop"
)

// Text budgets in runes, ellipsis included.
const (
	maxItemText  = 100
	maxLabelText = 60
	maxNoteText  = 80
)

const (
	ellipsis        = "…"
	docVersion      = "2.0"
	defaultUnit     = "ks"
	fallbackName    = "Neznámý zákazník"
	headerPhrase    = "Objednávka z e-shopu"
	unknownFragment = "UNKNOWN"
)

// priceKeys is the unit-price lookup order within a line item.
var priceKeys = []string{"price_per_unit_with_vat", "price_with_vat", "price"}

// createdKeys is the creation-timestamp lookup order within an order.
var createdKeys = []string{"creation_time", "date_created", "created", "date"}

var dateFormats = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Options configure the builder. Both toggles are threaded explicitly so
// tests can exercise either state.
type Options struct {
	FirmICO     string
	Application string

	// IncludeStockItems attaches a stock-card cross-reference to line
	// items that carry a product code. Off by default: codes missing
	// from the stock ledger make the import noisy with warnings.
	IncludeStockItems bool
	DefaultStore      string

	// Now supplies the fallback date for orders without a parseable
	// creation timestamp.
	Now func() time.Time
}

// Builder maps loosely-typed orders onto the import document.
type Builder struct {
	opts   Options
	logger *slog.Logger
}

// Stats summarizes one Build call.
type Stats struct {
	Total    int
	Skipped  int
	Exported int
}

// NewBuilder creates a Builder.
func NewBuilder(opts Options, logger *slog.Logger) *Builder {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Builder{opts: opts, logger: logger}
}

// Build renders the orders into one document. Orders with no usable line
// items are skipped. When nothing is exportable the returned DataPack is
// nil and the caller must not write an output file.
func (b *Builder) Build(orders []eshop.Order) (*DataPack, Stats) {
	stats := Stats{Total: len(orders)}

	pack := &DataPack{
		ID:          "eshop-orders",
		ICO:         b.opts.FirmICO,
		Application: b.opts.Application,
		Version:     docVersion,
		Note:        "Import objednávek z e-shopu",
	}

	for _, o := range orders {
		item, ok := b.buildOrder(o)
		if !ok {
			stats.Skipped++
			continue
		}
		pack.Items = append(pack.Items, item)
	}

	stats.Exported = len(pack.Items)
	if stats.Exported == 0 {
		return nil, stats
	}
	return pack, stats
}

func (b *Builder) buildOrder(o eshop.Order) (DataPackItem, bool) {
	rows := o.Rows()
	if len(rows) == 0 {
		b.logger.Warn("skipping order without line items", "id_order", o.ID(), "number", o.Number())
		return DataPackItem{}, false
	}

	items := make([]OrderItem, 0, len(rows)+2)
	for _, row := range rows {
		items = append(items, b.buildLineItem(row))
	}
	if ship, ok := b.surchargeItem(o.Delivery(), "nazev_postovne", "postovne", true); ok {
		items = append(items, ship)
	}
	if pay, ok := b.surchargeItem(o.Payment(), "nazev_platba", "castka_platba", false); ok {
		items = append(items, pay)
	}

	return DataPackItem{
		ID:      fragmentID(o),
		Version: docVersion,
		Order: OrderDoc{
			Header: b.buildHeader(o),
			Detail: OrderDetail{Items: items},
		},
	}, true
}

func (b *Builder) buildLineItem(row map[string]any) OrderItem {
	item := OrderItem{
		Text:      truncate(eshop.PickString(row, "product_name", "name"), maxItemText),
		Quantity:  quantity(row),
		Unit:      unit(row),
		UnitPrice: unitPrice(row),
	}

	if code := eshop.PickString(row, "product_number"); code != "" {
		item.Code = code
		if b.opts.IncludeStockItems {
			item.StockItem = &StockItem{
				Store: Store{IDs: b.opts.DefaultStore},
				Item:  StockRef{IDs: code},
			}
		}
	}
	return item
}

// surchargeItem synthesizes a shipping or payment line item. Emitted
// only when the label is present and the amount is strictly positive.
func (b *Builder) surchargeItem(block map[string]any, labelKey, amountKey string, simplify bool) (OrderItem, bool) {
	if block == nil {
		return OrderItem{}, false
	}
	label := eshop.PickString(block, labelKey)
	if label == "" {
		return OrderItem{}, false
	}
	amount, ok := toDecimal(block[amountKey])
	if !ok || !amount.IsPositive() {
		return OrderItem{}, false
	}
	if simplify {
		label = simplifyShippingLabel(label)
	}
	return OrderItem{
		Text:      truncate(label, maxLabelText),
		Quantity:  1,
		Unit:      defaultUnit,
		UnitPrice: amount.Round(2).StringFixed(2),
	}, true
}

func (b *Builder) buildHeader(o eshop.Order) OrderHeader {
	addr := Address{}
	if billing := o.Billing(); billing != nil {
		addr.Name = eshop.PickString(billing, "name")
		addr.Street = eshop.PickString(billing, "street")
		addr.City = eshop.PickString(billing, "city")
		addr.Zip = eshop.PickString(billing, "zip")
		addr.ICO = eshop.PickString(billing, "ico")
		addr.DIC = eshop.PickString(billing, "dic")
	}
	if addr.Name == "" {
		addr.Name = fallbackName
	}

	number := o.Number()
	text := headerPhrase
	if number != "" {
		text = headerPhrase + " č. " + number
	}

	return OrderHeader{
		OrderType:   "receivedOrder",
		NumberOrder: number,
		Date:        b.orderDate(o),
		Text:        truncate(text, maxNoteText),
		Partner:     Partner{Address: addr},
	}
}

// orderDate resolves the creation date, unwrapping one nesting level
// when the value is itself a record carrying a date/datetime field.
// Only the first 19 characters are parsed, which drops trailing
// fractional seconds and timezone noise.
func (b *Builder) orderDate(o eshop.Order) string {
	for _, key := range createdKeys {
		v, ok := o[key]
		if !ok || v == nil {
			continue
		}
		if m, isMap := eshop.AsMap(v); isMap {
			inner, found := eshop.PickValue(m, "date", "datetime")
			if !found {
				continue
			}
			v = inner
		}
		s := strings.TrimSpace(eshop.ToString(v))
		if s == "" {
			continue
		}
		if len(s) > 19 {
			s = s[:19]
		}
		for _, format := range dateFormats {
			if t, err := time.Parse(format, s); err == nil {
				return t.Format("2006-01-02")
			}
		}
	}
	return b.opts.Now().Format("2006-01-02")
}

// fragmentID derives a stable dataPackItem id from the order identity,
// restricted to letters, digits, '.', '_' and '-'.
func fragmentID(o eshop.Order) string {
	base := unknownFragment
	if id := o.ID(); id > 0 {
		base = strconv.Itoa(id)
	} else if number := o.Number(); number != "" {
		base = number
	}
	return "ord-" + sanitizeToken(base)
}

func sanitizeToken(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

// unitPrice resolves the price fields in priority order, rounded
// half-up to two decimals with a decimal point.
func unitPrice(row map[string]any) string {
	for _, k := range priceKeys {
		if d, ok := toDecimal(row[k]); ok {
			return d.Round(2).StringFixed(2)
		}
	}
	return "0.00"
}

func quantity(row map[string]any) int {
	v, ok := eshop.PickValue(row, "count")
	if !ok {
		return 1
	}
	n, ok := eshop.ToInt(v)
	if !ok {
		return 1
	}
	return n
}

func unit(row map[string]any) string {
	if u := eshop.PickString(row, "unit"); u != "" {
		return u
	}
	return defaultUnit
}

// simplifyShippingLabel keeps the first two hyphen-separated segments,
// discarding pickup-point address detail appended after them.
func simplifyShippingLabel(label string) string {
	parts := strings.SplitN(label, "-", 3)
	if len(parts) < 3 {
		return strings.TrimSpace(label)
	}
	return strings.TrimSpace(parts[0] + "-" + parts[1])
}

// truncate trims and cuts s to max runes, marking the cut with a single
// ellipsis. Escaping happens later in the marshaler, so the cut can
// never split an entity.
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + ellipsis
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case float64:
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	default:
		return decimal.Zero, false
	}
}
