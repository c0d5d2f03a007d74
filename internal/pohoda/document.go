// Package pohoda renders orders into the Pohoda order-import XML dialect.
package pohoda

import "encoding/xml"

// DataPack is the import envelope. The ico attribute identifies the
// importing firm; the consumer rejects packs addressed to someone else.
type DataPack struct {
	XMLName     xml.Name       `xml:"dataPack"`
	ID          string         `xml:"id,attr"`
	ICO         string         `xml:"ico,attr"`
	Application string         `xml:"application,attr"`
	Version     string         `xml:"version,attr"`
	Note        string         `xml:"note,attr"`
	Items       []DataPackItem `xml:"dataPackItem"`
}

// DataPackItem wraps one order fragment.
type DataPackItem struct {
	ID      string   `xml:"id,attr"`
	Version string   `xml:"version,attr"`
	Order   OrderDoc `xml:"order"`
}

// OrderDoc is one received order.
type OrderDoc struct {
	Header OrderHeader `xml:"orderHeader"`
	Detail OrderDetail `xml:"orderDetail"`
}

// OrderHeader carries the order metadata and the billing party.
type OrderHeader struct {
	OrderType   string  `xml:"orderType"`
	NumberOrder string  `xml:"numberOrder,omitempty"`
	Date        string  `xml:"date"`
	Text        string  `xml:"text"`
	Partner     Partner `xml:"partnerIdentity"`
}

// Partner identifies the ordering party.
type Partner struct {
	Address Address `xml:"address"`
}

// Address is the billing address. Name is structurally required by the
// schema; the other fields are omitted when empty.
type Address struct {
	Name   string `xml:"name"`
	Street string `xml:"street,omitempty"`
	City   string `xml:"city,omitempty"`
	Zip    string `xml:"zip,omitempty"`
	ICO    string `xml:"ico,omitempty"`
	DIC    string `xml:"dic,omitempty"`
}

// OrderDetail lists the line items.
type OrderDetail struct {
	Items []OrderItem `xml:"orderItem"`
}

// OrderItem is one purchased product or a synthesized shipping/payment
// surcharge entry.
type OrderItem struct {
	Text      string     `xml:"text"`
	Quantity  int        `xml:"quantity"`
	Unit      string     `xml:"unit,omitempty"`
	UnitPrice string     `xml:"unitPrice"`
	Code      string     `xml:"code,omitempty"`
	StockItem *StockItem `xml:"stockItem,omitempty"`
}

// StockItem cross-references the accounting system's stock ledger.
type StockItem struct {
	Store Store    `xml:"store"`
	Item  StockRef `xml:"stockItem"`
}

// Store names the inventory location.
type Store struct {
	IDs string `xml:"ids"`
}

// StockRef names the stock card by product code.
type StockRef struct {
	IDs string `xml:"ids"`
}

// Marshal renders the document with the XML declaration. Escaping is
// done by the marshaler, after all truncation has already happened.
func (d *DataPack) Marshal() ([]byte, error) {
	body, err := xml.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}
