// Package feed decodes YML (Yandex Market Language) catalog feeds into
// plain item records. Feeds in the wild are commonly windows-1251 encoded;
// the parser honors the encoding declared in the XML prolog.
package feed

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/charmap"

	"github.com/itemgate/catalog-validator/internal/catalog"
)

// Param names recognized on <param> elements of an offer.
const (
	ParamArticle  = "article"
	ParamDiscount = "discount"
)

type ymlCatalog struct {
	XMLName xml.Name `xml:"yml_catalog"`
	Shop    struct {
		Offers struct {
			Offers []offer `xml:"offer"`
		} `xml:"offers"`
	} `xml:"shop"`
}

type offer struct {
	Name        string  `xml:"name"`
	Vendor      string  `xml:"vendor"`
	Price       string  `xml:"price"`
	Description string  `xml:"description"`
	Barcode     string  `xml:"barcode"`
	Params      []param `xml:"param"`
}

type param struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// ParseItems reads a YML feed and returns one item per offer.
//
// Numeric fields that fail to parse (a non-numeric barcode, a missing
// article param) are mapped to zero rather than rejected here: the rule set
// downstream reports them as per-field findings, which is the behavior the
// observer expects. Only a malformed XML document is an error.
func ParseItems(r io.Reader) ([]catalog.Item, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charsetReader

	var doc ymlCatalog
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode feed: %w", err)
	}

	offers := doc.Shop.Offers.Offers
	items := make([]catalog.Item, 0, len(offers))
	for _, o := range offers {
		it := catalog.Item{
			Name:        strings.TrimSpace(o.Name),
			Vendor:      strings.TrimSpace(o.Vendor),
			Price:       parseMinorUnits(o.Price),
			Description: strings.TrimSpace(o.Description),
			Barcode:     parseInt(o.Barcode),
		}
		for _, p := range o.Params {
			switch strings.ToLower(strings.TrimSpace(p.Name)) {
			case ParamArticle:
				it.Article = parseInt(p.Value)
			case ParamDiscount:
				it.Discount = parseInt(p.Value)
			}
		}
		items = append(items, it)
	}

	return items, nil
}

// charsetReader decodes feed content according to the declared encoding.
// windows-1251 is handled explicitly; any other label goes through the
// html/charset registry.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	if strings.EqualFold(strings.TrimSpace(label), "windows-1251") {
		return charmap.Windows1251.NewDecoder().Reader(input), nil
	}
	return charset.NewReaderLabel(label, input)
}

// parseMinorUnits converts a feed price ("1500" or "1500.50", major
// currency units) to minor units. Unparseable prices become 0.
func parseMinorUnits(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(math.Round(v * 100))
}

func parseInt(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
