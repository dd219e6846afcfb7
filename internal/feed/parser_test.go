package feed

import (
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<yml_catalog date="2026-08-30 12:00">
  <shop>
    <name>test-shop</name>
    <offers>
      <offer id="1">
        <price>1500.50</price>
        <currencyId>RUB</currencyId>
        <picture>http://example.com/kettle.jpg</picture>
        <name>Steel kettle</name>
        <vendor>Acme</vendor>
        <description>Stove-top kettle, 2l</description>
        <barcode>4006381333931</barcode>
        <param name="article">12345</param>
        <param name="discount">70</param>
      </offer>
      <offer id="2">
        <price>99</price>
        <currencyId>RUB</currencyId>
        <name>Mug</name>
        <vendor>Acme</vendor>
        <description></description>
        <barcode>not-a-number</barcode>
      </offer>
    </offers>
  </shop>
</yml_catalog>`

func TestParseItems(t *testing.T) {
	items, err := ParseItems(strings.NewReader(sampleFeed))
	if err != nil {
		t.Fatalf("ParseItems() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}

	first := items[0]
	if first.Name != "Steel kettle" || first.Vendor != "Acme" {
		t.Errorf("first item name/vendor = %q/%q", first.Name, first.Vendor)
	}
	if first.Price != 150050 {
		t.Errorf("first item price = %d minor units, want 150050", first.Price)
	}
	if first.Barcode != 4006381333931 {
		t.Errorf("first item barcode = %d", first.Barcode)
	}
	if first.Article != 12345 || first.Discount != 70 {
		t.Errorf("first item article/discount = %d/%d, want 12345/70", first.Article, first.Discount)
	}

	// Unparseable numerics map to zero; the rule set flags them downstream.
	second := items[1]
	if second.Barcode != 0 {
		t.Errorf("second item barcode = %d, want 0 for a non-numeric value", second.Barcode)
	}
	if second.Price != 9900 {
		t.Errorf("second item price = %d, want 9900", second.Price)
	}
	if second.Description != "" {
		t.Errorf("second item description = %q, want empty", second.Description)
	}
}

func TestParseItemsWindows1251(t *testing.T) {
	utf8Feed := `<?xml version="1.0" encoding="windows-1251"?>
<yml_catalog date="2026-08-30 12:00">
  <shop>
    <offers>
      <offer id="1">
        <price>250</price>
        <name>Чайник</name>
        <vendor>Дельта</vendor>
        <description>Описание</description>
        <barcode>4006381333931</barcode>
        <param name="article">12345</param>
      </offer>
    </offers>
  </shop>
</yml_catalog>`

	encoded, err := charmap.Windows1251.NewEncoder().String(utf8Feed)
	if err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}

	items, err := ParseItems(strings.NewReader(encoded))
	if err != nil {
		t.Fatalf("ParseItems() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}

	if items[0].Name != "Чайник" || items[0].Vendor != "Дельта" {
		t.Errorf("decoded name/vendor = %q/%q, want cyrillic originals", items[0].Name, items[0].Vendor)
	}
	if items[0].Price != 25000 {
		t.Errorf("price = %d, want 25000", items[0].Price)
	}
}

func TestParseItemsMalformedXML(t *testing.T) {
	if _, err := ParseItems(strings.NewReader("<yml_catalog><shop>")); err == nil {
		t.Error("ParseItems() should fail on truncated XML")
	}
}

func TestParseItemsEmptyOffers(t *testing.T) {
	feed := `<?xml version="1.0"?><yml_catalog><shop><offers></offers></shop></yml_catalog>`
	items, err := ParseItems(strings.NewReader(feed))
	if err != nil {
		t.Fatalf("ParseItems() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("got %d items, want 0", len(items))
	}
}
