package catalog

import "strconv"

// Rule messages. The set is fixed, rules are not configurable.
const (
	MsgHighDiscount       = "high discount"
	MsgExcessiveDiscount  = "excessive discount"
	MsgMissingDescription = "missing description"
	MsgInvalidBarcode     = "invalid barcode"
	MsgInvalidArticle     = "invalid article"
	MsgPriceTooLow        = "price too low"
)

// Evaluate applies the full rule set to one item and returns its findings.
// It is stateless and deterministic; all rules apply independently, so one
// item may yield several findings. The discount comparisons are strict on
// both ends: a discount of exactly 60 or exactly 85 yields nothing.
func Evaluate(it Item) []Finding {
	var findings []Finding

	if it.Discount > 60 && it.Discount < 85 {
		findings = append(findings, Finding{Field: "discount", Severity: SeverityWarning, Message: MsgHighDiscount})
	}
	if it.Discount > 85 {
		findings = append(findings, Finding{Field: "discount", Severity: SeverityError, Message: MsgExcessiveDiscount})
	}
	if it.Description == "" {
		findings = append(findings, Finding{Field: "description", Severity: SeverityError, Message: MsgMissingDescription})
	}
	if !ValidEAN13(it.Barcode) {
		findings = append(findings, Finding{Field: "barcode", Severity: SeverityError, Message: MsgInvalidBarcode})
	}
	if len(strconv.FormatInt(it.Article, 10)) != 5 {
		findings = append(findings, Finding{Field: "article", Severity: SeverityError, Message: MsgInvalidArticle})
	}
	if it.Price < 10 {
		findings = append(findings, Finding{Field: "price", Severity: SeverityError, Message: MsgPriceTooLow})
	}

	return findings
}

// ValidEAN13 reports whether barcode is a well-formed EAN-13 number: exactly
// 13 decimal digits whose last digit matches the mod-10 weighted checksum
// (weights 1 and 3 alternating over the first 12 digits). Values whose
// decimal representation is not 13 digits long are invalid.
func ValidEAN13(barcode int64) bool {
	if barcode < 0 {
		return false
	}
	s := strconv.FormatInt(barcode, 10)
	if len(s) != 13 {
		return false
	}

	sum := 0
	for i := 0; i < 12; i++ {
		d := int(s[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	check := (10 - sum%10) % 10

	return check == int(s[12]-'0')
}
