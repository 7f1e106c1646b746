package poimport

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// currency markers that may lead or trail an amount, e.g. "Rs. 1,234/-"
var (
	currencyPrefixes = []string{"rs.", "rs", "inr", "₹"}
	currencySuffixes = []string{"/-", "rs.", "rs", "inr"}
)

// trimCurrency strips currency markers from either end of s
func trimCurrency(s string) string {
	for trimmed := true; trimmed; {
		trimmed = false
		for _, p := range currencyPrefixes {
			if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
				s, trimmed = strings.TrimSpace(s[len(p):]), true
			}
		}
		for _, p := range currencySuffixes {
			if len(s) >= len(p) && strings.EqualFold(s[len(s)-len(p):], p) {
				s, trimmed = strings.TrimSpace(s[:len(s)-len(p)]), true
			}
		}
	}
	return s
}

// ParseDecimal keeps only digits, '.' and '-' and parses the remainder.
// Currency markers, thousands separators and stray whitespace are dropped.
// The result is null when nothing parseable is left; callers use
// Decimal.String() as the canonical text form.
func ParseDecimal(raw string) decimal.NullDecimal {
	s := trimCurrency(strings.TrimSpace(raw))
	if s == "" {
		return decimal.NullDecimal{}
	}
	// raw spreadsheet values may come in exponent form
	if strings.ContainsAny(s, "eE") {
		if d, err := decimal.NewFromString(s); err == nil {
			return decimal.NullDecimal{Decimal: d, Valid: true}
		}
	}

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// ParseQuantity parses a whole quantity; fractional parts are truncated
func ParseQuantity(raw string) (int64, bool) {
	d := ParseDecimal(raw)
	if !d.Valid {
		return 0, false
	}
	return d.Decimal.IntPart(), true
}

func parseLineNumber(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(s); err == nil {
		return n, n > 0
	}
	// spreadsheets hand back 1.0 style numbers
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) && f > 0 {
		return int(f), true
	}
	return 0, false
}

var dayMonthYear = regexp.MustCompile(`^(\d{1,2})[-/.](\d{1,2})[-/.](\d{4}|\d{2})(?:[ T].*)?$`)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02 Jan 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"02-Jan-06",
	"2-Jan-06",
	"Jan 2, 2006",
	"January 2, 2006",
	"02 January 2006",
	"Mon Jan 2 2006",
}

// excel day zero, accounting for the 1900 leap-year bug
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// ParseDate understands DD-MM-YY and DD-MM-YYYY ('-', '/' or '.' separated),
// common ISO and free-text layouts, and Excel serial day numbers.
// Two-digit years below 50 are 20xx, the rest 19xx. Returns nil on failure.
func ParseDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	if m := dayMonthYear.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			if year < 50 {
				year += 2000
			} else {
				year += 1900
			}
		}
		return civilDate(year, month, day)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 1 && f < 100000 {
		d := excelEpoch.AddDate(0, 0, int(f))
		return &d
	}
	return nil
}

// civilDate rejects values time.Date would silently roll over (31-02 etc.)
func civilDate(year, month, day int) *time.Time {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return nil
	}
	return &t
}

// labelKey folds a label for comparison: NFKC, Unicode case fold, and only
// letters and digits kept. "S. no." and "S.No" share a key, as do
// "PO Number :" and "po number". A percent sign stays significant so that
// "CGST %" and "CGST" remain different columns.
func labelKey(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '%':
			b.WriteString("pct")
		}
	}
	return b.String()
}

// cleanText collapses internal whitespace, including line breaks inside
// multi-line cells, into single spaces
func cleanText(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

var placeholderText = map[string]bool{
	"-": true, "--": true, "na": true, "n/a": true, "#n/a": true, "null": true,
	"nil": true, "none": true, "undefined": true, "nan": true, "0": true,
	"#ref!": true, "#value!": true, "#name?": true,
}

const maxDisplayRunes = 200

// SanitizeDisplay returns "" for text that is clearly garbled or a
// placeholder, so previews show a null instead of noise
func SanitizeDisplay(s string) string {
	s = cleanText(s)
	if s == "" || placeholderText[strings.ToLower(s)] {
		return ""
	}
	if strings.ContainsRune(s, utf8.RuneError) || utf8.RuneCountInString(s) > maxDisplayRunes {
		return ""
	}
	letters := 0
	for _, r := range s {
		if unicode.IsControl(r) {
			return ""
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters == 0 {
		return ""
	}
	return s
}
