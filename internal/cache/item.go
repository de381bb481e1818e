package cache

import (
	"bytes"
	"encoding/json"
	"math"
	"math/rand"
	"strconv"
	"strings"
)

// Item is one cached product snapshot. Fields other than the ones normalized
// here are carried through untouched.
type Item map[string]any

// Name returns the item's name field, or "" when it is missing or not a string.
func (i Item) Name() string {
	name, _ := i["name"].(string)
	return name
}

// decodeList parses a stored list. Missing, malformed or non-array values
// yield an empty list; non-object elements are dropped.
func decodeList(raw string, ok bool) []Item {
	if !ok || strings.TrimSpace(raw) == "" {
		return []Item{}
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var elems []json.RawMessage
	if err := dec.Decode(&elems); err != nil {
		return []Item{}
	}

	items := make([]Item, 0, len(elems))
	for _, elem := range elems {
		d := json.NewDecoder(bytes.NewReader(elem))
		d.UseNumber()
		var item Item
		if err := d.Decode(&item); err != nil || item == nil {
			continue
		}
		items = append(items, item)
	}
	return items
}

func encodeList(items []Item) (string, error) {
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func readList(s Storage, key string) []Item {
	raw, ok := s.GetItem(key)
	return decodeList(raw, ok)
}

func writeList(s Storage, key string, items []Item) error {
	raw, err := encodeList(items)
	if err != nil {
		return err
	}
	return s.SetItem(key, raw)
}

// stringify renders a stored scalar the way the storefront script would
// print it. Null and missing become "".
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return formatNumber(f)
		}
		return t.String()
	case float64:
		return formatNumber(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = stringify(e)
		}
		return strings.Join(parts, ",")
	default:
		return "[object Object]"
	}
}

func formatNumber(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizePrice turns price and oldPrice into an integer price and a
// digit-only oldPrice. A price string that ends with oldPrice had the two
// values concatenated, so the suffix is dropped first.
func NormalizePrice(price, oldPrice any) (int64, string) {
	p := stringify(price)
	old := stringify(oldPrice)
	if old != "" && strings.HasSuffix(p, old) {
		p = strings.TrimSuffix(p, old)
	}

	digits := digitsOnly(p)
	var n int64
	if digits != "" {
		parsed, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			parsed = math.MaxInt64
		}
		n = parsed
	}
	return n, digitsOnly(old)
}

// NormalizeImage makes an image path root-relative. Absolute URLs and paths
// are kept, leading "../" segments and a single "./" are removed.
func NormalizeImage(src any) string {
	s, ok := src.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "http") || strings.HasPrefix(s, "/") {
		return s
	}
	for strings.HasPrefix(s, "../") {
		s = s[3:]
	}
	s = strings.TrimPrefix(s, "./")
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	return s
}

// NormalizeItem returns a copy of item with price, oldPrice and img repaired.
func NormalizeItem(item Item) Item {
	out := make(Item, len(item)+3)
	for k, v := range item {
		out[k] = v
	}
	out["price"], out["oldPrice"] = NormalizePrice(item["price"], item["oldPrice"])
	out["img"] = NormalizeImage(item["img"])
	return out
}

// Ratings renders a star rating such as "★★★★☆ (4.3/5)".
func Ratings(value float64) string {
	value = math.Max(0, math.Min(5, value))
	full := int(math.Floor(value))
	return strings.Repeat("★", full) + strings.Repeat("☆", 5-full) + " (" + formatNumber(value) + "/5)"
}

// defaultRatings draws a rating between 4.0 and 5.0 in tenths.
func defaultRatings(random func() float64) string {
	if random == nil {
		random = rand.Float64
	}
	value := math.Round((4+random())*10) / 10
	return Ratings(value)
}

func hasRatings(item Item) bool {
	switch v := item["ratings"].(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case json.Number:
		f, err := v.Float64()
		return err == nil && f != 0
	default:
		return true
	}
}
