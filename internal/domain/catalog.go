package domain

import (
	"bytes"
	"encoding/json"
)

// LooseString keeps the textual form of any JSON scalar. Strings are unquoted,
// numbers keep their literal digits and other values keep their compact JSON text.
// JSON null leaves the value empty.
type LooseString string

func (s *LooseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	*s = LooseString(jsonText(data))
	return nil
}

func (s LooseString) String() string {
	return string(s)
}

// LooseBool follows JSON truthiness: false, null, 0, "", [] and {} are false,
// everything else is true.
type LooseBool bool

func (b *LooseBool) UnmarshalJSON(data []byte) error {
	var value any
	if err := decodeWithNumbers(data, &value); err != nil {
		*b = false
		return nil
	}

	switch v := value.(type) {
	case bool:
		*b = LooseBool(v)
	case json.Number:
		f, err := v.Float64()
		*b = LooseBool(err != nil || f != 0)
	case string:
		*b = v != ""
	case []any:
		*b = len(v) > 0
	case map[string]any:
		*b = len(v) > 0
	default:
		*b = false
	}
	return nil
}

// LooseList decodes a JSON array one element at a time. Null elements and elements
// that do not fit T are skipped, and any value other than an array decodes as an empty list.
type LooseList[T any] []T

func (l *LooseList[T]) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*l = LooseList[T]{}
		return nil
	}

	items := make(LooseList[T], 0, len(raw))
	for _, item := range raw {
		if bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
			continue
		}
		var value T
		if err := decodeWithNumbers(item, &value); err != nil {
			continue
		}
		items = append(items, value)
	}
	*l = items
	return nil
}

// CategoryNode is a single node of the categories endpoint tree
type CategoryNode struct {
	ID                 LooseString             `json:"id"`
	Key                LooseString             `json:"key"`
	Name               LooseString             `json:"name"`
	HasSubcategories   LooseBool               `json:"hasSubcategories"`
	Subcategories      LooseList[CategoryNode] `json:"subcategories"`
	IsRedirected       LooseBool               `json:"isRedirected"`
	RedirectCategoryID LooseString             `json:"redirectCategoryId"`
}

// CategoriesDocument is the body returned by the categories endpoint.
// Depending on the storefront variant the tree lives under "categories" or "subcategories".
type CategoriesDocument struct {
	Categories    *LooseList[CategoryNode] `json:"categories"`
	Subcategories LooseList[CategoryNode]  `json:"subcategories"`
}

// Roots returns the top level of the category tree
func (d *CategoriesDocument) Roots() []CategoryNode {
	if d.Categories != nil {
		return *d.Categories
	}
	return d.Subcategories
}

// ProductsDocument is the body returned by the products-by-category endpoint
type ProductsDocument struct {
	ProductGroups LooseList[ProductGroup] `json:"productGroups"`
}

type ProductGroup struct {
	Type     json.RawMessage           `json:"type"`
	Elements LooseList[ProductElement] `json:"elements"`
}

// GroupType returns the group's type label or DefaultProductGroupType when none is set.
// Non-string labels are rendered as their JSON text.
func (g ProductGroup) GroupType() string {
	raw := bytes.TrimSpace(g.Type)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return DefaultProductGroupType
	}
	return jsonText(raw)
}

// ProductElement holds the commercial components of one element. Null and
// non-object components are dropped while decoding.
type ProductElement struct {
	CommercialComponents LooseList[Product] `json:"commercialComponents"`
}

func decodeWithNumbers(data []byte, v any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	return decoder.Decode(v)
}

// jsonText unquotes JSON strings and compacts every other value
func jsonText(data []byte) string {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		return str
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return string(data)
	}
	return compact.String()
}
