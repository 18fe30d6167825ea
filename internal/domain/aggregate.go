package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
)

// Aggregate maps category keys to their products and remembers insertion order.
// Setting an existing key replaces its products but keeps its position, so the
// serialized object lists keys in the order they were first installed.
type Aggregate struct {
	keys     []string
	products map[string][]Product
}

func NewAggregate() *Aggregate {
	return &Aggregate{
		products: make(map[string][]Product),
	}
}

// Set installs products under key and reports whether an earlier entry was replaced
func (a *Aggregate) Set(key string, products []Product) bool {
	if products == nil {
		products = []Product{}
	}

	_, replaced := a.products[key]
	if !replaced {
		a.keys = append(a.keys, key)
	}
	a.products[key] = products
	return replaced
}

func (a *Aggregate) Get(key string) ([]Product, bool) {
	products, ok := a.products[key]
	return products, ok
}

// Keys returns the keys in insertion order
func (a *Aggregate) Keys() []string {
	return append([]string(nil), a.keys...)
}

func (a *Aggregate) Len() int {
	return len(a.keys)
}

// ProductCount returns the number of products across all keys
func (a *Aggregate) ProductCount() int {
	return lo.SumBy(a.keys, func(key string) int {
		return len(a.products[key])
	})
}

func (a *Aggregate) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, key := range a.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, fmt.Errorf("failed to encode key %q: %w", key, err)
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')

		encodedProducts, err := json.Marshal(a.products[key])
		if err != nil {
			return nil, fmt.Errorf("failed to encode products for %q: %w", key, err)
		}
		buf.Write(encodedProducts)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (a *Aggregate) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	token, err := decoder.Token()
	if err != nil {
		return fmt.Errorf("failed to read aggregate: %w", err)
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("aggregate must be a JSON object, got %v", token)
	}

	decoded := NewAggregate()
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return fmt.Errorf("failed to read aggregate key: %w", err)
		}
		key, ok := token.(string)
		if !ok {
			return fmt.Errorf("unexpected aggregate key %v", token)
		}

		var products []Product
		if err := decoder.Decode(&products); err != nil {
			return fmt.Errorf("failed to decode products for %q: %w", key, err)
		}
		decoded.Set(key, products)
	}

	if _, err := decoder.Token(); err != nil {
		return fmt.Errorf("failed to close aggregate: %w", err)
	}

	*a = *decoded
	return nil
}
