package domain

import "fmt"

// Category is a leaf of the retailer's category tree
type Category struct {
	ID   string `json:"id"`   // Identifier used in the products URL (redirect target when redirected)
	Key  string `json:"key"`  // Aggregation key, e.g. "woman-dresses"
	Name string `json:"name"` // Display name
}

func (c Category) String() string {
	return fmt.Sprintf("Category (id=%s, key=%s, name=%s)", c.ID, c.Key, c.Name)
}
