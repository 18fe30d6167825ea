package domain

const (
	ProductGroupTypeField   = "productGroupType"
	DefaultProductGroupType = "default_type"
)

// Product is an opaque commercial component record. Every upstream field is kept
// as-is; ProductGroupTypeField is the only field added by the flattener.
type Product map[string]any

// GroupType returns the injected product group type, if any
func (p Product) GroupType() string {
	groupType, _ := p[ProductGroupTypeField].(string)
	return groupType
}
