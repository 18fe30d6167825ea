package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"zara/catalog/internal/domain"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

const maxErrorSummaryLength = 200

type catalogParser struct{}

func newCatalogParser() *catalogParser {
	return &catalogParser{}
}

// ParseCategories decodes a categories document and returns its leaf categories
func (p *catalogParser) ParseCategories(body []byte) ([]domain.Category, error) {
	var doc domain.CategoriesDocument
	if err := decodeJSON(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode categories document: %w", err)
	}

	categories := make([]domain.Category, 0)
	FlattenCategories(doc.Roots(), &categories)

	log.Debugf("Flattened category tree into %d leaf categories", len(categories))
	return categories, nil
}

// ParseProducts decodes a products document and returns its commercial components
func (p *catalogParser) ParseProducts(body []byte) ([]domain.Product, error) {
	var doc domain.ProductsDocument
	if err := decodeJSON(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode products document: %w", err)
	}

	return FlattenProducts(&doc), nil
}

// FlattenCategories appends one Category per leaf reachable from nodes to out,
// depth-first and left to right. Redirected leaves resolve to their redirect target id.
func FlattenCategories(nodes []domain.CategoryNode, out *[]domain.Category) {
	if len(nodes) == 0 {
		return
	}

	for _, node := range nodes {
		if node.HasSubcategories {
			FlattenCategories(node.Subcategories, out)
			continue
		}

		id := node.ID
		if node.IsRedirected {
			id = node.RedirectCategoryID
		}

		*out = append(*out, domain.Category{
			ID:   id.String(),
			Key:  node.Key.String(),
			Name: node.Name.String(),
		})
	}
}

// FlattenProducts unrolls groups -> elements -> commercial components, tagging each
// component with its group's type.
func FlattenProducts(doc *domain.ProductsDocument) []domain.Product {
	products := make([]domain.Product, 0)

	for _, group := range doc.ProductGroups {
		groupType := group.GroupType()
		for _, element := range group.Elements {
			for _, component := range element.CommercialComponents {
				if component == nil {
					continue
				}
				component[domain.ProductGroupTypeField] = groupType
				products = append(products, component)
			}
		}
	}

	return products
}

func decodeJSON(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return domain.ErrEmptyResponse
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	return decoder.Decode(v)
}

// summarizeErrorBody turns an error response body into a short single-line message.
// Storefront block pages are HTML, so their title or visible text is used.
func summarizeErrorBody(body string) string {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return "<empty body>"
	}

	if strings.HasPrefix(trimmed, "<") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed))
		if err == nil {
			if title := collapseSpaces(doc.Find("title").First().Text()); title != "" {
				return truncate(title)
			}
			if text := collapseSpaces(doc.Find("body").Text()); text != "" {
				return truncate(text)
			}
		}
	}

	return truncate(collapseSpaces(trimmed))
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxErrorSummaryLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxErrorSummaryLength]) + "…"
}
