package summary

import (
	"sort"
	"strings"

	"frontofhouse/internal/model"
)

const uncategorized = "otros"

type MenuSection struct {
	Category      string            `json:"category"`
	Subcategories []MenuSubsection `json:"subcategories"`
}

type MenuSubsection struct {
	Subcategory string          `json:"subcategory"`
	Products    []model.Product `json:"products"`
}

// Menu groups products by category and then subcategory, both sorted by
// name. Products keep their relative order inside a subsection.
func Menu(products []model.Product) []MenuSection {
	byCategory := map[string]map[string][]model.Product{}
	for _, p := range products {
		cat, sub := uncategorized, uncategorized
		if p.Category != nil && p.Category.Name != "" {
			cat = p.Category.Name
		}
		if p.Subcategory != nil && p.Subcategory.Name != "" {
			sub = p.Subcategory.Name
		}
		if byCategory[cat] == nil {
			byCategory[cat] = map[string][]model.Product{}
		}
		byCategory[cat][sub] = append(byCategory[cat][sub], p)
	}

	sections := make([]MenuSection, 0, len(byCategory))
	for _, cat := range sortedKeys(byCategory) {
		subs := byCategory[cat]
		section := MenuSection{Category: cat}
		for _, sub := range sortedKeys(subs) {
			section.Subcategories = append(section.Subcategories, MenuSubsection{
				Subcategory: sub,
				Products:    subs[sub],
			})
		}
		sections = append(sections, section)
	}
	return sections
}

func Search(products []model.Product, term string) []model.Product {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return products
	}
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) {
			out = append(out, p)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
