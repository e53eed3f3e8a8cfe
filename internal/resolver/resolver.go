// Package resolver maps scanned codes and prescription free text to catalog
// items. Matching is deliberately permissive; ambiguity is always settled by
// taking the first match in catalog order.
package resolver

import (
	"fmt"
	"strings"

	"medeasy/pos/domain"
	"medeasy/pos/internal/cart"
)

// Match is a resolved catalog item and the variation to add. VariationIndex
// is always the default variation for code matches.
type Match struct {
	Item           domain.CatalogItem
	VariationIndex int
}

type Resolver struct {
	items []domain.CatalogItem
}

// New builds a resolver over a catalog snapshot. The order of items is the
// tie-break order.
func New(items []domain.CatalogItem) *Resolver {
	return &Resolver{items: items}
}

// ResolveCode matches a scanned or typed code. Passes run in order and the
// first hit wins: SKU equal (case-insensitive), SKU contains, item name
// contains. Whichever pass hits, the item's default (first) variation is the
// one to add.
func (r *Resolver) ResolveCode(code string) (Match, error) {
	needle := normalize(code)
	if needle == "" {
		return Match{}, fmt.Errorf("%w: empty code", cart.ErrItemNotFound)
	}

	for _, item := range r.items {
		for _, v := range item.Variations {
			if normalize(v.SKU) == needle {
				return Match{Item: item}, nil
			}
		}
	}
	for _, item := range r.items {
		for _, v := range item.Variations {
			if strings.Contains(normalize(v.SKU), needle) {
				return Match{Item: item}, nil
			}
		}
	}
	for _, item := range r.items {
		if len(item.Variations) > 0 && strings.Contains(normalize(item.Name), needle) {
			return Match{Item: item}, nil
		}
	}
	return Match{}, fmt.Errorf("%w: %q", cart.ErrItemNotFound, code)
}

// ResolveName matches prescription text against item names. An item whose
// name equals or contains the text matches; equality does not outrank an
// earlier containment match.
func (r *Resolver) ResolveName(name string) (domain.CatalogItem, error) {
	needle := normalize(name)
	if needle == "" {
		return domain.CatalogItem{}, fmt.Errorf("%w: empty medicine name", cart.ErrItemNotFound)
	}
	for _, item := range r.items {
		if strings.Contains(normalize(item.Name), needle) {
			return item, nil
		}
	}
	return domain.CatalogItem{}, fmt.Errorf("%w: %q", cart.ErrItemNotFound, name)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
