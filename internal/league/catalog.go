package league

import (
	"fmt"
	"sync"
)

// League is a followable football competition
type League struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Category    string `json:"category"`
	PremiumOnly bool   `json:"premium_only"`
}

// Category groups leagues for menu layout
type Category struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Catalog is an immutable, ordered set of leagues indexed by id and category.
// It is safe for concurrent use because nothing mutates it after New returns.
type Catalog struct {
	leagues    []League
	byID       map[string]int
	categories []Category
	byCategory map[string][]int
}

// New builds a catalog from an ordered league table. Categories are listed in
// display order; every league must reference one of them.
func New(leagues []League, categories []Category) (*Catalog, error) {
	c := &Catalog{
		leagues:    make([]League, 0, len(leagues)),
		byID:       make(map[string]int, len(leagues)),
		categories: make([]Category, 0, len(categories)),
		byCategory: make(map[string][]int, len(categories)),
	}

	for _, cat := range categories {
		if cat.ID == "" {
			return nil, fmt.Errorf("category with empty id")
		}
		if _, dup := c.byCategory[cat.ID]; dup {
			return nil, fmt.Errorf("duplicate category id %q", cat.ID)
		}
		c.byCategory[cat.ID] = nil
		c.categories = append(c.categories, cat)
	}

	for _, lg := range leagues {
		if lg.ID == "" {
			return nil, fmt.Errorf("league with empty id")
		}
		if _, dup := c.byID[lg.ID]; dup {
			return nil, fmt.Errorf("duplicate league id %q", lg.ID)
		}
		if _, ok := c.byCategory[lg.Category]; !ok {
			return nil, fmt.Errorf("league %q references unknown category %q", lg.ID, lg.Category)
		}
		idx := len(c.leagues)
		c.leagues = append(c.leagues, lg)
		c.byID[lg.ID] = idx
		c.byCategory[lg.Category] = append(c.byCategory[lg.Category], idx)
	}

	return c, nil
}

// Get returns the league with the given id
func (c *Catalog) Get(id string) (League, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return League{}, false
	}
	return c.leagues[idx], true
}

// Contains reports whether id is in the catalog
func (c *Catalog) Contains(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// All returns every league in catalog order
func (c *Catalog) All() []League {
	out := make([]League, len(c.leagues))
	copy(out, c.leagues)
	return out
}

// AllInCategory returns the leagues of a category in catalog order.
// An unknown category yields an empty slice.
func (c *Catalog) AllInCategory(category string) []League {
	indexes := c.byCategory[category]
	out := make([]League, 0, len(indexes))
	for _, idx := range indexes {
		out = append(out, c.leagues[idx])
	}
	return out
}

// Categories returns the categories in display order
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Category returns the category with the given id
func (c *Catalog) Category(id string) (Category, bool) {
	for _, cat := range c.categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return Category{}, false
}

// FreeLeagues returns the leagues available on the free tier
func (c *Catalog) FreeLeagues() []League {
	var out []League
	for _, lg := range c.leagues {
		if !lg.PremiumOnly {
			out = append(out, lg)
		}
	}
	return out
}

// Len returns the number of leagues
func (c *Catalog) Len() int {
	return len(c.leagues)
}

// Category identifiers used by the default catalog
const (
	CategoryEuropeTop   = "europe_top"
	CategoryEuropeOther = "europe_other"
	CategoryAmericas    = "americas"
	CategoryAfricaAsia  = "africa_asia"
)

var defaultCategories = []Category{
	{ID: CategoryEuropeTop, DisplayName: "⭐ Europe Top 5"},
	{ID: CategoryEuropeOther, DisplayName: "🌍 Rest of Europe"},
	{ID: CategoryAmericas, DisplayName: "🌎 Americas"},
	{ID: CategoryAfricaAsia, DisplayName: "🌏 Africa & Asia"},
}

var defaultLeagues = []League{
	{ID: "lg_fr", DisplayName: "🇫🇷 Ligue 1", Category: CategoryEuropeTop},
	{ID: "lg_uk", DisplayName: "🏴󠁧󠁢󠁥󠁮󠁧󠁿 Premier League", Category: CategoryEuropeTop},
	{ID: "lg_es", DisplayName: "🇪🇸 La Liga", Category: CategoryEuropeTop, PremiumOnly: true},
	{ID: "lg_de", DisplayName: "🇩🇪 Bundesliga", Category: CategoryEuropeTop},
	{ID: "lg_it", DisplayName: "🇮🇹 Serie A", Category: CategoryEuropeTop, PremiumOnly: true},

	{ID: "lg_pt", DisplayName: "🇵🇹 Liga Portugal", Category: CategoryEuropeOther, PremiumOnly: true},
	{ID: "lg_nl", DisplayName: "🇳🇱 Eredivisie", Category: CategoryEuropeOther, PremiumOnly: true},
	{ID: "lg_be", DisplayName: "🇧🇪 Pro League", Category: CategoryEuropeOther, PremiumOnly: true},
	{ID: "lg_tr", DisplayName: "🇹🇷 Süper Lig", Category: CategoryEuropeOther, PremiumOnly: true},

	{ID: "lg_br", DisplayName: "🇧🇷 Brasileirão", Category: CategoryAmericas, PremiumOnly: true},
	{ID: "lg_ar", DisplayName: "🇦🇷 Liga Argentina", Category: CategoryAmericas, PremiumOnly: true},
	{ID: "lg_mx", DisplayName: "🇲🇽 Liga MX", Category: CategoryAmericas, PremiumOnly: true},
	{ID: "lg_us", DisplayName: "🇺🇸 MLS", Category: CategoryAmericas, PremiumOnly: true},

	{ID: "lg_sa", DisplayName: "🇸🇦 Saudi Pro League", Category: CategoryAfricaAsia, PremiumOnly: true},
	{ID: "lg_jp", DisplayName: "🇯🇵 J-League", Category: CategoryAfricaAsia, PremiumOnly: true},
	{ID: "lg_cn", DisplayName: "🇨🇳 Chinese Super League", Category: CategoryAfricaAsia, PremiumOnly: true},
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := New(defaultLeagues, defaultCategories)
	if err != nil {
		panic(fmt.Sprintf("league: invalid default catalog: %v", err))
	}
	return c
})

// Default returns the FootBrief league catalog. It is built once per process.
func Default() *Catalog {
	return defaultCatalog()
}
