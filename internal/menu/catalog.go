// Package menu loads the static menu the café sells from YAML configuration.
package menu

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jcmexdev/cozy-cafe/internal/ordering/domain"
)

//go:embed default_menu.yaml
var defaultMenu []byte

type fileItem struct {
	ID          int    `yaml:"id"`
	Name        string `yaml:"name"`
	Price       int    `yaml:"price"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
	Stock       int    `yaml:"stock"`
}

type file struct {
	Items []fileItem `yaml:"items"`
}

// Catalog is the ordered, read-only menu plus the opening stock of each item.
type Catalog struct {
	items        []domain.MenuItem
	byID         map[int]int
	openingStock map[int]int
}

// Default returns the built-in menu.
func Default() (*Catalog, error) {
	return Parse(defaultMenu)
}

// Load reads a menu file. An empty path selects the built-in menu.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("menu: read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML menu data.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("menu: decode: %w", err)
	}
	if len(f.Items) == 0 {
		return nil, errors.New("menu: no items")
	}

	c := &Catalog{
		items:        make([]domain.MenuItem, 0, len(f.Items)),
		byID:         make(map[int]int, len(f.Items)),
		openingStock: make(map[int]int, len(f.Items)),
	}
	for i, it := range f.Items {
		switch {
		case it.ID <= 0:
			return nil, fmt.Errorf("menu: item %d: id must be positive", i)
		case it.Name == "":
			return nil, fmt.Errorf("menu: item %d: name is required", it.ID)
		case it.Price < 0:
			return nil, fmt.Errorf("menu: item %d: negative price", it.ID)
		case it.Stock < 0:
			return nil, fmt.Errorf("menu: item %d: negative stock", it.ID)
		}
		if _, dup := c.byID[it.ID]; dup {
			return nil, fmt.Errorf("menu: duplicate id %d", it.ID)
		}
		c.byID[it.ID] = len(c.items)
		c.openingStock[it.ID] = it.Stock
		c.items = append(c.items, domain.MenuItem{
			ID:          it.ID,
			Name:        it.Name,
			BasePrice:   it.Price,
			Description: it.Description,
			ImageRef:    it.Image,
		})
	}
	return c, nil
}

// Items returns the menu in configured order.
func (c *Catalog) Items() []domain.MenuItem {
	return append([]domain.MenuItem(nil), c.items...)
}

// Item looks up a menu item by id.
func (c *Catalog) Item(id int) (domain.MenuItem, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.MenuItem{}, false
	}
	return c.items[i], true
}

// OpeningStock returns the configured starting stock per menu item id.
func (c *Catalog) OpeningStock() map[int]int {
	out := make(map[int]int, len(c.openingStock))
	for id, n := range c.openingStock {
		out[id] = n
	}
	return out
}
