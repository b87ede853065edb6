// Package catalog holds the static village reference data. Villages are
// immutable and loaded once at process start; the catalog only does lookup.
package catalog

import (
	"errors"
	"fmt"
)

// ErrUnknownVillage is returned for village IDs not in the catalog.
var ErrUnknownVillage = errors.New("unknown village")

// Village is one monitored rural water-source community.
type Village struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Population int     `json:"population"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Region     string  `json:"region"`
}

// Catalog is an immutable village lookup table.
type Catalog struct {
	byID  map[string]Village
	order []string
}

// New builds a catalog from the given villages.
func New(villages []Village) *Catalog {
	c := &Catalog{
		byID:  make(map[string]Village, len(villages)),
		order: make([]string, 0, len(villages)),
	}
	for _, v := range villages {
		if _, dup := c.byID[v.ID]; dup {
			continue
		}
		c.byID[v.ID] = v
		c.order = append(c.order, v.ID)
	}
	return c
}

// Get returns the village for an ID or ErrUnknownVillage.
func (c *Catalog) Get(id string) (Village, error) {
	v, ok := c.byID[id]
	if !ok {
		return Village{}, fmt.Errorf("%w: %s", ErrUnknownVillage, id)
	}
	return v, nil
}

// All returns every village in insertion order.
func (c *Catalog) All() []Village {
	out := make([]Village, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Len reports the number of villages.
func (c *Catalog) Len() int { return len(c.byID) }

// DefaultVillages is the monitored deployment footprint: fifteen villages
// across two regions.
func DefaultVillages() []Village {
	return []Village{
		{ID: "MH_SHP", Name: "Shirpur", Population: 28000, Latitude: 21.3500, Longitude: 74.8800, Region: "Maharashtra"},
		{ID: "MH_DHA", Name: "Dharangaon", Population: 15000, Latitude: 21.0167, Longitude: 75.2667, Region: "Maharashtra"},
		{ID: "MH_SHA", Name: "Shahada", Population: 22000, Latitude: 21.5452, Longitude: 74.4695, Region: "Maharashtra"},
		{ID: "MH_RAV", Name: "Raver", Population: 18000, Latitude: 21.2456, Longitude: 76.0423, Region: "Maharashtra"},
		{ID: "MH_YAW", Name: "Yawal", Population: 12000, Latitude: 21.1667, Longitude: 75.7000, Region: "Maharashtra"},
		{ID: "MH_CHO", Name: "Chopda", Population: 25000, Latitude: 21.2500, Longitude: 75.3000, Region: "Maharashtra"},
		{ID: "MH_AMA", Name: "Amalner", Population: 31000, Latitude: 21.0500, Longitude: 75.0667, Region: "Maharashtra"},
		{ID: "MH_PAR", Name: "Parola", Population: 14000, Latitude: 20.8833, Longitude: 75.1167, Region: "Maharashtra"},
		{ID: "MH_PAC", Name: "Pachora", Population: 19000, Latitude: 20.6572, Longitude: 75.3444, Region: "Maharashtra"},
		{ID: "MH_CHA", Name: "Chalisgaon", Population: 42000, Latitude: 20.4619, Longitude: 75.0167, Region: "Maharashtra"},
		{ID: "UP_BAH", Name: "Bahraich", Population: 55000, Latitude: 27.5700, Longitude: 81.5900, Region: "UP"},
		{ID: "UP_BAL", Name: "Balrampur", Population: 38000, Latitude: 27.4300, Longitude: 82.1800, Region: "UP"},
		{ID: "UP_SHR", Name: "Shravasti", Population: 21000, Latitude: 27.5200, Longitude: 81.8700, Region: "UP"},
		{ID: "UP_LAK", Name: "Lakhimpur", Population: 47000, Latitude: 27.9500, Longitude: 80.7800, Region: "UP"},
		{ID: "UP_GON", Name: "Gonda", Population: 62000, Latitude: 27.1300, Longitude: 81.9700, Region: "UP"},
	}
}

// Default returns the catalog for the default deployment footprint.
func Default() *Catalog {
	return New(DefaultVillages())
}
