package rarity

import (
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Tier is an NFT rarity tier, ordered from rarest to most common.
type Tier string

const (
	Legendary Tier = "Legendary"
	Epic      Tier = "Epic"
	Rare      Tier = "Rare"
	Uncommon  Tier = "Uncommon"
	Common    Tier = "Common"
)

// Assignment is the rarity outcome of a single mint.
type Assignment struct {
	Tier     Tier    `json:"tier"`
	PriceSol float64 `json:"price_sol"`
	Color    string  `json:"color"`
}

type tierBand struct {
	tier     Tier
	chance   float64 // percentage points out of 100
	minPrice float64
	maxPrice float64
	color    string
}

// Drop table. Chances must sum to 100.
var tiers = []tierBand{
	{Legendary, 1, 7.01, 10.00, "Orange"},
	{Epic, 4, 4.51, 7.00, "Purple"},
	{Rare, 12, 1.51, 4.50, "Blue"},
	{Uncommon, 30, 0.51, 1.50, "Green"},
	{Common, 53, 0.01, 0.50, "Gray"},
}

var (
	defaultMu  sync.Mutex
	defaultRNG = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// Assign draws a rarity tier and a price within the tier's band.
// It never fails; if the roll somehow lands outside every band the
// assignment falls back to Common.
func Assign(rng *rand.Rand) Assignment {
	if rng == nil {
		defaultMu.Lock()
		defer defaultMu.Unlock()
		rng = defaultRNG
	}

	roll := rng.Float64() * 100
	cumulative := 0.0
	for _, band := range tiers {
		cumulative += band.chance
		if roll <= cumulative {
			return assignment(band, rng)
		}
	}

	return assignment(tiers[len(tiers)-1], rng)
}

func assignment(band tierBand, rng *rand.Rand) Assignment {
	price := band.minPrice + rng.Float64()*(band.maxPrice-band.minPrice)
	rounded, _ := decimal.NewFromFloat(price).Round(2).Float64()
	return Assignment{
		Tier:     band.tier,
		PriceSol: rounded,
		Color:    band.color,
	}
}

// PriceRange returns the inclusive price band for a tier. Unknown tiers
// report the Common band.
func PriceRange(tier Tier) (min, max float64) {
	for _, band := range tiers {
		if band.tier == tier {
			return band.minPrice, band.maxPrice
		}
	}
	last := tiers[len(tiers)-1]
	return last.minPrice, last.maxPrice
}
