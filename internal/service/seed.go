package service

import (
	"math"
	"math/rand"
)

const (
	minSeed = 1
	maxSeed = 999999
)

// SeedFunc returns a generation seed
type SeedFunc func() float64

// RandomSeed draws a seed uniformly from [1, 999999)
func RandomSeed() float64 {
	v := rand.Float64()*(maxSeed-minSeed) + minSeed
	if v >= maxSeed {
		v = math.Nextafter(maxSeed, minSeed)
	}
	return v
}
