package randomutil

import (
	"math/rand"
)

type RandomGenerator interface {
	GenerateInt63() int64
	GenerateFloat64() float64
}

type RandomNumberGenerator struct{}

func (RandomNumberGenerator) GenerateInt63() int64 {
	return rand.Int63()
}

// GenerateFloat64 returns a pseudo-random number in [0.0,1.0).
func (RandomNumberGenerator) GenerateFloat64() float64 {
	return rand.Float64()
}
