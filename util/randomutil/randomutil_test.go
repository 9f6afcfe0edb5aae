package randomutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomNumberGenerator(t *testing.T) {
	var generator RandomGenerator = RandomNumberGenerator{}

	for i := 0; i < 100; i++ {
		f := generator.GenerateFloat64()
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)
		assert.GreaterOrEqual(t, generator.GenerateInt63(), int64(0))
	}
}
