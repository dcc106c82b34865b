package spatial_test

import (
	"testing"

	"github.com/crowdsift/crowdsift/internal/spatial"
	"github.com/stretchr/testify/assert"
)

func TestKeyReferenceVectors(t *testing.T) {
	t.Parallel()

	// Vectors from the original geohash reference material.
	assert.Equal(t, "ezs42", spatial.Key(-5.60302734375, 42.60498046875, 5))
	assert.Equal(t, "u4pruyd", spatial.Key(10.40744, 57.64911, 7))
	assert.Equal(t, "s000000", spatial.Key(0, 0, 7))
}

func TestKeyIsDeterministic(t *testing.T) {
	t.Parallel()

	first := spatial.Key(151.2093, -33.8688, spatial.DefaultPrecision)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, spatial.Key(151.2093, -33.8688, spatial.DefaultPrecision))
	}
	assert.Len(t, first, spatial.DefaultPrecision)
}

func TestKeyDefaultsPrecision(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		spatial.Key(10.40744, 57.64911, spatial.DefaultPrecision),
		spatial.Key(10.40744, 57.64911, 0),
	)
}

func TestKeyPrecisionIsHierarchical(t *testing.T) {
	t.Parallel()

	coarse := spatial.Key(10.40744, 57.64911, 4)
	fine := spatial.Key(10.40744, 57.64911, 9)
	assert.Equal(t, coarse, fine[:4])
}
