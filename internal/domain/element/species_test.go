package element_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/garnet-screening/internal/domain/element"
	"github.com/turtacn/garnet-screening/pkg/errors"
)

func TestParseSpecies(t *testing.T) {
	cases := []struct {
		label string
		sym   string
		ox    int
	}{
		{"Fe2+", "Fe", 2},
		{"O2-", "O", -2},
		{"Li1+", "Li", 1},
		{"Te6+", "Te", 6},
		{"Fe0+", "Fe", 0},
		{"N3-", "N", -3},
		{"Xx12+", "Xx", 12},
	}
	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			sym, ox, err := element.ParseSpecies(tc.label)
			require.NoError(t, err)
			assert.Equal(t, tc.sym, sym)
			assert.Equal(t, tc.ox, ox)
		})
	}
}

func TestParseSpecies_Malformed(t *testing.T) {
	for _, label := range []string{"", "Fe", "Fe2", "fe2+", "Fe+", "Na+", "Fe02+", "Fe0-", "FEe2+", "2+", "Fe2++", " Fe2+", "Fe-2"} {
		t.Run(label, func(t *testing.T) {
			_, _, err := element.ParseSpecies(label)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedSpecies))
		})
	}
}

func TestUnparseSpecies(t *testing.T) {
	assert.Equal(t, "Fe2+", element.UnparseSpecies("Fe", 2))
	assert.Equal(t, "O2-", element.UnparseSpecies("O", -2))
	assert.Equal(t, "Fe0+", element.UnparseSpecies("Fe", 0))
	assert.Equal(t, "Y3+", element.Species{Symbol: "Y", OxidationState: 3}.Label())
}

func TestSpeciesLabel_RoundTrip(t *testing.T) {
	for _, label := range []string{"Fe2+", "O2-", "Li1+", "Te6+", "W6+", "Fe0+", "Cl1-", "La3+", "Sb5+"} {
		sym, ox, err := element.ParseSpecies(label)
		require.NoError(t, err)
		assert.Equal(t, label, element.UnparseSpecies(sym, ox))
	}

	for ox := -8; ox <= 8; ox++ {
		label := element.UnparseSpecies("Mn", ox)
		sym, got, err := element.ParseSpecies(label)
		require.NoError(t, err, label)
		assert.Equal(t, "Mn", sym)
		assert.Equal(t, ox, got)
	}
}

func TestParseSpeciesValue(t *testing.T) {
	sp, err := element.ParseSpeciesValue("Y3+")
	require.NoError(t, err)
	assert.Equal(t, element.Species{Symbol: "Y", OxidationState: 3}, sp)

	_, err = element.ParseSpeciesValue("Y3")
	assert.Error(t, err)
}
