package element

import (
	"regexp"
	"strconv"

	"github.com/turtacn/garnet-screening/pkg/errors"
)

// speciesPattern matches "<Symbol><magnitude><sign>": a capital letter and an
// optional lowercase letter, a charge magnitude without leading zeros, and a
// trailing sign.
var speciesPattern = regexp.MustCompile(`^([A-Z][a-z]?)(0|[1-9][0-9]*)([+-])$`)

// ParseSpecies splits a species label such as "Fe2+" or "O2-" into its
// element symbol and signed oxidation state.  The magnitude is mandatory, so
// "Na+" is malformed and must be written "Na1+".  Zero is only written with a
// plus sign ("Fe0+").  Malformed labels fail with ErrCodeMalformedSpecies.
func ParseSpecies(label string) (symbol string, oxidation int, err error) {
	m := speciesPattern.FindStringSubmatch(label)
	if m == nil {
		return "", 0, errors.New(errors.ErrCodeMalformedSpecies, "malformed species label").WithDetail(label)
	}
	n, convErr := strconv.Atoi(m[2])
	if convErr != nil {
		return "", 0, errors.Wrap(convErr, errors.ErrCodeMalformedSpecies, "charge magnitude out of range").WithDetail(label)
	}
	if m[3] == "-" {
		if n == 0 {
			return "", 0, errors.New(errors.ErrCodeMalformedSpecies, "zero charge must carry a plus sign").WithDetail(label)
		}
		n = -n
	}
	return m[1], n, nil
}

// UnparseSpecies renders symbol and oxidation state as a species label.
// UnparseSpecies(ParseSpecies(s)) == s for every well-formed s.
func UnparseSpecies(symbol string, oxidation int) string {
	sign := "+"
	if oxidation < 0 {
		sign = "-"
		oxidation = -oxidation
	}
	return symbol + strconv.Itoa(oxidation) + sign
}

// ParseSpeciesValue is ParseSpecies returning a Species with no coordination.
func ParseSpeciesValue(label string) (Species, error) {
	sym, ox, err := ParseSpecies(label)
	if err != nil {
		return Species{}, err
	}
	return Species{Symbol: sym, OxidationState: ox}, nil
}

//Personal.AI order the ending
