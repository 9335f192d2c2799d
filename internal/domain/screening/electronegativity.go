package screening

// PaulingTest reports whether an oxidation assignment respects electronegativity
// ordering: every positively charged site must be no more electronegative
// than every negatively charged site (plus threshold).  Sites with oxidation
// state zero are ignored.  An assignment with no cations or no anions passes
// vacuously.  Mismatched lengths fail.
func PaulingTest(assignment []int, electronegativities []float64, threshold float64) bool {
	if len(assignment) != len(electronegativities) {
		return false
	}
	maxCation, minAnion := 0.0, 0.0
	haveCation, haveAnion := false, false
	for i, q := range assignment {
		en := electronegativities[i]
		switch {
		case q > 0:
			if !haveCation || en > maxCation {
				maxCation = en
			}
			haveCation = true
		case q < 0:
			if !haveAnion || en < minAnion {
				minAnion = en
			}
			haveAnion = true
		}
	}
	if !haveCation || !haveAnion {
		return true
	}
	return maxCation <= minAnion+threshold
}

//Personal.AI order the ending
