// Package analysis interprets spectral/feature-layer data into musical
// descriptors: tempo, beats, key, chords, structural boundaries, plus
// rhythm/timbre/dynamics summaries, unified under the MusicAnalyzer facade.
package analysis

// Key profile weights (Krumhansl-Schmuckler and Temperley variants),
// indexed C, C#, D, ... B.
var (
	ksMajorProfile = [12]float64{
		6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88,
	}
	ksMinorProfile = [12]float64{
		6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17,
	}
	temperleyMajorProfile = [12]float64{
		5.0, 2.0, 3.5, 2.0, 4.5, 4.0, 2.0, 4.5, 2.0, 3.5, 1.5, 4.0,
	}
	temperleyMinorProfile = [12]float64{
		5.0, 2.0, 3.5, 4.5, 2.0, 4.0, 2.0, 4.5, 3.5, 2.0, 1.5, 4.0,
	}
)

// KeyProfileSet selects which canonical profile family to correlate
// against.
type KeyProfileSet int

const (
	KrumhanslSchmuckler KeyProfileSet = iota
	Temperley
)

func profileFor(set KeyProfileSet, minor bool) [12]float64 {
	switch {
	case set == Temperley && minor:
		return temperleyMinorProfile
	case set == Temperley && !minor:
		return temperleyMajorProfile
	case minor:
		return ksMinorProfile
	default:
		return ksMajorProfile
	}
}

// rotateProfile rotates a canonical (root=0/C) profile so index 0
// corresponds to the given root.
func rotateProfile(profile [12]float64, root int) [12]float64 {
	var out [12]float64
	for i := 0; i < 12; i++ {
		out[(i+root)%12] = profile[i]
	}
	return out
}

// KeyBoosts multiplies the boosted degrees (tonic, third, fifth,
// seventh) by their given factors before correlation, applied to the
// canonical (tonic at index 0) profile before it is rotated to a root.
type KeyBoosts struct {
	Tonic, Third, Fifth, Seventh float64
}

// applyBoosts scales a canonical major/minor profile's characteristic
// degrees by the configured boost factors (1.0 disables a boost).
func applyBoosts(profile [12]float64, minor bool, boosts KeyBoosts) [12]float64 {
	third := 4
	if minor {
		third = 3
	}
	out := profile
	if boosts.Tonic > 0 {
		out[0] *= boosts.Tonic
	}
	if boosts.Third > 0 {
		out[third] *= boosts.Third
	}
	if boosts.Fifth > 0 {
		out[7] *= boosts.Fifth
	}
	if boosts.Seventh > 0 {
		degree := 10
		if !minor {
			degree = 11
		}
		out[degree] *= boosts.Seventh
	}
	return out
}
