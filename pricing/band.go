package pricing

// Band is a coarse bucket of a 1..10 score used as a table key.
type Band string

const (
	BandLow      Band = "1-3"
	BandMid      Band = "4-6"
	BandHigh     Band = "7-8"
	BandTop      Band = "9-10"
	BandHighWide Band = "7-10"
)

const (
	MinScore = 1
	MaxScore = 10
)

// BandScheme selects how scores above 6 are bucketed.
type BandScheme int

const (
	// FourBands splits 7..10 into "7-8" and "9-10" (urgency, strategic value).
	FourBands BandScheme = iota
	// ThreeBands keeps 7..10 as a single "7-10" band (competition).
	ThreeBands
)

// Keys returns the band keys a table using this scheme may define.
func (s BandScheme) Keys() []Band {
	if s == ThreeBands {
		return []Band{BandLow, BandMid, BandHighWide}
	}
	return []Band{BandLow, BandMid, BandHigh, BandTop}
}

// Map returns the band for score. Every integer maps to exactly one band.
func (s BandScheme) Map(score int) Band {
	switch {
	case score <= 3:
		return BandLow
	case score <= 6:
		return BandMid
	case s == ThreeBands:
		return BandHighWide
	case score <= 8:
		return BandHigh
	default:
		return BandTop
	}
}

func (s BandScheme) accepts(key string) bool {
	for _, b := range s.Keys() {
		if string(b) == key {
			return true
		}
	}
	return false
}

// UrgencyBand maps an urgency score onto the four-band scheme.
func UrgencyBand(score int) Band { return FourBands.Map(score) }

// CompetitionBand maps a competition level onto the three-band scheme.
func CompetitionBand(score int) Band { return ThreeBands.Map(score) }

// StrategicBand maps a strategic value score onto the four-band scheme.
func StrategicBand(score int) Band { return FourBands.Map(score) }

// ValidScore reports whether score lies in [MinScore, MaxScore].
func ValidScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}
