package scoring

// Band buckets a score for feedback wording.
type Band int

const (
	BandWeak Band = iota
	BandPartial
	BandStrong
)

func BandOf(score int) Band {
	switch {
	case score >= 80:
		return BandStrong
	case score >= 60:
		return BandPartial
	default:
		return BandWeak
	}
}
