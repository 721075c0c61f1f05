package complexity

import "sigem/bizerror"

// Tier is the complexity band of a function, derived from its four ratings.
type Tier string

const (
	TierLow    Tier = "LOW"
	TierMedium Tier = "MEDIUM"
	TierHigh   Tier = "HIGH"
)

const (
	RatingMin = 1
	RatingMax = 3
)

// Ratings are the four ordinal criteria of a function:
// Tde: required time commitment, Nqt: required technical qualification,
// Grs: degree of responsibility, Dec: scale of the commanded workforce.
type Ratings struct {
	Tde int `json:"tde" binding:"required,min=1,max=3"`
	Nqt int `json:"nqt" binding:"required,min=1,max=3"`
	Grs int `json:"grs" binding:"required,min=1,max=3"`
	Dec int `json:"dec" binding:"required,min=1,max=3"`
}

func (r Ratings) Validate() error {
	for _, v := range []int{r.Tde, r.Nqt, r.Grs, r.Dec} {
		if v < RatingMin || v > RatingMax {
			return bizerror.ErrInvalidRating
		}
	}
	return nil
}

func (r Ratings) Sum() int {
	return r.Tde + r.Nqt + r.Grs + r.Dec
}

// TierOf maps the ratings sum to a tier. The sum of four ratings in [1,3] is
// always in [4,12], so the mapping is total: 4-6 LOW, 7-9 MEDIUM, 10-12 HIGH.
func TierOf(r Ratings) Tier {
	sum := r.Sum()
	switch {
	case sum <= 6:
		return TierLow
	case sum <= 9:
		return TierMedium
	default:
		return TierHigh
	}
}

// Weight is the workload weighting of the tier: LOW=1, MEDIUM=2, HIGH=3.
func (t Tier) Weight() int {
	switch t {
	case TierLow:
		return 1
	case TierMedium:
		return 2
	default:
		return 3
	}
}
