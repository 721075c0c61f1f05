package complexity_test

import (
	"sigem/bizerror"
	"sigem/domain/complexity"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Complexity", func() {
	Describe("TierOf", func() {
		It("should map boundary sums to the expected tiers", func() {
			Expect(complexity.TierOf(complexity.Ratings{Tde: 1, Nqt: 1, Grs: 1, Dec: 1})).To(Equal(complexity.TierLow))    // sum 4
			Expect(complexity.TierOf(complexity.Ratings{Tde: 2, Nqt: 2, Grs: 1, Dec: 1})).To(Equal(complexity.TierLow))    // sum 6
			Expect(complexity.TierOf(complexity.Ratings{Tde: 2, Nqt: 2, Grs: 2, Dec: 1})).To(Equal(complexity.TierMedium)) // sum 7
			Expect(complexity.TierOf(complexity.Ratings{Tde: 3, Nqt: 3, Grs: 2, Dec: 1})).To(Equal(complexity.TierMedium)) // sum 9
			Expect(complexity.TierOf(complexity.Ratings{Tde: 3, Nqt: 3, Grs: 2, Dec: 2})).To(Equal(complexity.TierHigh))   // sum 10
			Expect(complexity.TierOf(complexity.Ratings{Tde: 3, Nqt: 3, Grs: 3, Dec: 3})).To(Equal(complexity.TierHigh))   // sum 12
		})

		It("should be total over the whole rating domain", func() {
			for tde := 1; tde <= 3; tde++ {
				for nqt := 1; nqt <= 3; nqt++ {
					for grs := 1; grs <= 3; grs++ {
						for dec := 1; dec <= 3; dec++ {
							tier := complexity.TierOf(complexity.Ratings{Tde: tde, Nqt: nqt, Grs: grs, Dec: dec})
							Expect(tier).To(BeElementOf(complexity.TierLow, complexity.TierMedium, complexity.TierHigh))
						}
					}
				}
			}
		})
	})

	Describe("Validate", func() {
		It("should accept every rating within 1..3", func() {
			Expect(complexity.Ratings{Tde: 1, Nqt: 2, Grs: 3, Dec: 2}.Validate()).To(BeNil())
		})
		It("should reject ratings outside 1..3", func() {
			Expect(complexity.Ratings{Tde: 0, Nqt: 2, Grs: 2, Dec: 2}.Validate()).To(Equal(bizerror.ErrInvalidRating))
			Expect(complexity.Ratings{Tde: 2, Nqt: 4, Grs: 2, Dec: 2}.Validate()).To(Equal(bizerror.ErrInvalidRating))
			Expect(complexity.Ratings{Tde: 2, Nqt: 2, Grs: 2, Dec: -1}.Validate()).To(Equal(bizerror.ErrInvalidRating))
		})
	})

	Describe("Weight", func() {
		It("should weight tiers 1, 2, 3", func() {
			Expect(complexity.TierLow.Weight()).To(Equal(1))
			Expect(complexity.TierMedium.Weight()).To(Equal(2))
			Expect(complexity.TierHigh.Weight()).To(Equal(3))
		})
	})
})
