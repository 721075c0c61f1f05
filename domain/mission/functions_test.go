package mission_test

import (
	"testing"

	"sigem/authority"
	"sigem/bizerror"
	"sigem/domain/complexity"
	"sigem/domain/mission"
	"sigem/testinfra"

	. "github.com/onsi/gomega"
)

func TestCreateFunction(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("only mission managers can create functions", func(t *testing.T) {
		f, err := mission.CreateFunction(&mission.FunctionCreation{MissionID: 100, Name: "Team Leader",
			Ratings: complexity.Ratings{Tde: 1, Nqt: 1, Grs: 1, Dec: 1}},
			testinfra.BuildSession(10, authority.RoleCommander))
		Expect(f).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("should reject out of range ratings", func(t *testing.T) {
		f, err := mission.CreateFunction(&mission.FunctionCreation{MissionID: 100, Name: "Team Leader",
			Ratings: complexity.Ratings{Tde: 0, Nqt: 1, Grs: 1, Dec: 1}},
			testinfra.BuildSession(10, authority.RoleOperations))
		Expect(f).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrInvalidRating))

		f, err = mission.CreateFunction(&mission.FunctionCreation{MissionID: 100, Name: "Team Leader",
			Ratings: complexity.Ratings{Tde: 1, Nqt: 1, Grs: 1, Dec: 4}},
			testinfra.BuildSession(10, authority.RoleOperations))
		Expect(f).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrInvalidRating))
	})

	t.Run("should create function with derived tier and reject duplicated name", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(10, authority.RoleOperations)
		m, err := mission.CreateMission(buildMission("Operation North"), s)
		Expect(err).To(BeNil())

		f, err := mission.CreateFunction(&mission.FunctionCreation{MissionID: m.ID, Name: "Team Leader",
			Ratings: complexity.Ratings{Tde: 3, Nqt: 3, Grs: 2, Dec: 2}}, s)
		Expect(err).To(BeNil())
		Expect(f.ComplexityTier).To(Equal(complexity.TierHigh))

		_, err = mission.CreateFunction(&mission.FunctionCreation{MissionID: m.ID, Name: "Team Leader",
			Ratings: complexity.Ratings{Tde: 1, Nqt: 1, Grs: 1, Dec: 1}}, s)
		Expect(err).To(Equal(bizerror.ErrFunctionExisted))

		// the same name is fine on another mission
		m2, err := mission.CreateMission(buildMission("Operation South"), s)
		Expect(err).To(BeNil())
		_, err = mission.CreateFunction(&mission.FunctionCreation{MissionID: m2.ID, Name: "Team Leader",
			Ratings: complexity.Ratings{Tde: 1, Nqt: 1, Grs: 1, Dec: 1}}, s)
		Expect(err).To(BeNil())
	})
}

func TestUpdateFunction(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("rating edits change the derived tier immediately", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(10, authority.RoleOperations)
		m, err := mission.CreateMission(buildMission("Operation North"), s)
		Expect(err).To(BeNil())
		f, err := mission.CreateFunction(&mission.FunctionCreation{MissionID: m.ID, Name: "Team Leader",
			Ratings: complexity.Ratings{Tde: 1, Nqt: 1, Grs: 1, Dec: 1}}, s)
		Expect(err).To(BeNil())
		Expect(f.ComplexityTier).To(Equal(complexity.TierLow))

		Expect(mission.UpdateFunction(f.ID, &mission.FunctionUpdating{Name: "Team Leader",
			Ratings: complexity.Ratings{Tde: 3, Nqt: 3, Grs: 3, Dec: 3}}, s)).To(BeNil())

		functions, err := mission.ListFunctions(&mission.FunctionQuery{MissionID: m.ID}, s)
		Expect(err).To(BeNil())
		Expect(len(functions)).To(Equal(1))
		Expect(functions[0].ComplexityTier).To(Equal(complexity.TierHigh))
	})

	t.Run("renaming onto an existing name is rejected", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(10, authority.RoleOperations)
		m, err := mission.CreateMission(buildMission("Operation North"), s)
		Expect(err).To(BeNil())
		_, err = mission.CreateFunction(&mission.FunctionCreation{MissionID: m.ID, Name: "Team Leader",
			Ratings: complexity.Ratings{Tde: 1, Nqt: 1, Grs: 1, Dec: 1}}, s)
		Expect(err).To(BeNil())
		f2, err := mission.CreateFunction(&mission.FunctionCreation{MissionID: m.ID, Name: "Driver",
			Ratings: complexity.Ratings{Tde: 1, Nqt: 1, Grs: 1, Dec: 1}}, s)
		Expect(err).To(BeNil())

		err = mission.UpdateFunction(f2.ID, &mission.FunctionUpdating{Name: "Team Leader",
			Ratings: complexity.Ratings{Tde: 1, Nqt: 1, Grs: 1, Dec: 1}}, s)
		Expect(err).To(Equal(bizerror.ErrFunctionExisted))
	})
}

func TestDeleteFunction(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should block deletion while assignments reference the function", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(10, authority.RoleOperations)
		m, err := mission.CreateMission(buildMission("Operation North"), s)
		Expect(err).To(BeNil())
		f, err := mission.CreateFunction(&mission.FunctionCreation{MissionID: m.ID, Name: "Team Leader",
			Ratings: complexity.Ratings{Tde: 1, Nqt: 1, Grs: 1, Dec: 1}}, s)
		Expect(err).To(BeNil())
		a, err := mission.CreateAssignment(&mission.AssignmentCreation{MissionID: m.ID, OfficerID: 500, FunctionID: f.ID}, s)
		Expect(err).To(BeNil())

		Expect(mission.DeleteFunction(f.ID, s)).To(Equal(bizerror.ErrFunctionReferenced))
		Expect(mission.DeleteAssignment(a.ID, s)).To(BeNil())
		Expect(mission.DeleteFunction(f.ID, s)).To(BeNil())
	})
}
