package mission_test

import (
	"testing"

	"sigem/authority"
	"sigem/bizerror"
	"sigem/domain/complexity"
	"sigem/domain/mission"
	"sigem/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func TestCreateAssignment(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("only assignment managers can assign", func(t *testing.T) {
		a, err := mission.CreateAssignment(&mission.AssignmentCreation{MissionID: 1, OfficerID: 2, FunctionID: 3},
			testinfra.BuildSession(10, authority.RoleCommander))
		Expect(a).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("an omitted reference never matches an arbitrary row", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(10, authority.RoleOperations)
		m, err := mission.CreateMission(buildMission("Operation North"), s)
		Expect(err).To(BeNil())
		f, err := mission.CreateFunction(&mission.FunctionCreation{MissionID: m.ID, Name: "Driver",
			Ratings: complexity.Ratings{Tde: 1, Nqt: 1, Grs: 1, Dec: 1}}, s)
		Expect(err).To(BeNil())

		_, err = mission.CreateAssignment(&mission.AssignmentCreation{MissionID: m.ID, OfficerID: 500}, s)
		Expect(err).ToNot(BeNil())
		_, badParam := err.(*bizerror.ErrBadParam)
		Expect(badParam).To(BeTrue())

		_, err = mission.CreateAssignment(&mission.AssignmentCreation{OfficerID: 500, FunctionID: f.ID}, s)
		Expect(err).ToNot(BeNil())
		_, badParam = err.(*bizerror.ErrBadParam)
		Expect(badParam).To(BeTrue())

		assignments, err := mission.QueryAssignments(&mission.AssignmentQuery{OfficerID: types.ID(500)}, s)
		Expect(err).To(BeNil())
		Expect(assignments).To(BeEmpty())
	})

	t.Run("function must belong to the stated mission", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(10, authority.RoleOperations)
		m1, err := mission.CreateMission(buildMission("Operation North"), s)
		Expect(err).To(BeNil())
		m2, err := mission.CreateMission(buildMission("Operation South"), s)
		Expect(err).To(BeNil())
		f, err := mission.CreateFunction(&mission.FunctionCreation{MissionID: m1.ID, Name: "Team Leader",
			Ratings: complexity.Ratings{Tde: 1, Nqt: 1, Grs: 1, Dec: 1}}, s)
		Expect(err).To(BeNil())

		_, err = mission.CreateAssignment(&mission.AssignmentCreation{MissionID: m2.ID, OfficerID: 500, FunctionID: f.ID}, s)
		Expect(err).To(Equal(bizerror.ErrFunctionMismatch))
	})

	t.Run("the mission officer function triple is unique", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(10, authority.RoleOperations)
		m, err := mission.CreateMission(buildMission("Operation North"), s)
		Expect(err).To(BeNil())
		f1, err := mission.CreateFunction(&mission.FunctionCreation{MissionID: m.ID, Name: "Team Leader",
			Ratings: complexity.Ratings{Tde: 1, Nqt: 1, Grs: 1, Dec: 1}}, s)
		Expect(err).To(BeNil())
		f2, err := mission.CreateFunction(&mission.FunctionCreation{MissionID: m.ID, Name: "Driver",
			Ratings: complexity.Ratings{Tde: 1, Nqt: 1, Grs: 1, Dec: 1}}, s)
		Expect(err).To(BeNil())

		a, err := mission.CreateAssignment(&mission.AssignmentCreation{MissionID: m.ID, OfficerID: 500, FunctionID: f1.ID}, s)
		Expect(err).To(BeNil())
		Expect(a.Status).To(Equal(mission.AssignmentStatusApproved))

		_, err = mission.CreateAssignment(&mission.AssignmentCreation{MissionID: m.ID, OfficerID: 500, FunctionID: f1.ID}, s)
		Expect(err).To(Equal(bizerror.ErrAssignmentExisted))

		// a different function on the same mission is allowed
		_, err = mission.CreateAssignment(&mission.AssignmentCreation{MissionID: m.ID, OfficerID: 500, FunctionID: f2.ID}, s)
		Expect(err).To(BeNil())

		assignments, err := mission.QueryAssignments(&mission.AssignmentQuery{OfficerID: types.ID(500)}, s)
		Expect(err).To(BeNil())
		Expect(len(assignments)).To(Equal(2))
	})
}

func TestQueryAssignments(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should filter by mission and officer", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(10, authority.RoleOperations)
		m1, _ := mission.CreateMission(buildMission("Operation North"), s)
		m2, _ := mission.CreateMission(buildMission("Operation South"), s)
		f1, err := mission.CreateFunction(&mission.FunctionCreation{MissionID: m1.ID, Name: "Team Leader",
			Ratings: complexity.Ratings{Tde: 1, Nqt: 1, Grs: 1, Dec: 1}}, s)
		Expect(err).To(BeNil())
		f2, err := mission.CreateFunction(&mission.FunctionCreation{MissionID: m2.ID, Name: "Driver",
			Ratings: complexity.Ratings{Tde: 1, Nqt: 1, Grs: 1, Dec: 1}}, s)
		Expect(err).To(BeNil())

		_, err = mission.CreateAssignment(&mission.AssignmentCreation{MissionID: m1.ID, OfficerID: 500, FunctionID: f1.ID}, s)
		Expect(err).To(BeNil())
		_, err = mission.CreateAssignment(&mission.AssignmentCreation{MissionID: m2.ID, OfficerID: 501, FunctionID: f2.ID}, s)
		Expect(err).To(BeNil())

		assignments, err := mission.QueryAssignments(&mission.AssignmentQuery{MissionID: m1.ID}, s)
		Expect(err).To(BeNil())
		Expect(len(assignments)).To(Equal(1))
		Expect(assignments[0].OfficerID).To(Equal(types.ID(500)))

		assignments, err = mission.QueryAssignments(&mission.AssignmentQuery{OfficerID: types.ID(501)}, s)
		Expect(err).To(BeNil())
		Expect(len(assignments)).To(Equal(1))
		Expect(assignments[0].MissionID).To(Equal(m2.ID))
	})
}
