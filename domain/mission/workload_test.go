package mission_test

import (
	"context"
	"testing"

	"sigem/authority"
	"sigem/bizerror"
	"sigem/domain/complexity"
	"sigem/domain/mission"
	"sigem/domain/officer"
	"sigem/domain/unit"
	"sigem/persistence"
	"sigem/testinfra"

	. "github.com/onsi/gomega"
)

func TestOfficerWorkload(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("officers may only read their own workload without dashboard permission", func(t *testing.T) {
		w, err := mission.OfficerWorkload(500, testinfra.BuildOfficerSession(10, 501, authority.RoleOfficer))
		Expect(w).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("an officer without assignments has an all-zero workload", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		w, err := mission.OfficerWorkload(500, testinfra.BuildSession(10, authority.RoleOperations))
		Expect(err).To(BeNil())
		Expect(*w).To(Equal(mission.Workload{}))
	})

	t.Run("workload buckets by tier and only counts ongoing missions", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(10, authority.RoleOperations)
		m, err := mission.CreateMission(buildMission("Operation North"), s)
		Expect(err).To(BeNil())

		low1, err := mission.CreateFunction(&mission.FunctionCreation{MissionID: m.ID, Name: "Driver",
			Ratings: complexity.Ratings{Tde: 1, Nqt: 1, Grs: 1, Dec: 1}}, s)
		Expect(err).To(BeNil())
		low2, err := mission.CreateFunction(&mission.FunctionCreation{MissionID: m.ID, Name: "Radio Operator",
			Ratings: complexity.Ratings{Tde: 1, Nqt: 2, Grs: 1, Dec: 1}}, s)
		Expect(err).To(BeNil())
		high, err := mission.CreateFunction(&mission.FunctionCreation{MissionID: m.ID, Name: "Team Leader",
			Ratings: complexity.Ratings{Tde: 3, Nqt: 3, Grs: 2, Dec: 2}}, s)
		Expect(err).To(BeNil())

		for _, f := range []*mission.FunctionDetail{low1, low2, high} {
			_, err = mission.CreateAssignment(&mission.AssignmentCreation{MissionID: m.ID, OfficerID: 500, FunctionID: f.ID}, s)
			Expect(err).To(BeNil())
		}

		// a planned mission's assignment does not count
		planned := buildMission("Operation Later")
		planned.Status = mission.StatusPlanned
		mp, err := mission.CreateMission(planned, s)
		Expect(err).To(BeNil())
		fp, err := mission.CreateFunction(&mission.FunctionCreation{MissionID: mp.ID, Name: "Team Leader",
			Ratings: complexity.Ratings{Tde: 3, Nqt: 3, Grs: 3, Dec: 3}}, s)
		Expect(err).To(BeNil())
		_, err = mission.CreateAssignment(&mission.AssignmentCreation{MissionID: mp.ID, OfficerID: 500, FunctionID: fp.ID}, s)
		Expect(err).To(BeNil())

		w, err := mission.OfficerWorkload(500, s)
		Expect(err).To(BeNil())
		Expect(*w).To(Equal(mission.Workload{Low: 2, High: 1, WeightedTotal: 5}))

		// a rating edit moves the bucket on the very next read
		Expect(mission.UpdateFunction(low1.ID, &mission.FunctionUpdating{Name: "Driver",
			Ratings: complexity.Ratings{Tde: 2, Nqt: 2, Grs: 2, Dec: 2}}, s)).To(BeNil())
		w, err = mission.OfficerWorkload(500, s)
		Expect(err).To(BeNil())
		Expect(*w).To(Equal(mission.Workload{Low: 1, Medium: 1, High: 1, WeightedTotal: 6}))
	})
}

func TestUnitWorkload(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("unit workload sums over the subtree's officers", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)
		Expect(persistence.ActiveDataSourceManager.GormDB(context.Background()).
			AutoMigrate(&unit.Unit{}, &officer.Officer{}).Error).To(BeNil())

		s := testinfra.BuildSession(10, authority.RoleOperations)
		root, err := unit.CreateUnit(&unit.UnitCreation{Name: "General Command", Type: unit.TypeGeneralCommand},
			testinfra.BuildSession(10, authority.RoleAdmin))
		Expect(err).To(BeNil())
		bn, err := unit.CreateUnit(&unit.UnitCreation{Name: "1st Battalion", Type: unit.TypeBattalion, SuperiorID: root.ID},
			testinfra.BuildSession(10, authority.RoleAdmin))
		Expect(err).To(BeNil())

		o1, err := officer.CreateOfficer(&officer.OfficerCreation{NationalID: "12345678901", Registry: "190001",
			Name: "John Silva", Rank: officer.RankCaptain, Corps: officer.CorpsCombatant, UnitID: bn.ID},
			testinfra.BuildSession(10, authority.RoleAdmin))
		Expect(err).To(BeNil())
		o2, err := officer.CreateOfficer(&officer.OfficerCreation{NationalID: "10987654321", Registry: "190002",
			Name: "Mary Souza", Rank: officer.RankMajor, Corps: officer.CorpsCombatant, UnitID: root.ID},
			testinfra.BuildSession(10, authority.RoleAdmin))
		Expect(err).To(BeNil())

		m, err := mission.CreateMission(buildMission("Operation North"), s)
		Expect(err).To(BeNil())
		f, err := mission.CreateFunction(&mission.FunctionCreation{MissionID: m.ID, Name: "Team Leader",
			Ratings: complexity.Ratings{Tde: 2, Nqt: 2, Grs: 2, Dec: 2}}, s)
		Expect(err).To(BeNil())
		_, err = mission.CreateAssignment(&mission.AssignmentCreation{MissionID: m.ID, OfficerID: o1.ID, FunctionID: f.ID}, s)
		Expect(err).To(BeNil())
		f2, err := mission.CreateFunction(&mission.FunctionCreation{MissionID: m.ID, Name: "Driver",
			Ratings: complexity.Ratings{Tde: 1, Nqt: 1, Grs: 1, Dec: 1}}, s)
		Expect(err).To(BeNil())
		_, err = mission.CreateAssignment(&mission.AssignmentCreation{MissionID: m.ID, OfficerID: o2.ID, FunctionID: f2.ID}, s)
		Expect(err).To(BeNil())

		// the whole tree counts both officers, the battalion only its own
		w, err := mission.UnitWorkload(root.ID, s)
		Expect(err).To(BeNil())
		Expect(*w).To(Equal(mission.Workload{Low: 1, Medium: 1, WeightedTotal: 3}))

		w, err = mission.UnitWorkload(bn.ID, s)
		Expect(err).To(BeNil())
		Expect(*w).To(Equal(mission.Workload{Medium: 1, WeightedTotal: 2}))
	})
}
