package mission_test

import (
	"context"
	"testing"

	"sigem/authority"
	"sigem/bizerror"
	"sigem/domain/complexity"
	"sigem/domain/mission"
	"sigem/event"
	"sigem/persistence"
	"sigem/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartMysqlTestDatabase("sigem")
	*testDatabase = db
	Expect(db.DS.GormDB(context.Background()).AutoMigrate(
		&mission.Mission{}, &mission.Function{}, &mission.Assignment{}, &event.EventRecord{}).Error).To(BeNil())

	persistence.ActiveDataSourceManager = db.DS
}

func teardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

func buildMission(name string) *mission.MissionCreation {
	return &mission.MissionCreation{Type: mission.TypeOperational, Name: name, Year: 2024,
		Location: "Capital", BeginDate: types.CurrentTimestamp(),
		Status: mission.StatusInProgress, RefDocument: "DOC-" + name}
}

func TestCheckStatus(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should reject unknown status", func(t *testing.T) {
		Expect(mission.CheckStatus("DONE", types.Timestamp{})).To(Equal(bizerror.ErrMissionUnknownStatus))
		Expect(mission.CheckStatus("", types.Timestamp{})).To(Equal(bizerror.ErrMissionUnknownStatus))
	})

	t.Run("concluded mission requires an end date", func(t *testing.T) {
		Expect(mission.CheckStatus(mission.StatusConcluded, types.Timestamp{})).To(Equal(bizerror.ErrMissionEndDateMissing))
		Expect(mission.CheckStatus(mission.StatusConcluded, types.CurrentTimestamp())).To(BeNil())
	})

	t.Run("ongoing statuses do not require an end date", func(t *testing.T) {
		Expect(mission.CheckStatus(mission.StatusPlanned, types.Timestamp{})).To(BeNil())
		Expect(mission.CheckStatus(mission.StatusInProgress, types.Timestamp{})).To(BeNil())
		Expect(mission.CheckStatus(mission.StatusCancelled, types.Timestamp{})).To(BeNil())
	})
}

func TestCreateMission(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("only mission managers can create missions", func(t *testing.T) {
		m, err := mission.CreateMission(buildMission("Operation North"), testinfra.BuildSession(10, authority.RoleCommander))
		Expect(m).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("should be able to create mission successfully", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(10, authority.RoleOperations)
		m, err := mission.CreateMission(buildMission("Operation North"), s)
		Expect(err).To(BeNil())
		Expect(m.ID).ToNot(BeZero())

		r := mission.Mission{}
		Expect(persistence.ActiveDataSourceManager.GormDB(context.Background()).
			Where("id = ?", m.ID).First(&r).Error).To(BeNil())
		Expect(r.Name).To(Equal("Operation North"))
		Expect(r.Status).To(Equal(mission.StatusInProgress))
	})

	t.Run("should reject concluded mission without end date", func(t *testing.T) {
		s := testinfra.BuildSession(10, authority.RoleOperations)
		c := buildMission("Operation South")
		c.Status = mission.StatusConcluded
		_, err := mission.CreateMission(c, s)
		Expect(err).To(Equal(bizerror.ErrMissionEndDateMissing))
	})
}

func TestDeleteMission(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should block deletion while functions exist", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(10, authority.RoleOperations)
		m, err := mission.CreateMission(buildMission("Operation North"), s)
		Expect(err).To(BeNil())
		f, err := mission.CreateFunction(&mission.FunctionCreation{MissionID: m.ID, Name: "Team Leader",
			Ratings: complexity.Ratings{Tde: 1, Nqt: 1, Grs: 1, Dec: 1}}, s)
		Expect(err).To(BeNil())

		Expect(mission.DeleteMission(m.ID, s)).To(Equal(bizerror.ErrFunctionReferenced))
		Expect(mission.DeleteFunction(f.ID, s)).To(BeNil())
		Expect(mission.DeleteMission(m.ID, s)).To(BeNil())
	})
}

func TestQueryMissions(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should filter by name, type, status and year", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(10, authority.RoleOperations)
		_, err := mission.CreateMission(buildMission("Operation North"), s)
		Expect(err).To(BeNil())

		c := buildMission("Annual Training")
		c.Type = mission.TypeTraining
		c.Year = 2023
		c.Status = mission.StatusPlanned
		_, err = mission.CreateMission(c, s)
		Expect(err).To(BeNil())

		missions, err := mission.QueryMissions(&mission.MissionQuery{Name: "North"}, s)
		Expect(err).To(BeNil())
		Expect(len(missions)).To(Equal(1))
		Expect(missions[0].Name).To(Equal("Operation North"))

		// the name filter also matches the reference document
		missions, err = mission.QueryMissions(&mission.MissionQuery{Name: "DOC-Annual"}, s)
		Expect(err).To(BeNil())
		Expect(len(missions)).To(Equal(1))
		Expect(missions[0].Name).To(Equal("Annual Training"))

		missions, err = mission.QueryMissions(&mission.MissionQuery{Type: mission.TypeTraining}, s)
		Expect(err).To(BeNil())
		Expect(len(missions)).To(Equal(1))

		missions, err = mission.QueryMissions(&mission.MissionQuery{Status: mission.StatusInProgress}, s)
		Expect(err).To(BeNil())
		Expect(len(missions)).To(Equal(1))

		missions, err = mission.QueryMissions(&mission.MissionQuery{Year: 2023}, s)
		Expect(err).To(BeNil())
		Expect(len(missions)).To(Equal(1))

		missions, err = mission.QueryMissions(&mission.MissionQuery{}, s)
		Expect(err).To(BeNil())
		Expect(len(missions)).To(Equal(2))
	})
}
