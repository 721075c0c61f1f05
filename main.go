package main

import (
	"context"
	"net/http"

	"sigem/account"
	"sigem/bizerror"
	"sigem/client/s3"
	"sigem/domain/mission"
	"sigem/domain/officer"
	"sigem/domain/request"
	"sigem/domain/unit"
	"sigem/event"
	"sigem/infra/tracing"
	"sigem/persistence"
	"sigem/reports"
	"sigem/session"
	"sigem/sessions"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.Infoln("service start")

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		logrus.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		logrus.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB(context.Background()).AutoMigrate(
		&account.User{},
		&unit.Unit{},
		&officer.Officer{},
		&mission.Mission{},
		&mission.Function{},
		&mission.Assignment{},
		&request.Request{},
		&event.EventRecord{},
	).Error
	if err != nil {
		logrus.Fatalf("database migration failed %v\n", err)
	}

	if err := account.DefaultSecurityConfiguration(); err != nil {
		logrus.Fatalf("security configuration failed %v\n", err)
	}

	tracingCloser, err := tracing.Bootstrap()
	if err != nil {
		logrus.Warnf("tracing disabled %v\n", err)
	} else {
		defer tracingCloser.Close()
	}

	s3.Bootstrap()
	event.EventHandlers = append(event.EventHandlers, event.NotificationHandler)

	engine := gin.Default()
	engine.Use(bizerror.ErrorHandling(), tracing.TracingIngress())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "sigem")
	})

	sessions.RegisterSessionsHandler(engine)
	sessions.RegisterSessionHandler(engine, session.SimpleAuthFilter())
	account.RegisterUsersRestAPI(engine, session.SimpleAuthFilter())

	unit.RegisterUnitsRestAPI(engine, session.SimpleAuthFilter())
	officer.RegisterOfficersRestAPI(engine, session.SimpleAuthFilter())
	mission.RegisterMissionsRestAPI(engine, session.SimpleAuthFilter())
	mission.RegisterFunctionsRestAPI(engine, session.SimpleAuthFilter())
	mission.RegisterAssignmentsRestAPI(engine, session.SimpleAuthFilter())
	mission.RegisterWorkloadRestAPI(engine, session.SimpleAuthFilter())
	request.RegisterRequestsRestAPI(engine, session.SimpleAuthFilter())
	reports.RegisterReportsRestAPI(engine, session.SimpleAuthFilter())

	err = engine.Run(":80")
	if err != nil {
		panic(err)
	}
}
