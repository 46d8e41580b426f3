package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/mwongozo/backend/apps/api/echo"
	"github.com/mwongozo/backend/core"
	"github.com/mwongozo/backend/core/objective"
	"github.com/mwongozo/backend/core/planning"
	"github.com/mwongozo/backend/core/task"
	"github.com/mwongozo/backend/core/user"
	emailsvc "github.com/mwongozo/backend/services/email"
	logsvc "github.com/mwongozo/backend/services/logger"
	schedsvc "github.com/mwongozo/backend/services/scheduler"
	"github.com/mwongozo/backend/storage/database"
	pgrepos "github.com/mwongozo/backend/storage/database/pg"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lshortfile)

	conf := core.NewConfig()

	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	if err := run(conf, std, logger); err != nil {
		logger.Fatal("fatal", err)
	}
}

func run(conf *core.Config, std *log.Logger, logger core.Logger) error {
	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		return err
	}
	defer db.Close()

	// set up validators
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ := uni.GetTranslator(enLocale.Locale())
	validate := validator.New()
	core.InitValidators(validate, translator)
	task.RegisterValidators(validate, translator)
	user.RegisterValidators(validate, translator)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrRepo := pgrepos.NewUserRepository(db)
	objRepo := pgrepos.NewObjectiveRepository(db)
	taskRepo := pgrepos.NewTaskRepository(db)
	planRepo := pgrepos.NewPlanningRepository(db)

	usrSvc := user.NewService(usrRepo, mailSvc, conf)
	objSvc := objective.NewService(objRepo)
	notifier := planning.NewMailNotifier(usrSvc, mailSvc, conf, logger)
	planSvc := planning.NewService(planRepo, taskRepo, objRepo, logger, notifier)
	taskSvc := task.NewService(taskRepo, planSvc, logger)

	// start background jobs
	sched := schedsvc.NewScheduler(usrSvc, planSvc, mailSvc, conf, logger)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(
		&echoapi.Options{
			Addr:       fmt.Sprintf("%s:%d", conf.Server.Host, conf.Server.Port),
			Conf:       conf,
			Logger:     logger,
			Validate:   validate,
			Translator: translator,
			UserSvc:    usrSvc,
			ObjSvc:     objSvc,
			TaskSvc:    taskSvc,
			PlanSvc:    planSvc,
		},
		shutdown,
	)

	serverErrors := make(chan error, 1)
	go func() { serverErrors <- app.Start() }()

	select {
	case err := <-serverErrors:
		return err
	case sig := <-shutdown:
		std.Printf("%v: start shutdown", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			std.Printf("graceful shutdown failed: %v", err)
			return app.Stop(context.Background())
		}
	}
	return nil
}
