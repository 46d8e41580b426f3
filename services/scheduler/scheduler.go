// Package schedsvc runs the recurring background jobs: for now, the daily
// agenda reminder emails.
package schedsvc

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mwongozo/backend/core"
	"github.com/mwongozo/backend/core/planning"
	"github.com/mwongozo/backend/core/user"
)

// reminders go out before the school day starts
const agendaReminderSpec = "0 6 * * *"

const eventTimeFormat = "15:04"

type Scheduler struct {
	cron    *cron.Cron
	usrSvc  *user.Service
	planSvc *planning.Service
	mailSvc core.EmailService
	conf    *core.Config
	logger  core.Logger
}

func NewScheduler(
	usrSvc *user.Service,
	planSvc *planning.Service,
	mailSvc core.EmailService,
	conf *core.Config,
	logger core.Logger,
) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		usrSvc:  usrSvc,
		planSvc: planSvc,
		mailSvc: mailSvc,
		conf:    conf,
		logger:  logger,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(agendaReminderSpec, s.sendAgendaReminders); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("scheduler: started")
	return nil
}

// Stop waits for any running job to complete.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler: stopped")
}

// sendAgendaReminders emails every active student their events for the day.
func (s *Scheduler) sendAgendaReminders() {
	ctx := context.Background()

	active := true
	students, err := s.usrSvc.Query(ctx, &user.QueryFilter{Roles: user.StudentRoles, IsActive: &active}, nil)
	if err != nil {
		s.logger.Error(fmt.Sprintf("scheduler: querying students: %v", err), err)
		return
	}

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())

	var sent int
	for _, usr := range students {
		events, err := s.planSvc.Agenda(ctx, usr.ID, from, to)
		if err != nil {
			s.logger.Error(fmt.Sprintf("scheduler: querying agenda: %v", err), err, usr)
			continue
		}
		if len(events) == 0 {
			continue
		}
		s.mailSvc.SendMessages(s.agendaMessage(usr, events, now))
		sent++
	}
	s.logger.Info(fmt.Sprintf("scheduler: sent %d agenda reminder(s)", sent))
}

func (s *Scheduler) agendaMessage(usr user.User, events []planning.Event, day time.Time) *core.EmailMessage {
	lines := make([]string, 0, len(events))
	for _, ev := range events {
		lines = append(lines, fmt.Sprintf(
			"- %s to %s: %s", ev.StartAt.Format(eventTimeFormat), ev.EndAt.Format(eventTimeFormat), ev.Title,
		))
	}

	msg := core.NewEmailMessage(s.conf)
	msg.To = []mail.Address{{Name: usr.Name, Address: usr.Email}}
	msg.Subject = "Your agenda for " + day.Format("Mon 02 Jan")
	msg.BodyStr = fmt.Sprintf(
		"Hi %s,\n\nHere is your agenda for today:\n\n%s\n\nGood luck!",
		usr.Name, strings.Join(lines, "\n"),
	)
	return msg
}
