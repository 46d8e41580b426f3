package planning

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/mwongozo/backend/core"
	"github.com/mwongozo/backend/core/task"
	"github.com/mwongozo/backend/core/user"
)

const eventDateFormat = "Mon 02 Jan 2006 15:04"

// mailNotifier emails assignees whenever their planning is regenerated.
type mailNotifier struct {
	usrSvc  *user.Service
	mailSvc core.EmailService
	conf    *core.Config
	logger  core.Logger
}

var _ Notifier = (*mailNotifier)(nil)

func NewMailNotifier(usrSvc *user.Service, mailSvc core.EmailService, conf *core.Config, logger core.Logger) *mailNotifier {
	return &mailNotifier{usrSvc: usrSvc, mailSvc: mailSvc, conf: conf, logger: logger}
}

func (n *mailNotifier) PlanningUpdated(t task.Task, events []Event) {
	if len(events) == 0 {
		return
	}
	usr, err := n.usrSvc.GetByID(context.Background(), t.AssigneeID)
	if err != nil {
		n.logger.Warn("planning: cannot notify assignee", err, t.AssigneeID)
		return
	}

	first, last := events[0], events[len(events)-1]
	msg := core.NewEmailMessage(n.conf)
	msg.To = []mail.Address{{Name: usr.Name, Address: usr.Email}}
	msg.Subject = "Your planning has been updated"
	msg.BodyStr = fmt.Sprintf(
		"Hi %s,\n\n%d session(s) of %q are now on your planning, from %s to %s.\n\n"+
			"Log in to %s to see the details.",
		usr.Name, len(events), t.Title,
		first.StartAt.Format(eventDateFormat), last.EndAt.Format(eventDateFormat),
		n.conf.FrontendBaseURL,
	)
	n.mailSvc.SendMessages(msg)
}
