package tasks

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/recipebox/recipebox-back/internal/config"
	"github.com/recipebox/recipebox-back/internal/db"
	"github.com/recipebox/recipebox-back/internal/mail"
)

// Dispatcher enqueues the signup-confirmation email job. It satisfies
// service.SignupConfirmationDispatcher.
type Dispatcher struct {
	db           *gorm.DB
	mailer       mail.Mailer
	pool         *Pool
	logger       *zap.SugaredLogger
	siteTitle    string
	supportEmail string
}

func NewDispatcher(gdb *gorm.DB, mailer mail.Mailer, pool *Pool, cfg *config.Config, logger *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{
		db:           gdb,
		mailer:       mailer,
		pool:         pool,
		logger:       logger,
		siteTitle:    cfg.SiteTitle,
		supportEmail: cfg.SupportEmail,
	}
}

// DispatchSignupConfirmation queues delivery and returns immediately. The
// job re-fetches the user at execution time: a user deleted between enqueue
// and execution is logged and dropped. A transport failure is logged with
// the user ID and dropped as well; there is no automatic retry, operators
// re-trigger manually from the logs.
func (d *Dispatcher) DispatchSignupConfirmation(userID uint64, siteURI, confirmationURI string) {
	d.pool.Enqueue(func() {
		d.sendSignupConfirmation(userID, siteURI, confirmationURI)
	})
}

func (d *Dispatcher) sendSignupConfirmation(userID uint64, siteURI, confirmationURI string) {
	user := db.User{}
	res := d.db.First(&user, userID)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			d.logger.Warnw("user gone before confirmation email, dropping", "user_id", userID)
			return
		}
		d.logger.Errorw("fetch user for confirmation email", "user_id", userID, "error", res.Error)
		return
	}

	body, htmlBody, err := mail.RenderSignupConfirmation(mail.SignupConfirmationContext{
		ConfirmationURI: confirmationURI,
		SiteTitle:       d.siteTitle,
		SiteURI:         siteURI,
	})
	if err != nil {
		d.logger.Errorw("render confirmation email", "user_id", userID, "error", err)
		return
	}

	d.logger.Infow("sending email confirmation", "user_id", userID)

	err = d.mailer.Send(mail.Message{
		Subject:  fmt.Sprintf("Signup confirmation for %s.", d.siteTitle),
		Body:     body,
		HTMLBody: htmlBody,
		To:       user.Email,
		From:     d.supportEmail,
	})
	if err != nil {
		d.logger.Errorw("confirmation email delivery failed, dropping", "user_id", userID, "error", err)
		return
	}

	d.logger.Infow("email confirmation sent successfully", "user_id", userID)
}
