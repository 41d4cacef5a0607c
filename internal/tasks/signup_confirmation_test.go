package tasks

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/recipebox/recipebox-back/internal/apperr"
	"github.com/recipebox/recipebox-back/internal/config"
	"github.com/recipebox/recipebox-back/internal/db"
	"github.com/recipebox/recipebox-back/internal/mail"
)

var testDBCounter atomic.Uint64

type fakeMailer struct {
	sent []mail.Message
	err  error
}

func (f *fakeMailer) Send(m mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

func newTestDispatcher(t *testing.T, mailer mail.Mailer) (*Dispatcher, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:tasks_test_%d?mode=memory&cache=shared&_foreign_keys=on", testDBCounter.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))

	cfg := &config.Config{
		SiteTitle:    "RecipeBox",
		SupportEmail: "support@recipebox.localhost",
	}
	pool := newBarePool(1)
	dispatcher := NewDispatcher(gdb, mailer, pool, cfg, zap.NewNop().Sugar())
	return dispatcher, gdb
}

func TestSendSignupConfirmation(t *testing.T) {
	t.Run("sends the rendered email", func(t *testing.T) {
		mailer := &fakeMailer{}
		dispatcher, gdb := newTestDispatcher(t, mailer)

		user := db.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
		require.NoError(t, gdb.Create(&user).Error)

		dispatcher.sendSignupConfirmation(user.ID, "http://front.local", "http://front.local/signup_confirmation/abc123")

		require.Len(t, mailer.sent, 1)
		msg := mailer.sent[0]
		assert.Equal(t, "Signup confirmation for RecipeBox.", msg.Subject)
		assert.Equal(t, "alice@example.com", msg.To)
		assert.Equal(t, "support@recipebox.localhost", msg.From)
		assert.Contains(t, msg.Body, "http://front.local/signup_confirmation/abc123")
		assert.Contains(t, msg.HTMLBody, "http://front.local/signup_confirmation/abc123")
	})

	t.Run("drops when the user is gone", func(t *testing.T) {
		mailer := &fakeMailer{}
		dispatcher, _ := newTestDispatcher(t, mailer)

		dispatcher.sendSignupConfirmation(42, "http://front.local", "http://front.local/signup_confirmation/abc123")

		assert.Empty(t, mailer.sent)
	})

	t.Run("drops on transport failure", func(t *testing.T) {
		mailer := &fakeMailer{err: &apperr.TransportError{Err: assert.AnError}}
		dispatcher, gdb := newTestDispatcher(t, mailer)

		user := db.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
		require.NoError(t, gdb.Create(&user).Error)

		// delivery is best-effort, the failure only hits the logs
		dispatcher.sendSignupConfirmation(user.ID, "http://front.local", "http://front.local/signup_confirmation/abc123")
		assert.Empty(t, mailer.sent)
	})
}

func TestDispatchRunsThroughThePool(t *testing.T) {
	mailer := &fakeMailer{}
	dispatcher, gdb := newTestDispatcher(t, mailer)

	user := db.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, gdb.Create(&user).Error)

	dispatcher.DispatchSignupConfirmation(user.ID, "http://front.local", "http://front.local/signup_confirmation/abc123")

	dispatcher.pool.Start()
	dispatcher.pool.Stop()

	require.Len(t, mailer.sent, 1)
}
