package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormLoggerReportsSQLErrorsAtInfoLevel(t *testing.T) {
	hook := test.NewGlobal()
	prev := logrus.GetLevel()
	logrus.SetLevel(logrus.InfoLevel)
	t.Cleanup(func() {
		logrus.SetLevel(prev)
		logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))
	})

	l := GormLogger()
	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM bus_trips", 0
	}, errors.New("relation \"bus_trips\" does not exist"))

	require.Eventually(t, func() bool { return len(hook.AllEntries()) > 0 }, time.Second, 10*time.Millisecond)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Contains(t, entry.Message, "bus_trips")
}

func TestGormLoggerSkipsStatementsAtInfoLevel(t *testing.T) {
	hook := test.NewGlobal()
	prev := logrus.GetLevel()
	logrus.SetLevel(logrus.InfoLevel)
	t.Cleanup(func() {
		logrus.SetLevel(prev)
		logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))
	})

	GormLogger().Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, hook.AllEntries())
}
