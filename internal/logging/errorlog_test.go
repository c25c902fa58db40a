package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorLogger_LevelsBySeverity(t *testing.T) {
	log, hook := test.NewNullLogger()
	el := NewErrorLogger(log, 10)
	ctx := context.Background()

	el.Log(ctx, nil, Entry{Message: "transfer done", Severity: SeverityLow, Category: CategoryTransaction})
	el.Log(ctx, errors.New("slow"), Entry{Severity: SeverityMedium, Category: CategoryService})
	el.Log(ctx, errors.New("boom"), Entry{Severity: SeverityCritical, Category: CategoryAuth, Operation: "login"})

	require.Len(t, hook.Entries, 3)
	assert.Equal(t, logrus.InfoLevel, hook.Entries[0].Level)
	assert.Equal(t, logrus.WarnLevel, hook.Entries[1].Level)
	assert.Equal(t, "slow", hook.Entries[1].Message)
	assert.Equal(t, logrus.ErrorLevel, hook.Entries[2].Level)
	assert.Equal(t, "login", hook.Entries[2].Data["operation"])
	assert.Equal(t, CategoryAuth, hook.Entries[2].Data["category"])
}

func TestErrorLogger_RecentIsBoundedAndNewestFirst(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	el := NewErrorLogger(log, 3)

	for i := 0; i < 5; i++ {
		el.Log(context.Background(), fmt.Errorf("err %d", i), Entry{Severity: SeverityLow, Category: CategorySystem})
	}

	recent := el.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "err 4", recent[0].Message)
	assert.Equal(t, "err 3", recent[1].Message)
	assert.Equal(t, "err 2", recent[2].Message)

	assert.Len(t, el.Recent(2), 2)

	el.Clear()
	assert.Empty(t, el.Recent(0))
}

func TestErrorLogger_PartialRing(t *testing.T) {
	log, _ := test.NewNullLogger()
	el := NewErrorLogger(log, 5)

	el.UserNotFound(context.Background(), "u-404", "GetProfile", "UserService")

	recent := el.Recent(10)
	require.Len(t, recent, 1)
	assert.Equal(t, "user not found: u-404", recent[0].Message)
	assert.Equal(t, SeverityHigh, recent[0].Severity)
	assert.Equal(t, "u-404", recent[0].UserID)
	assert.NotEmpty(t, recent[0].ID)
}
