package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blogem/corpdata-hub/models"
	"github.com/blogem/corpdata-hub/repositories/mocks"
)

func TestAuditLoggerRecord(t *testing.T) {
	repo := mocks.NewMockAuditRepository(t)
	logger, _ := test.NewNullLogger()
	audit := NewAuditLogger(repo, logger)

	var got []*models.AuditRecord
	repo.EXPECT().Create(mock.Anything, mock.AnythingOfType("*models.AuditRecord")).
		Run(func(ctx context.Context, record *models.AuditRecord) { got = append(got, record) }).
		Return(nil).Times(2)

	before := time.Now().UTC()
	audit.Record(context.Background(), "c1", "s1", models.ActionSet, "data to modify: {}")
	audit.Record(context.Background(), "c1", "s1", models.ActionGet, "requested id: x1")

	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].ClientID)
	assert.Equal(t, "s1", got[0].SessionID)
	assert.Equal(t, models.ActionSet, got[0].Action)
	assert.Equal(t, "data to modify: {}", got[0].Details)
	assert.False(t, got[0].Timestamp.Before(before.Add(-time.Second)))

	// Every record gets its own uuid
	_, err := uuid.Parse(got[0].LogID)
	assert.NoError(t, err)
	assert.NotEqual(t, got[0].LogID, got[1].LogID)
}

func TestAuditLoggerSwallowsFailures(t *testing.T) {
	repo := mocks.NewMockAuditRepository(t)
	logger, hook := test.NewNullLogger()
	audit := NewAuditLogger(repo, logger)

	repo.EXPECT().Create(mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	assert.NotPanics(t, func() {
		audit.Record(context.Background(), "c1", "s1", models.ActionList, "")
	})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "Failed to create audit log", entry.Message)
	assert.Equal(t, models.ActionList, entry.Data["action"])
}
