package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frezendesp/GroupManagement/pkg/observability"
)

func TestNewDBRecorder_NilDB(t *testing.T) {
	_, err := NewDBRecorder(nil, nil, nil)
	assert.EqualError(t, err, "database connection is required")
}

func TestDBRecorder_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	rec, err := NewDBRecorder(db, nil, metrics)
	require.NoError(t, err)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rec.now = func() time.Time { return now }

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(int64(1), "add_group_member", "group", int64(4), "Added user GP User to group Finance", now, "10.0.0.1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	rec.Record(context.Background(), Record{
		ActorID:    Int64Ptr(1),
		Action:     ActionAddGroupMember,
		TargetType: TargetGroup,
		TargetID:   Int64Ptr(4),
		Details:    "Added user GP User to group Finance",
		IPAddress:  "10.0.0.1",
	})

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuditWritesTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.AuditWriteFailuresTotal))
}

func TestDBRecorder_FailureIsSwallowed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	rec, err := NewDBRecorder(db, observability.NewNopLogger(), metrics)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO audit_logs").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	assert.NotPanics(t, func() {
		rec.Record(context.Background(), Record{Action: ActionLoginFailed, Details: "Failed login attempt for username: x"})
	})

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuditWriteFailuresTotal))
}

func TestDBRecorder_UnknownActionRejected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	rec, err := NewDBRecorder(db, nil, metrics)
	require.NoError(t, err)

	rec.Record(context.Background(), Record{Action: "delete_everything"})

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuditWriteFailuresTotal))
}

func TestDBRecorder_SurvivesCancelledContext(t *testing.T) {
	db := setupTestDB(t)
	rec, err := NewDBRecorder(db, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec.Record(ctx, Record{ActorID: Int64Ptr(1), Action: ActionLogout, TargetType: TargetUser, TargetID: Int64Ptr(1)})

	count, err := NewDBStore(db).Count(context.Background(), SearchFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestActionValid(t *testing.T) {
	assert.True(t, ActionGenerateReport.Valid())
	assert.True(t, Action("edit_user").Valid())
	assert.False(t, Action("EDIT_USER").Valid())
}
