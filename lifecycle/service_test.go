package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/apperr"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/identity"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type harness struct {
	svc     *Service
	records *memRecords
	audit   *memAudit
	tracker *memTracker
}

func newHarness(recs ...models.Request) *harness {
	h := &harness{
		records: newMemRecords(recs...),
		audit:   &memAudit{},
		tracker: &memTracker{},
	}
	roles := staticRoles{
		"admin-1": identity.RoleAdmin,
		"vol-1":   identity.RoleVolunteer,
		"vol-2":   identity.RoleVolunteer,
	}
	h.svc = NewService(h.records, h.audit, roles, zap.NewNop())
	h.svc.Tracker = h.tracker
	h.svc.Retry = RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond}
	h.svc.Now = func() time.Time { return fixedNow }
	n := 0
	h.svc.NewID = func() string {
		n++
		return "h" + string(rune('0'+n))
	}
	return h
}

func pendingRequest() models.Request {
	return models.Request{ID: "r1", FullName: "Tran Thi B", Address: "12 Le Loi", Status: models.StatusPending}
}

func TestApplyVolunteerClaim(t *testing.T) {
	h := newHarness(pendingRequest())

	res, err := h.svc.Apply(context.Background(), "r1", claimBy("vol-1"), "vol-1")
	require.NoError(t, err)
	assert.True(t, res.Authorized)
	assert.Equal(t, models.StatusInProgress, res.Record.Status)
	assert.Equal(t, "vol-1", res.Record.Assignee())
	require.NotNil(t, res.Record.ClaimedAt)
	assert.Equal(t, fixedNow, *res.Record.ClaimedAt)
	assert.Equal(t, "vol-1", res.Record.UpdatedBy)

	require.NotNil(t, res.History)
	require.Len(t, h.audit.entries, 1)
	e := h.audit.entries[0]
	assert.Equal(t, models.ActionClaim, e.ActionType)
	assert.Equal(t, models.StatusPending, e.OldStatus)
	assert.Equal(t, models.StatusInProgress, e.NewStatus)
	assert.Equal(t, "vol-1", e.ChangedBy)
	require.NotNil(t, e.VolunteerID)
	assert.Equal(t, "vol-1", *e.VolunteerID)
	assert.Equal(t, "Tran Thi B", e.Metadata[models.MetaRequestName])
	assert.Equal(t, fixedNow, e.Metadata[models.MetaClaimTime])

	require.Len(t, h.tracker.calls, 1)
	assert.Equal(t, trackerCall{"vol-1", "r1", models.ActionClaim}, h.tracker.calls[0])
}

func TestApplyNonAssigneeDenied(t *testing.T) {
	cur := record(models.StatusInProgress, "vol-1")
	h := newHarness(cur)

	res, err := h.svc.Apply(context.Background(), "r1", Update{Status: status(models.StatusDone)}, "vol-2")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Permission))
	assert.False(t, res.Authorized)

	assert.Zero(t, h.records.writes)
	assert.Equal(t, cur, h.records.get("r1"))
	assert.Empty(t, h.audit.entries)
}

func TestApplyAssigneeCompletes(t *testing.T) {
	claimedAt := fixedNow.Add(-2 * time.Hour)
	cur := record(models.StatusInProgress, "vol-1")
	cur.ClaimedAt = &claimedAt
	h := newHarness(cur)

	res, err := h.svc.Apply(context.Background(), "r1",
		Update{Status: status(models.StatusDone), Comments: ptr("delivered")}, "vol-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, res.Record.Status)
	assert.Equal(t, "delivered", res.Record.Comments)
	require.NotNil(t, res.Record.CompletedAt)
	assert.Equal(t, "vol-1", res.Record.CompletedBy)

	require.Len(t, h.audit.entries, 1)
	e := h.audit.entries[0]
	assert.Equal(t, models.ActionComplete, e.ActionType)
	assert.Equal(t, claimedAt, e.Metadata[models.MetaClaimTime])
	assert.Equal(t, fixedNow, e.Metadata[models.MetaCompletionTime])
	assert.Equal(t, "delivered", e.Metadata[models.MetaComments])
}

func TestApplyAdminReopen(t *testing.T) {
	done := fixedNow.Add(-time.Hour)
	cur := record(models.StatusDone, "vol-1")
	cur.CompletedAt = &done
	cur.CompletedBy = "vol-1"
	h := newHarness(cur)

	res, err := h.svc.Apply(context.Background(), "r1",
		Update{Status: status(models.StatusPending), SetAssignee: true}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, res.Record.Status)
	assert.Nil(t, res.Record.AssignedUser)
	assert.Nil(t, res.Record.CompletedAt)
	assert.Empty(t, res.Record.CompletedBy)
	for _, k := range []string{"completed_at", "completed_by"} {
		v, ok := h.records.last[k]
		require.True(t, ok, k)
		assert.Nil(t, v, k)
	}

	require.Len(t, h.audit.entries, 1)
	e := h.audit.entries[0]
	assert.Equal(t, models.ActionReopen, e.ActionType)
	assert.Equal(t, "admin-1", e.ChangedBy)
	require.NotNil(t, e.VolunteerID)
	assert.Equal(t, "vol-1", *e.VolunteerID)
}

func TestApplyDoneDeniedForVolunteer(t *testing.T) {
	h := newHarness(record(models.StatusDone, "vol-1"))

	_, err := h.svc.Apply(context.Background(), "r1", Update{Comments: ptr("again")}, "vol-1")
	assert.True(t, apperr.Is(err, apperr.Permission))
	assert.Zero(t, h.records.writes)
}

func TestApplyUnknownStatus(t *testing.T) {
	h := newHarness(record("ARCHIVED", ""))

	_, err := h.svc.Apply(context.Background(), "r1", Update{Comments: ptr("x")}, "vol-1")
	assert.True(t, apperr.Is(err, apperr.Permission))

	res, err := h.svc.Apply(context.Background(), "r1", Update{Comments: ptr("x")}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "x", res.Record.Comments)
	assert.Nil(t, res.History)
}

func TestApplyAuthenticationFailures(t *testing.T) {
	t.Run("empty caller", func(t *testing.T) {
		h := newHarness(pendingRequest())
		_, err := h.svc.Apply(context.Background(), "r1", claimBy("vol-1"), "")
		assert.True(t, apperr.Is(err, apperr.Authentication))
	})

	t.Run("unknown user", func(t *testing.T) {
		h := newHarness(pendingRequest())
		_, err := h.svc.Apply(context.Background(), "r1", claimBy("ghost"), "ghost")
		assert.True(t, apperr.Is(err, apperr.Authentication))
		assert.ErrorIs(t, err, identity.ErrUserNotFound)
		assert.Zero(t, h.records.writes)
	})

	t.Run("role lookup timeout", func(t *testing.T) {
		h := newHarness(pendingRequest())
		h.svc.Roles = slowRoles{}
		h.svc.RoleTimeout = 10 * time.Millisecond

		start := time.Now()
		_, err := h.svc.Apply(context.Background(), "r1", claimBy("vol-1"), "vol-1")
		assert.True(t, apperr.Is(err, apperr.Authentication))
		assert.Less(t, time.Since(start), time.Second)
		assert.Zero(t, h.records.writes)
	})
}

func TestApplyNotFound(t *testing.T) {
	h := newHarness()

	_, err := h.svc.Apply(context.Background(), "missing", Update{Comments: ptr("x")}, "admin-1")
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestApplyValidation(t *testing.T) {
	h := newHarness(record(models.StatusInProgress, "vol-1"))

	cases := map[string]Update{
		"empty":               {},
		"bad status":          {Status: status("LOST")},
		"pending keeps owner": {Status: status(models.StatusPending)},
	}
	for name, u := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := h.svc.Apply(context.Background(), "r1", u, "admin-1")
			assert.True(t, apperr.Is(err, apperr.Validation), "got %v", err)
		})
	}
	assert.Zero(t, h.records.writes)
}

func TestApplyWriteFailure(t *testing.T) {
	h := newHarness(pendingRequest())
	h.records.writeErr = errors.New("write timeout")

	_, err := h.svc.Apply(context.Background(), "r1", claimBy("vol-1"), "vol-1")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Unknown))
	assert.Equal(t, 3, h.records.writes, "transient write errors are retried")
	assert.Empty(t, h.audit.entries)
	assert.Empty(t, h.tracker.calls)
}

func TestApplyHistoryFailureIsSwallowed(t *testing.T) {
	h := newHarness(pendingRequest())
	h.audit.err = errors.New("history table unavailable")

	res, err := h.svc.Apply(context.Background(), "r1", claimBy("vol-1"), "vol-1")
	require.NoError(t, err)
	assert.True(t, res.Authorized)
	assert.Nil(t, res.History)
	assert.Equal(t, models.StatusInProgress, h.records.get("r1").Status)
}

func TestApplySameStatusWritesNoHistory(t *testing.T) {
	h := newHarness(record(models.StatusInProgress, "vol-1"))

	res, err := h.svc.Apply(context.Background(), "r1",
		Update{Status: status(models.StatusInProgress), Comments: ptr("en route")}, "vol-1")
	require.NoError(t, err)
	assert.Equal(t, "en route", res.Record.Comments)
	assert.Nil(t, res.History)
	assert.Empty(t, h.audit.entries)
	assert.Empty(t, h.tracker.calls)
}

func TestApplyRetriesTransientRead(t *testing.T) {
	h := newHarness(pendingRequest())
	h.records.readFails = 1

	res, err := h.svc.Apply(context.Background(), "r1", claimBy("vol-1"), "vol-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, res.Record.Status)
}

func TestApplyReadFailureExhaustsRetries(t *testing.T) {
	h := newHarness(pendingRequest())
	h.records.readFails = 5

	_, err := h.svc.Apply(context.Background(), "r1", claimBy("vol-1"), "vol-1")
	assert.True(t, apperr.Is(err, apperr.Unknown))
	assert.Zero(t, h.records.writes)
}

func TestRetryStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	p := RetryPolicy{Attempts: 5, BaseDelay: time.Hour}
	err := p.Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errors.New("boom")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryBoundedAttempts(t *testing.T) {
	calls := 0
	p := RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond}
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("connection reset")
	})
	assert.EqualError(t, err, "connection reset")
	assert.Equal(t, 3, calls)

	calls = 0
	err = RetryPolicy{}.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("connection reset")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetrySkipsClassifiedErrors(t *testing.T) {
	calls := 0
	err := DefaultRetry.Do(context.Background(), func(context.Context) error {
		calls++
		return apperr.New(apperr.Conflict, "dup")
	})
	assert.True(t, apperr.Is(err, apperr.Conflict))
	assert.Equal(t, 1, calls)
}
