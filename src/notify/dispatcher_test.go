package notify

import (
	"campusgate/src/directory"
	"campusgate/src/models"
	"campusgate/src/types"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	gocronmocks "github.com/go-co-op/gocron/mocks/v2"
	"github.com/go-co-op/gocron/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeChannel struct {
	name     string
	mu       sync.Mutex
	failures int
	got      []*Message
	attempts int
}

func (f *fakeChannel) Name() string { return f.name }

func (f *fakeChannel) Deliver(_ context.Context, msg *Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.failures > 0 {
		f.failures--
		return errors.New("smtp unavailable")
	}
	f.got = append(f.got, msg)
	return nil
}

func (f *fakeChannel) delivered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got)
}

func (f *fakeChannel) tries() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

type immediateRetrier struct{}

func (immediateRetrier) RetryAt(_ time.Time, fn func()) error {
	go fn()
	return nil
}

type memRecorder struct {
	mu   sync.Mutex
	rows []string
}

func (m *memRecorder) Record(_ context.Context, msg *Message, channel string, attempt int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status := "sent"
	if err != nil {
		status = "failed"
	}
	m.rows = append(m.rows, channel+":"+status)
}

func (m *memRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func testPass() *models.GatePass {
	return &models.GatePass{
		ID:            42,
		RequesterID:   7,
		RequesterType: types.REQUESTER_STUDENT,
		Type:          types.GATEPASS_TYPE_LEAVE,
		Reason:        "family function",
		Status:        types.GATEPASS_PENDING_HOD,
		StartDate:     time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 10, 19, 18, 0, 0, 0, time.UTC),
	}
}

func TestDispatcherFansOutToChannels(t *testing.T) {
	mail := &fakeChannel{name: "email"}
	sms := &fakeChannel{name: "sms"}
	rec := &memRecorder{}
	d := NewDispatcher(DispatcherConfig{Workers: 2, QueueSize: 8, MaxAttempts: 1}, nil, rec, mail, sms)
	d.Start()

	gp := testPass()
	d.NotifyApprovalPending(context.Background(), gp, directory.Person{ID: 11, Email: "hod@example.com"})
	gp.Status = types.GATEPASS_REJECTED_BY_HOD

	d.Close()
	assert.Equal(t, 1, mail.delivered())
	assert.Equal(t, 1, sms.delivered())
	assert.Equal(t, 2, rec.count())
	assert.Equal(t, types.GATEPASS_PENDING_HOD, mail.got[0].GatePass.Status, "message keeps the snapshot taken at publish time")
	assert.Equal(t, KindApprovalPending, mail.got[0].Kind)
}

func TestDispatcherSkipsChannelsThatDoNotApply(t *testing.T) {
	sender := &fakeSMS{}
	rec := &memRecorder{}
	d := NewDispatcher(DispatcherConfig{Workers: 1, QueueSize: 8, MaxAttempts: 3}, immediateRetrier{}, rec,
		NewSMSChannel(sender, "", time.UTC))
	d.Start()

	d.NotifyApprovalPending(context.Background(), testPass(), directory.Person{ID: 11, ParentPhone: "9876543210"})
	d.Close()

	assert.Empty(t, sender.phones)
	assert.Equal(t, 0, rec.count())
}

func TestDispatcherRetriesFailedDeliveries(t *testing.T) {
	flaky := &fakeChannel{name: "email", failures: 2}
	d := NewDispatcher(DispatcherConfig{Workers: 1, QueueSize: 8, MaxAttempts: 3}, immediateRetrier{}, nil, flaky)
	d.Start()
	defer d.Close()

	d.NotifyOutcome(context.Background(), testPass(), directory.Person{ID: 7, Email: "student@example.com"})

	assert.Eventually(t, func() bool { return flaky.delivered() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 3, flaky.tries())
}

func TestDispatcherGivesUpAfterMaxAttempts(t *testing.T) {
	broken := &fakeChannel{name: "email", failures: 10}
	rec := &memRecorder{}
	d := NewDispatcher(DispatcherConfig{Workers: 1, QueueSize: 8, MaxAttempts: 2}, immediateRetrier{}, rec, broken)
	d.Start()

	d.NotifyOutcome(context.Background(), testPass(), directory.Person{ID: 7})

	assert.Eventually(t, func() bool { return rec.count() == 2 }, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	d.Close()
	assert.Equal(t, 2, broken.tries())
	assert.Equal(t, 0, broken.delivered())
}

func TestDispatcherDropsAfterClose(t *testing.T) {
	ch := &fakeChannel{name: "email"}
	d := NewDispatcher(DispatcherConfig{}, nil, nil, ch)
	d.Start()
	d.Close()
	d.Close()

	assert.NotPanics(t, func() {
		d.NotifyOutcome(context.Background(), testPass(), directory.Person{ID: 7})
	})
	assert.Equal(t, 0, ch.tries())
}

func TestGocronRetrier(t *testing.T) {
	sched, err := gocron.NewScheduler()
	require.NoError(t, err)
	sched.Start()
	defer sched.Shutdown()

	flaky := &fakeChannel{name: "email", failures: 1}
	d := NewDispatcher(DispatcherConfig{Workers: 1, MaxAttempts: 2, RetryDelay: 100 * time.Millisecond}, NewGocronRetrier(sched), nil, flaky)
	d.Start()
	defer d.Close()

	d.NotifyOutcome(context.Background(), testPass(), directory.Person{ID: 7})
	assert.Eventually(t, func() bool { return flaky.delivered() == 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestGocronRetrierSchedulesOneTimeJob(t *testing.T) {
	ctrl := gomock.NewController(t)
	sched := gocronmocks.NewMockScheduler(ctrl)
	job := gocronmocks.NewMockJob(ctrl)
	sched.EXPECT().NewJob(gomock.Any(), gomock.Any()).Return(job, nil)

	err := NewGocronRetrier(sched).RetryAt(time.Now().Add(time.Minute), func() {})
	assert.NoError(t, err)
}

func TestDispatcherDropsWhenRetryCannotBeScheduled(t *testing.T) {
	ctrl := gomock.NewController(t)
	sched := gocronmocks.NewMockScheduler(ctrl)
	sched.EXPECT().NewJob(gomock.Any(), gomock.Any()).Return(nil, errors.New("scheduler stopped")).Times(1)

	rec := &memRecorder{}
	failing := &fakeChannel{name: "email", failures: 5}
	d := NewDispatcher(DispatcherConfig{Workers: 1, MaxAttempts: 3}, NewGocronRetrier(sched), rec, failing)
	d.Start()

	d.NotifyOutcome(context.Background(), testPass(), directory.Person{ID: 7})
	assert.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 10*time.Millisecond)
	d.Close()
	assert.Equal(t, 1, failing.tries())
}
