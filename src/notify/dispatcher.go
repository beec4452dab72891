package notify

import (
	"campusgate/src/directory"
	"campusgate/src/models"
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

const deliverTimeout = 30 * time.Second

type job struct {
	msg     *Message
	channel Channel
	attempt int
}

// Retrier runs fn once at the given time.
type Retrier interface {
	RetryAt(at time.Time, fn func()) error
}

type GocronRetrier struct {
	sched gocron.Scheduler
}

func NewGocronRetrier(s gocron.Scheduler) *GocronRetrier {
	return &GocronRetrier{sched: s}
}

func (r *GocronRetrier) RetryAt(at time.Time, fn func()) error {
	_, err := r.sched.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(at)),
		gocron.NewTask(fn),
	)
	return err
}

type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	RetryDelay  time.Duration
}

// Dispatcher fans gate-pass notifications out to its channels on a fixed
// worker pool. Failed deliveries are retried per channel through the Retrier
// until MaxAttempts, then dropped.
type Dispatcher struct {
	channels []Channel
	retrier  Retrier
	recorder Recorder
	cfg      DispatcherConfig

	mu     sync.RWMutex
	queue  chan job
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(cfg DispatcherConfig, retrier Retrier, recorder Recorder, channels ...Channel) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	return &Dispatcher{
		channels: channels,
		retrier:  retrier,
		recorder: recorder,
		cfg:      cfg,
		queue:    make(chan job, cfg.QueueSize),
	}
}

func (d *Dispatcher) Start() {
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for j := range d.queue {
				d.deliver(j)
			}
		}()
	}
}

// Close stops accepting messages and waits for queued ones to drain.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) NotifyApprovalPending(_ context.Context, gp *models.GatePass, approver directory.Person) {
	d.publish(KindApprovalPending, gp, approver)
}

func (d *Dispatcher) NotifyOutcome(_ context.Context, gp *models.GatePass, recipient directory.Person) {
	d.publish(KindOutcome, gp, recipient)
}

func (d *Dispatcher) publish(kind Kind, gp *models.GatePass, to directory.Person) {
	msg := &Message{
		ID:        uuid.New(),
		Kind:      kind,
		GatePass:  *gp.Clone(),
		Recipient: to,
		QueuedAt:  time.Now(),
	}
	for _, ch := range d.channels {
		d.enqueue(job{msg: msg, channel: ch, attempt: 1})
	}
}

func (d *Dispatcher) enqueue(j job) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		log.Printf("[notify] Dispatcher closed, dropping %s message %s\n", j.channel.Name(), j.msg.ID)
		return false
	}
	select {
	case d.queue <- j:
		return true
	default:
		log.Printf("[notify] Queue full, dropping %s message %s for gate pass %d\n", j.channel.Name(), j.msg.ID, j.msg.GatePass.ID)
		return false
	}
}

func (d *Dispatcher) deliver(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	err := j.channel.Deliver(ctx, j.msg)
	if errors.Is(err, ErrNotApplicable) {
		return
	}
	if d.recorder != nil {
		d.recorder.Record(ctx, j.msg, j.channel.Name(), j.attempt, err)
	}
	if err == nil {
		return
	}
	log.Printf("[notify] Error delivering %s message %s (attempt %d/%d): %s\n", j.channel.Name(), j.msg.ID, j.attempt, d.cfg.MaxAttempts, err.Error())
	if j.attempt >= d.cfg.MaxAttempts || d.retrier == nil {
		return
	}
	next := job{msg: j.msg, channel: j.channel, attempt: j.attempt + 1}
	if err := d.retrier.RetryAt(time.Now().Add(d.cfg.RetryDelay), func() { d.enqueue(next) }); err != nil {
		log.Printf("[notify] Could not schedule retry for message %s: %s\n", j.msg.ID, err.Error())
	}
}
