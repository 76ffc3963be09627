package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"SignalHub/internal/domain/models"
	drepo "SignalHub/internal/domain/repository"
	"SignalHub/pkg/logger"
	"SignalHub/pkg/queue"
)

const (
	taskBroadcast = "push.broadcast"
	taskPrincipal = "push.principal"
)

// Enqueuer is the delivery queue boundary. Nil means deliver inline.
type Enqueuer interface {
	Enqueue(ctx context.Context, taskType string, payload interface{}) error
}

type pushJob struct {
	PrincipalID string            `json:"principal_id,omitempty"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Data        map[string]string `json:"data,omitempty"`
}

// Dispatcher turns signal lifecycle changes into push notifications.
// Create broadcasts to everyone; status changes go to followers, and
// only for the milestone statuses. Delivery is best-effort: a failed
// push is logged and counted but never rolls back the signal mutation.
// With a queue attached delivery is asynchronous at-least-once; without
// one it runs inline on the caller's goroutine.
type Dispatcher struct {
	push    drepo.Pusher
	subs    drepo.SubscriberDirectory
	queue   Enqueuer
	log     *logger.Logger
	metrics drepo.Metrics
}

func NewDispatcher(push drepo.Pusher, subs drepo.SubscriberDirectory, log *logger.Logger, metrics drepo.Metrics) *Dispatcher {
	return &Dispatcher{push: push, subs: subs, log: log, metrics: metrics}
}

// BindQueue attaches a delivery queue and registers its task handlers.
func (d *Dispatcher) BindQueue(q *queue.RedisQueue) {
	d.queue = q
	q.Register(taskBroadcast, d.handleBroadcastTask)
	q.Register(taskPrincipal, d.handlePrincipalTask)
}

// SignalCreated announces a new signal to every registered device.
func (d *Dispatcher) SignalCreated(ctx context.Context, s *models.Signal) {
	title := "New signal: " + s.Pair
	body := fmt.Sprintf("%s %s @ %s", s.Pair, s.Direction, s.Entry.String())
	d.deliverBroadcast(ctx, pushJob{
		Title: title,
		Body:  body,
		Data:  map[string]string{"signal_id": s.ID, "event": string(models.EventSignalCreated)},
	})
}

// StatusChanged notifies followers of a milestone transition. Silent
// statuses are filtered here so every caller gets the same policy.
func (d *Dispatcher) StatusChanged(ctx context.Context, s *models.Signal, to models.Status) {
	if !to.Notifies() {
		return
	}
	followers, err := d.subs.Followers(ctx, s.ID)
	if err != nil {
		d.log.Warn("followers lookup failed", logger.String("signal_id", s.ID), logger.Error(err))
		d.metrics.RecordError("followers_lookup")
		return
	}
	title := s.Pair + " update"
	body := fmt.Sprintf("%s moved to %s", s.Pair, to)
	data := map[string]string{
		"signal_id": s.ID,
		"event":     string(models.EventSignalStatusChanged),
		"status":    string(to),
	}
	for _, pid := range followers {
		d.deliverToPrincipal(ctx, pushJob{PrincipalID: pid, Title: title, Body: body, Data: data})
	}
}

func (d *Dispatcher) deliverBroadcast(ctx context.Context, job pushJob) {
	if d.queue != nil {
		if err := d.queue.Enqueue(ctx, taskBroadcast, job); err == nil {
			d.metrics.RecordDispatch("broadcast", "queued")
			return
		}
		// queue down, fall through to inline delivery
	}
	d.broadcast(ctx, job)
}

func (d *Dispatcher) deliverToPrincipal(ctx context.Context, job pushJob) {
	if d.queue != nil {
		if err := d.queue.Enqueue(ctx, taskPrincipal, job); err == nil {
			d.metrics.RecordDispatch("principal", "queued")
			return
		}
	}
	d.sendToPrincipal(ctx, job)
}

func (d *Dispatcher) broadcast(ctx context.Context, job pushJob) {
	n, err := d.push.Broadcast(ctx, job.Title, job.Body, job.Data)
	if err != nil {
		d.log.Warn("broadcast failed", logger.Error(err))
		d.metrics.RecordDispatch("broadcast", "error")
		return
	}
	d.metrics.RecordDispatch("broadcast", "ok")
	d.log.Info("broadcast delivered", logger.Int("devices", n))
}

func (d *Dispatcher) sendToPrincipal(ctx context.Context, job pushJob) {
	ok, err := d.push.SendToPrincipal(ctx, job.PrincipalID, job.Title, job.Body, job.Data)
	if err != nil {
		d.log.Warn("principal push failed",
			logger.String("principal", job.PrincipalID), logger.Error(err))
		d.metrics.RecordDispatch("principal", "error")
		return
	}
	if !ok {
		d.metrics.RecordDispatch("principal", "unreachable")
		return
	}
	d.metrics.RecordDispatch("principal", "ok")
}

func (d *Dispatcher) handleBroadcastTask(ctx context.Context, payload json.RawMessage) error {
	job, err := queue.ParsePayload[pushJob](payload)
	if err != nil {
		return err
	}
	_, err = d.push.Broadcast(ctx, job.Title, job.Body, job.Data)
	if err != nil {
		d.metrics.RecordDispatch("broadcast", "error")
		return err
	}
	d.metrics.RecordDispatch("broadcast", "ok")
	return nil
}

func (d *Dispatcher) handlePrincipalTask(ctx context.Context, payload json.RawMessage) error {
	job, err := queue.ParsePayload[pushJob](payload)
	if err != nil {
		return err
	}
	ok, err := d.push.SendToPrincipal(ctx, job.PrincipalID, job.Title, job.Body, job.Data)
	if err != nil {
		d.metrics.RecordDispatch("principal", "error")
		return err
	}
	if !ok {
		d.metrics.RecordDispatch("principal", "unreachable")
		return nil
	}
	d.metrics.RecordDispatch("principal", "ok")
	return nil
}
