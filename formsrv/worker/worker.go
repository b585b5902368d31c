// Package worker delivers confirmation mails asynchronously so that sign up
// does not wait for the mail transport.
package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/G-Node/formsrv/formsrv/db"
	"go.uber.org/zap"
)

// Sender delivers a single confirmation mail.
type Sender interface {
	SendConfirmation(ctx context.Context, user *db.User, link string) error
}

// ErrQueueFull is returned when a mail can't be queued.
var ErrQueueFull = errors.New("mail queue is full")

// job is a queued confirmation mail.
type job struct {
	user db.User
	link string
}

// Worker with queue for sending confirmation mails.  It implements the
// Mailer interface of the auth package.
type Worker struct {
	queue  chan job
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
	sender Sender
	log    *zap.Logger
}

// New returns a worker that hands queued mails to sender.  The queue holds
// up to size mails.
func New(sender Sender, size int, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := new(Worker)
	w.queue = make(chan job, size)
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	w.sender = sender
	w.log = logger
	return w
}

// SetLogger replaces the logger of the worker.  It must not be called after
// Start.
func (w *Worker) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w.log = logger
}

// SendConfirmation queues a confirmation mail for the user.  It does not
// block.
func (w *Worker) SendConfirmation(_ context.Context, user *db.User, link string) error {
	select {
	case w.queue <- job{user: *user, link: link}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (w *Worker) run(j job) {
	if err := w.sender.SendConfirmation(context.Background(), &j.user, j.link); err != nil {
		w.log.Error("Failed to send confirmation mail", zap.String("email", j.user.Email), zap.Error(err))
		return
	}
	w.log.Debug("Confirmation mail sent", zap.String("email", j.user.Email))
}

// Start processing the queue in a goroutine.
func (w *Worker) Start() {
	go func() {
		defer close(w.done)
		for {
			select {
			case j := <-w.queue:
				w.run(j)
			case <-w.stop:
				w.drain()
				return
			}
		}
	}()
}

// drain sends the mails still in the queue.
func (w *Worker) drain() {
	for {
		select {
		case j := <-w.queue:
			w.run(j)
		default:
			return
		}
	}
}

// Stop sends the remaining queued mails and stops the worker.  Stop must
// only be called after Start.
func (w *Worker) Stop() {
	w.once.Do(func() { close(w.stop) })
	<-w.done
}
