package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Atul2512anand/buildforage5/pkg/queue"
)

// Mailer delivers one email.
type Mailer interface {
	Send(ctx context.Context, email queue.EmailPayload) error
}

// LogMailer writes emails to the log. It stands in for an SMTP or API provider.
type LogMailer struct {
	From   string
	Logger *zap.Logger
}

// Send logs the email.
func (m *LogMailer) Send(_ context.Context, email queue.EmailPayload) error {
	if email.RecipientEmail == "" {
		return fmt.Errorf("email %q has no recipient", email.Subject)
	}
	m.Logger.Info("email delivered to log",
		zap.String("from", m.From),
		zap.String("to", email.RecipientEmail),
		zap.String("reply_to", email.ReplyTo),
		zap.String("type", email.EmailType),
		zap.String("subject", email.Subject),
	)
	return nil
}

// JobSource is the part of queue.Queue the processor consumes.
type JobSource interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// EmailProcessor processes email jobs.
type EmailProcessor struct {
	mailer  Mailer
	queue   JobSource
	logger  *zap.Logger
	backoff time.Duration
}

// NewEmailProcessor creates an email processor.
func NewEmailProcessor(mailer Mailer, q JobSource, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{mailer: mailer, queue: q, logger: logger, backoff: queue.RetryBackoff}
}

// Process executes one email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := p.mailer.Send(ctx, payload); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	p.logger.Info("email job completed", zap.String("job_id", job.ID), zap.String("email_type", payload.EmailType))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *EmailProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Inline delivers emails synchronously. It is used when no Redis queue is configured.
type Inline struct {
	Mailer Mailer
}

// EnqueueEmail sends the email immediately.
func (i Inline) EnqueueEmail(ctx context.Context, email queue.EmailPayload) error {
	return i.Mailer.Send(ctx, email)
}
