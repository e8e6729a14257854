// internal/dispatch/dispatcher.go
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"intake-relay/internal/common/logger"
	"intake-relay/internal/common/metrics"
	"intake-relay/internal/models"
	"intake-relay/internal/sheets"
	"intake-relay/internal/twilio"
)

// Reply texts and event fields, verbatim from the SMS conversation design.
const (
	eventTitle       = "ALSOK二次面接"
	confirmReplyText = "面接が確定しました。詳細は後日メールでお送りします。イベントID: %s"
	offerReplyText   = "【変更対応】新しい面接候補時間: %s。よろしければ「1」と返信してください。"
	noSlotReplyText  = "申し訳ございません。現在空きがございません。人事担当より連絡いたします。"

	stopReplyText   = "ALSOK採用チーム: 配信を停止しました。再開は「UNSTOP」と返信してください。"
	unstopReplyText = "ALSOK採用チーム: 配信を再開しました。停止は「STOP」と返信してください。"
	helpReplyText   = "ALSOK採用チーム: 配信停止=「STOP」、再開=「UNSTOP」、このヘルプ=「HELP」と返信してください。"
)

// SMSSender sends one outbound SMS. Satisfied by *twilio.Client.
type SMSSender interface {
	Send(ctx context.Context, to, body string) (*twilio.SendResult, error)
}

// Job is one inbound reply waiting to be acted on. Enqueued by the webhook
// handler after signature verification, processed by a worker.
type Job struct {
	Phone  string
	Body   string
	Intent Intent
}

// Config carries the calendar identity used when booking an interview.
type Config struct {
	CalendarID       string
	Timezone         string
	InterviewerEmail string
	Workers          int
	QueueSize        int
}

// Dispatcher runs inbound reply jobs on a bounded queue so the Twilio
// webhook can acknowledge before any downstream call happens. All failures
// inside a job are logged and counted, never retried.
type Dispatcher struct {
	cfg       Config
	sheets    *sheets.Client
	sms       SMSSender
	directory ApplicantDirectory
	opts      OptStore
	log       logger.Logger

	queue chan Job
	wg    sync.WaitGroup
	once  sync.Once
}

func New(cfg Config, sheetsClient *sheets.Client, sms SMSSender, directory ApplicantDirectory, opts OptStore, log logger.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if directory == nil {
		directory = PhoneKeyDirectory{}
	}
	if opts == nil {
		opts = UnimplementedOptStore{}
	}
	return &Dispatcher{
		cfg:       cfg,
		sheets:    sheetsClient,
		sms:       sms,
		directory: directory,
		opts:      opts,
		log:       log,
		queue:     make(chan Job, cfg.QueueSize),
	}
}

// Start launches the worker pool. Workers exit when Stop closes the queue.
func (d *Dispatcher) Start() {
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for job := range d.queue {
				d.process(context.Background(), job)
			}
		}()
	}
}

// Enqueue hands a job to the worker pool without blocking. A full queue
// drops the job; the inbound message is still acknowledged to Twilio, so
// the drop is surfaced through logs and the drop counter only.
func (d *Dispatcher) Enqueue(job Job) bool {
	select {
	case d.queue <- job:
		return true
	default:
		metrics.DispatchQueueDropped.Inc()
		d.log.Warn("dispatch queue full, dropping inbound reply", map[string]interface{}{
			"phone":  job.Phone,
			"intent": string(job.Intent),
		})
		return false
	}
}

// Stop closes the queue and waits for in-flight jobs, honoring ctx as the
// drain deadline.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.once.Do(func() { close(d.queue) })

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) process(ctx context.Context, job Job) {
	log := d.log.WithFields(map[string]interface{}{
		"phone":  job.Phone,
		"intent": string(job.Intent),
	})

	applicantID, err := d.directory.FindByPhone(ctx, job.Phone)
	if err != nil {
		applicantID = "phone:" + job.Phone
		log.WithError(err).Warn("applicant lookup failed, keying log by phone", nil)
	}

	// The inbound message is recorded before any action so the audit log
	// keeps conversation order even when the action itself fails. Inbound
	// entries carry no operator.
	d.appendMessage(ctx, log, applicantID, models.DirectionIn, job.Body, "")

	outcome := "ok"
	switch job.Intent {
	case IntentAccept:
		err = d.handleAccept(ctx, log, applicantID, job)
	case IntentReschedule:
		err = d.handleReschedule(ctx, log, applicantID, job)
	case IntentOptStop:
		err = d.handleOpt(ctx, log, applicantID, job, stopReplyText, true)
	case IntentOptUnstop:
		err = d.handleOpt(ctx, log, applicantID, job, unstopReplyText, false)
	case IntentHelp:
		err = d.sendAndLog(ctx, log, applicantID, job.Phone, helpReplyText)
	default:
		log.Info("unrecognized reply, logged without action", map[string]interface{}{
			"body": job.Body,
		})
	}
	if err != nil {
		outcome = "error"
		log.WithError(err).Error("inbound reply handling failed", nil)
	}
	metrics.DispatchJobsTotal.WithLabelValues(string(job.Intent), outcome).Inc()
}

// handleAccept books the interview event, confirms by SMS, then marks the
// applicant booked.
// TODO: the slot the applicant accepted is not carried through the SMS
// round-trip yet; until the offered slot is persisted per applicant, book a
// placeholder 24 hours out.
func (d *Dispatcher) handleAccept(ctx context.Context, log logger.Logger, applicantID string, job Job) error {
	slotAt := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)

	eventID, err := d.sheets.CreateEvent(ctx, sheets.Event{
		CalendarID:  d.cfg.CalendarID,
		SlotAt:      slotAt,
		Title:       eventTitle,
		Description: fmt.Sprintf("応募者: %s\n電話: %s", applicantID, job.Phone),
		Attendees:   []string{d.cfg.CalendarID},
		MailTo:      d.cfg.InterviewerEmail,
	})
	if err != nil {
		return err
	}

	if err := d.sendAndLog(ctx, log, applicantID, job.Phone, fmt.Sprintf(confirmReplyText, eventID)); err != nil {
		return err
	}

	return d.sheets.UpdateApplicant(ctx, map[string]interface{}{
		"applicant_id":   applicantID,
		"status":         models.StatusSecondBooked,
		"next_action_at": slotAt,
	})
}

// handleReschedule offers the next open slot, or apologizes when the
// calendar has none.
func (d *Dispatcher) handleReschedule(ctx context.Context, log logger.Logger, applicantID string, job Job) error {
	reply := noSlotReplyText
	slotAt, err := d.sheets.NextFreeSlot(ctx, sheets.DefaultFreeBusyQuery(d.cfg.CalendarID, d.cfg.Timezone))
	if err != nil {
		log.WithError(err).Warn("free-slot lookup failed, sending no-availability reply", nil)
	} else if slotAt != "" {
		reply = fmt.Sprintf(offerReplyText, slotAt)
	}
	return d.sendAndLog(ctx, log, applicantID, job.Phone, reply)
}

// handleOpt acknowledges STOP/UNSTOP and records the consent change when a
// backing store exists.
func (d *Dispatcher) handleOpt(ctx context.Context, log logger.Logger, applicantID string, job Job, reply string, optOut bool) error {
	if err := d.opts.SetOptOut(ctx, applicantID, optOut); err != nil {
		if !errors.Is(err, ErrNotImplemented) {
			log.WithError(err).Warn("opt flag update failed", nil)
		} else {
			log.Debug("opt flag store not wired, acknowledgement only", nil)
		}
	}
	return d.sendAndLog(ctx, log, applicantID, job.Phone, reply)
}

func (d *Dispatcher) sendAndLog(ctx context.Context, log logger.Logger, applicantID, to, body string) error {
	if _, err := d.sms.Send(ctx, to, body); err != nil {
		return err
	}
	d.appendMessage(ctx, log, applicantID, models.DirectionOut, body, "system")
	return nil
}

func (d *Dispatcher) appendMessage(ctx context.Context, log logger.Logger, applicantID, direction, content, operator string) {
	err := d.sheets.AppendMessage(ctx, models.Message{
		ID:          models.NewMessageID(),
		ApplicantID: applicantID,
		At:          models.NowRFC3339(),
		Channel:     models.ChannelSMS,
		Direction:   direction,
		Content:     content,
		Operator:    operator,
	})
	if err != nil {
		log.WithError(err).Error("message log append failed", map[string]interface{}{
			"direction": direction,
		})
	}
}
