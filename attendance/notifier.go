package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"absensi-server-go/apperrors"
	"absensi-server-go/models"
	"absensi-server-go/notify"
)

// DefaultThreshold is the all-time absence count that triggers a warning.
const DefaultThreshold = 3

// AbsenceCounter is the store query behind the threshold check
type AbsenceCounter interface {
	AbsenceCounts(ctx context.Context) ([]models.AbsenceCount, error)
}

// Ledger remembers the absence count at which each student was last
// notified. It is only consulted when de-duplication is enabled.
type Ledger interface {
	LastNotified(ctx context.Context, studentID int64) (int, error)
	MarkNotified(ctx context.Context, studentID int64, count int) error
	Forget(ctx context.Context, studentIDs ...int64) error
	Reset(ctx context.Context) error
}

// Alert is one student at or over the threshold
type Alert struct {
	StudentID    int64  `json:"student_id"`
	Nama         string `json:"nama"`
	Kelas        string `json:"kelas"`
	AbsenceCount int    `json:"absence_count"`
}

// Message is the chat text sent for the alert.
func (a Alert) Message() string {
	return fmt.Sprintf("Peringatan: %s (kelas %s) sudah %d kali alfa.", a.Nama, a.Kelas, a.AbsenceCount)
}

// NotifierConfig configures a Notifier
type NotifierConfig struct {
	Threshold   int
	Destination string        // chat id handed to the channel
	SendTimeout time.Duration // per message
	Ledger      Ledger        // nil disables de-duplication
}

// Notifier checks all-time absence counts after attendance writes and sends
// one message per student at or over the threshold.
type Notifier struct {
	counter AbsenceCounter
	channel notify.Channel
	cfg     NotifierConfig
	logger  *log.Logger
}

func NewNotifier(counter AbsenceCounter, channel notify.Channel, cfg NotifierConfig, logger *log.Logger) *Notifier {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 5 * time.Second
	}
	return &Notifier{counter: counter, channel: channel, cfg: cfg, logger: logger}
}

// Threshold returns the configured threshold
func (n *Notifier) Threshold() int {
	return n.cfg.Threshold
}

// CheckAndNotify returns every student whose all-time Absent count is at
// least threshold, ordered by student id.
func (n *Notifier) CheckAndNotify(ctx context.Context, threshold int) ([]Alert, error) {
	counts, err := n.counter.AbsenceCounts(ctx)
	if err != nil {
		return nil, err
	}
	alerts := []Alert{}
	for _, c := range counts {
		if c.Count >= threshold {
			alerts = append(alerts, Alert{StudentID: c.StudentID, Nama: c.Nama, Kelas: c.Kelas, AbsenceCount: c.Count})
		}
	}
	return alerts, nil
}

// Run checks the threshold and dispatches the alerts. It never fails: the
// attendance write that triggered it is already committed, so problems are
// only logged. It returns the alerts that were handed to the channel.
func (n *Notifier) Run(ctx context.Context) []Alert {
	alerts, err := n.CheckAndNotify(ctx, n.cfg.Threshold)
	if err != nil {
		n.logger.Error("absence threshold check failed", "err", err)
		return nil
	}
	if n.cfg.Ledger != nil {
		alerts = n.filterNew(ctx, alerts)
	}

	sent := make([]Alert, 0, len(alerts))
	for _, a := range alerts {
		if err := n.send(ctx, a); err != nil {
			n.logger.Warn("notification not delivered",
				"student_id", a.StudentID, "absences", a.AbsenceCount,
				"kind", apperrors.KindOf(err), "err", err)
			continue
		}
		sent = append(sent, a)
		if n.cfg.Ledger != nil {
			if err := n.cfg.Ledger.MarkNotified(ctx, a.StudentID, a.AbsenceCount); err != nil {
				n.logger.Warn("failed to record notification", "student_id", a.StudentID, "err", err)
			}
		}
	}
	return sent
}

// filterNew keeps the alerts whose count reached a higher multiple of the
// threshold than the last notified count. A ledger error keeps the alert.
func (n *Notifier) filterNew(ctx context.Context, alerts []Alert) []Alert {
	kept := alerts[:0]
	for _, a := range alerts {
		last, err := n.cfg.Ledger.LastNotified(ctx, a.StudentID)
		if err != nil {
			n.logger.Warn("notification ledger unavailable", "student_id", a.StudentID, "err", err)
			kept = append(kept, a)
			continue
		}
		if a.AbsenceCount/n.cfg.Threshold > last/n.cfg.Threshold {
			kept = append(kept, a)
		}
	}
	return kept
}

func (n *Notifier) send(ctx context.Context, a Alert) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel panic: %v", r)
		}
		if err != nil {
			err = apperrors.Notification(err)
		}
	}()
	sendCtx, cancel := context.WithTimeout(ctx, n.cfg.SendTimeout)
	defer cancel()
	return n.channel.Send(sendCtx, n.cfg.Destination, a.Message())
}

// Forget removes deleted students from the ledger, if any.
func (n *Notifier) Forget(ctx context.Context, studentIDs ...int64) {
	if n.cfg.Ledger == nil {
		return
	}
	if err := n.cfg.Ledger.Forget(ctx, studentIDs...); err != nil {
		n.logger.Warn("failed to update notification ledger", "err", err)
	}
}

// Reset clears the ledger, if any, after the history is wiped.
func (n *Notifier) Reset(ctx context.Context) {
	if n.cfg.Ledger == nil {
		return
	}
	if err := n.cfg.Ledger.Reset(ctx); err != nil {
		n.logger.Warn("failed to reset notification ledger", "err", err)
	}
}
