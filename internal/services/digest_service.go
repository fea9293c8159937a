package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"bizdash/internal/models"
	"bizdash/internal/scheduler"
)

type MailSender interface {
	SendDigestEmail(to, subject, htmlBody string) error
}

type ChatSender interface {
	SendMessage(chatID int64, text string) error
}

type DigestRecipient struct {
	Name           string
	Email          string
	TelegramChatID int64
	AssignedTo     string // empty = all items
}

// Digest lists what needs attention today for one recipient.
type Digest struct {
	Recipient string                 `json:"recipient"`
	Date      string                 `json:"date"`
	Overdue   []models.SchedulerItem `json:"overdue"`
	DueToday  []models.SchedulerItem `json:"due_today"`
}

func (d Digest) Empty() bool { return len(d.Overdue) == 0 && len(d.DueToday) == 0 }

type DigestReport struct {
	Recipients int      `json:"recipients"`
	Emails     int      `json:"emails"`
	Telegrams  int      `json:"telegrams"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
}

type DigestOptions struct {
	LookbackDays int
	Location     *time.Location
	Clock        func() time.Time
}

type DigestService interface {
	Build(items []models.SchedulerItem, now time.Time, r DigestRecipient) Digest
	Send(ctx context.Context) (DigestReport, error)
}

type digestService struct {
	source     ItemSource
	mail       MailSender
	chat       ChatSender
	recipients []DigestRecipient
	opts       DigestOptions
}

func NewDigestService(source ItemSource, mail MailSender, chat ChatSender, recipients []DigestRecipient, opts DigestOptions) DigestService {
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = 30
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &digestService{source: source, mail: mail, chat: chat, recipients: recipients, opts: opts}
}

// Build keeps the open items that are overdue or due today, sorted like the list view.
func (s *digestService) Build(items []models.SchedulerItem, now time.Time, r DigestRecipient) Digest {
	d := Digest{Recipient: r.Name, Date: scheduler.Today(now).Format(models.DateLayout)}
	for _, it := range scheduler.SortForDisplay(items) {
		if it.IsCompleted() {
			continue
		}
		if r.AssignedTo != "" && it.AssignedTo != r.AssignedTo {
			continue
		}
		switch scheduler.BucketOf(it, now) {
		case scheduler.BucketOverdue:
			d.Overdue = append(d.Overdue, it)
		case scheduler.BucketToday:
			d.DueToday = append(d.DueToday, it)
		}
	}
	return d
}

func (s *digestService) Send(ctx context.Context) (DigestReport, error) {
	now := s.opts.Clock().In(s.opts.Location)
	today := scheduler.Today(now)
	items, err := s.source.GetSchedulerItems(ctx, models.FetchParams{
		StartDate: today.AddDate(0, 0, -s.opts.LookbackDays),
		EndDate:   today,
	})
	if err != nil {
		log.Printf("[digest][fetch][err] %v", err)
		return DigestReport{}, fmt.Errorf("digest fetch: %w", err)
	}
	valid := items[:0:0]
	for _, it := range items {
		if verr := it.Validate(); verr != nil {
			log.Printf("[digest][ingest][skip] %v", verr)
			continue
		}
		valid = append(valid, it)
	}

	report := DigestReport{Recipients: len(s.recipients)}
	var errs []error
	for _, r := range s.recipients {
		d := s.Build(valid, now, r)
		if d.Empty() {
			report.Skipped++
			log.Printf("[digest][skip] recipient=%q nothing due", r.Name)
			continue
		}
		if r.Email != "" && s.mail != nil {
			if err := s.mail.SendDigestEmail(r.Email, DigestSubject(d), DigestHTML(d)); err != nil {
				errs = append(errs, fmt.Errorf("email %s: %w", r.Email, err))
			} else {
				report.Emails++
			}
		}
		if r.TelegramChatID != 0 && s.chat != nil {
			if err := s.chat.SendMessage(r.TelegramChatID, DigestTelegram(d)); err != nil {
				errs = append(errs, fmt.Errorf("telegram %d: %w", r.TelegramChatID, err))
			} else {
				report.Telegrams++
			}
		}
	}
	for _, e := range errs {
		report.Errors = append(report.Errors, e.Error())
	}
	log.Printf("[digest][ok] recipients=%d emails=%d telegrams=%d skipped=%d errors=%d",
		report.Recipients, report.Emails, report.Telegrams, report.Skipped, len(errs))
	return report, errors.Join(errs...)
}

func DigestSubject(d Digest) string {
	return fmt.Sprintf("Schedule for %s: %d overdue, %d due today", d.Date, len(d.Overdue), len(d.DueToday))
}

func DigestHTML(d Digest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Schedule for %s</h2>\n", html.EscapeString(d.Date))
	section := func(title string, items []models.SchedulerItem) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "<h3>%s (%d)</h3>\n<ul>\n", title, len(items))
		for _, it := range items {
			fmt.Fprintf(&b, "<li><strong>%s</strong> [%s] %s due %s</li>\n",
				html.EscapeString(it.Title), it.Priority, html.EscapeString(scheduler.Subtitle(it)),
				it.DueDate.Format(models.DateLayout))
		}
		b.WriteString("</ul>\n")
	}
	section("Overdue", d.Overdue)
	section("Due today", d.DueToday)
	return b.String()
}

// DigestTelegram renders the digest in the subset of HTML the Bot API accepts.
func DigestTelegram(d Digest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Schedule for %s</b>\n", html.EscapeString(d.Date))
	section := func(title string, items []models.SchedulerItem) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n<b>%s</b>\n", title)
		for _, it := range items {
			fmt.Fprintf(&b, "• %s <i>%s</i>\n", html.EscapeString(it.Title), it.Priority)
		}
	}
	section(fmt.Sprintf("Overdue: %d", len(d.Overdue)), d.Overdue)
	section(fmt.Sprintf("Due today: %d", len(d.DueToday)), d.DueToday)
	return b.String()
}
