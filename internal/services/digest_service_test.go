package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdash/internal/models"
)

type sentMail struct{ to, subject, body string }

type fakeMail struct {
	sent []sentMail
	err  error
}

func (f *fakeMail) SendDigestEmail(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to, subject, body})
	return nil
}

type fakeChat struct {
	chats []int64
	texts []string
}

func (f *fakeChat) SendMessage(chatID int64, text string) error {
	f.chats = append(f.chats, chatID)
	f.texts = append(f.texts, text)
	return nil
}

func digestItems() []models.SchedulerItem {
	late := newTask("late", -2, models.StatusInProgress)
	late.Title = "Send <report>"
	late.AssignedTo = "u1"
	today := newTask("today", 0, models.StatusNotStarted)
	today.AssignedTo = "u2"
	return []models.SchedulerItem{
		late,
		today,
		newTask("done", 0, models.StatusCompleted),
		newTask("tomorrow", 1, models.StatusNotStarted),
	}
}

func TestDigest_Build(t *testing.T) {
	svc := NewDigestService(&fakeSource{}, nil, nil, nil, DigestOptions{Location: time.UTC, Clock: fixedClock})

	d := svc.Build(digestItems(), refNow, DigestRecipient{Name: "all"})
	assert.Equal(t, "2025-03-12", d.Date)
	assert.Equal(t, []string{"late"}, ids(d.Overdue))
	assert.Equal(t, []string{"today"}, ids(d.DueToday))

	mine := svc.Build(digestItems(), refNow, DigestRecipient{Name: "u2", AssignedTo: "u2"})
	assert.Empty(t, mine.Overdue)
	assert.Equal(t, []string{"today"}, ids(mine.DueToday))
}

func TestDigest_Send(t *testing.T) {
	src := &fakeSource{items: digestItems()}
	mail := &fakeMail{}
	chat := &fakeChat{}
	recipients := []DigestRecipient{
		{Name: "ops", Email: "ops@example.com", TelegramChatID: 42},
		{Name: "nobody", Email: "n@example.com", AssignedTo: "u9"},
	}
	svc := NewDigestService(src, mail, chat, recipients, DigestOptions{Location: time.UTC, Clock: fixedClock})

	report, err := svc.Send(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DigestReport{Recipients: 2, Emails: 1, Telegrams: 1, Skipped: 1}, report)

	require.Len(t, src.calls, 1)
	assert.Equal(t, "2025-02-10", src.calls[0].StartISO())
	assert.Equal(t, "2025-03-12", src.calls[0].EndISO())

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "Schedule for 2025-03-12: 1 overdue, 1 due today", mail.sent[0].subject)
	assert.Contains(t, mail.sent[0].body, "Send &lt;report&gt;")
	assert.Equal(t, []int64{42}, chat.chats)
	assert.Contains(t, chat.texts[0], "<b>Overdue: 1</b>")
}

func TestDigest_SendCollectsErrors(t *testing.T) {
	src := &fakeSource{items: digestItems()}
	mail := &fakeMail{err: errors.New("smtp down")}
	svc := NewDigestService(src, mail, nil, []DigestRecipient{{Name: "ops", Email: "ops@example.com"}},
		DigestOptions{Location: time.UTC, Clock: fixedClock})

	report, err := svc.Send(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, report.Emails)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "smtp down")

	src.err = errors.New("upstream down")
	_, err = svc.Send(context.Background())
	assert.Error(t, err)
}

func TestTelegramService_SendMessage(t *testing.T) {
	var sent []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"bot","username":"bizdash_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "42", r.FormValue("chat_id"))
			assert.Equal(t, "HTML", r.FormValue("parse_mode"))
			sent = append(sent, r.FormValue("text"))
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tg := NewTelegramService("TOKEN").WithEndpoint(srv.URL + "/bot%s/%s")
	require.NoError(t, tg.SendMessage(42, "<b>hi</b>"))
	require.NoError(t, tg.SendMessage(0, "skipped"))
	assert.Equal(t, []string{"<b>hi</b>"}, sent)

	var empty *TelegramService
	assert.NoError(t, empty.SendMessage(42, "nil receiver"))
}
