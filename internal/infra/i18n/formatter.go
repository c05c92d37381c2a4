package i18n

import (
	"fmt"
	"strings"
	"time"

	"github.com/scmsohel/epic-loot-bot/internal/domain/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	// DateTimeLayout renders like "May 09, 09:00 PM".
	DateTimeLayout = "Jan 02, 03:04 PM"
	// DateLayout renders like "May 09".
	DateLayout = "Jan 02"
)

// Formatter turns offers into the Markdown texts the bot sends.
// Times are expected to already be in the display zone.
type Formatter struct {
	tr *Translator
}

func NewFormatter(tr *Translator) *Formatter {
	return &Formatter{tr: tr}
}

func (f *Formatter) T(key string, args ...any) string {
	return f.tr.T(key, args...)
}

// Status builds the /status report. It is empty when there is nothing to list.
func (f *Formatter) Status(o *model.Offers) string {
	if o.IsEmpty() {
		return ""
	}
	var sb strings.Builder
	if len(o.FreeNow) > 0 {
		sb.WriteString(f.tr.T("status_free_header"))
		for _, g := range o.FreeNow {
			sb.WriteString(f.tr.T("status_free_item", escape(g.Title), g.End.Format(DateTimeLayout)))
		}
		sb.WriteString("\n")
	}
	if len(o.ComingSoon) > 0 {
		sb.WriteString(f.tr.T("status_soon_header"))
		for _, g := range o.ComingSoon {
			sb.WriteString(f.tr.T("status_soon_item", escape(g.Title), g.Start.Format(DateLayout), g.End.Format(DateLayout)))
		}
	}
	return strings.TrimSpace(sb.String())
}

func (f *Formatter) Announcement(g model.FreeGame) string {
	if g.End.IsZero() {
		return f.tr.T("announce_new_no_end", escape(g.Title))
	}
	return f.tr.T("announce_new", escape(g.Title), g.End.Format(DateTimeLayout))
}

func (f *Formatter) Broadcast(text string) string {
	return f.tr.T("broadcast_prefix") + "\n\n" + text
}

// escape protects titles like "Shadow_Tactics" from breaking legacy Markdown.
func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// DisplayZone is the fixed offset zone used for all rendered times.
func DisplayZone(offset time.Duration) *time.Location {
	name := "UTC"
	if offset != 0 {
		sign := "+"
		if offset < 0 {
			sign = "-"
		}
		h := offset / time.Hour
		if h < 0 {
			h = -h
		}
		m := (offset % time.Hour) / time.Minute
		if m < 0 {
			m = -m
		}
		name = fmt.Sprintf("UTC%s%d", sign, h)
		if m != 0 {
			name += fmt.Sprintf(":%02d", m)
		}
	}
	return time.FixedZone(name, int(offset/time.Second))
}
