package mail

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/rs/zerolog"

	"github.com/AHLJvanderPlas/Podfy-app/internal/brand"
	"github.com/AHLJvanderPlas/Podfy-app/internal/config"
	"github.com/AHLJvanderPlas/Podfy-app/internal/logger"
	"github.com/AHLJvanderPlas/Podfy-app/internal/model"
)

// Outcome records whether a recipient group needed a notification and
// whether it was delivered.
type Outcome struct {
	Required bool
	Sent     bool
}

// Satisfied is true when the group either required no notification or got
// one delivered.
func (o Outcome) Satisfied() bool {
	return !o.Required || o.Sent
}

// Outcomes is the per-group result of one dispatch. Failures never
// propagate as errors; callers branch on the outcome values.
type Outcomes struct {
	Staff    Outcome
	Uploader Outcome
}

// RetrySink receives notifications that failed to deliver inline so a
// worker can retry them later.
type RetrySink interface {
	EnqueueNotify(ctx context.Context, job model.NotifyJob) error
}

type Dispatcher struct {
	sender Sender
	from   string
	attach bool
	retry  RetrySink
	log    zerolog.Logger
}

// NewDispatcher builds a dispatcher. retry may be nil, in which case failed
// sends are only reflected in the outcome.
func NewDispatcher(cfg *config.Config, sender Sender, retry RetrySink) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		from:   cfg.Mail.From,
		attach: cfg.Mail.AttachCopy,
		retry:  retry,
		log:    logger.For("mail"),
	}
}

// Notify sends the staff notification and, when the uploader left an email
// address, the uploader confirmation. The two groups are independent: a
// staff failure does not stop the uploader send. Never returns an error.
func (d *Dispatcher) Notify(ctx context.Context, rec *model.Transaction, b brand.Brand, uploaderEmail string, fileCopy *Attachment) Outcomes {
	var out Outcomes

	out.Staff.Required = len(b.Recipients) > 0
	if out.Staff.Required {
		out.Staff.Sent = d.send(ctx, rec, "staff", b.Recipients,
			fmt.Sprintf("POD received for %s (%s)", b.DisplayName, rec.RecordID),
			staffBody(rec, b), nil)
	}

	out.Uploader.Required = strings.TrimSpace(uploaderEmail) != ""
	if out.Uploader.Required {
		var att *Attachment
		if d.attach {
			att = fileCopy
		}
		out.Uploader.Sent = d.send(ctx, rec, "uploader", []string{uploaderEmail},
			fmt.Sprintf("Your proof of delivery %s", rec.RecordID),
			uploaderBody(rec, b), att)
	}

	return out
}

func (d *Dispatcher) send(ctx context.Context, rec *model.Transaction, group string, to []string, subject, body string, att *Attachment) bool {
	ok, err := d.sender.Send(Message{
		From:       d.from,
		To:         to,
		Subject:    subject,
		HTMLBody:   body,
		Attachment: att,
	})
	if err != nil {
		d.log.Error().Err(err).Str("record_id", rec.RecordID).Str("group", group).Msg("Mail message rejected as malformed")
		return false
	}
	if ok {
		return true
	}

	d.log.Warn().Str("record_id", rec.RecordID).Str("group", group).Msg("Mail delivery failed")
	if d.retry != nil {
		job := model.NotifyJob{
			RecordID:  rec.RecordID,
			BrandSlug: rec.BrandSlug,
			Group:     group,
			To:        to,
			Subject:   subject,
			HTMLBody:  body,
		}
		if qErr := d.retry.EnqueueNotify(ctx, job); qErr != nil {
			d.log.Error().Err(qErr).Str("record_id", rec.RecordID).Msg("Failed to queue notification for retry")
		}
	}
	return false
}

var staffTmpl = template.Must(template.New("staff").Parse(`<h2>New proof of delivery</h2>
<p><b>{{.Brand}}</b> received a POD upload.</p>
<table>
<tr><td>Record</td><td>{{.RecordID}}</td></tr>
<tr><td>Reference</td><td>{{.Reference}}</td></tr>
<tr><td>Uploaded</td><td>{{.Date}} {{.Time}}</td></tr>
<tr><td>Location</td><td>{{.Location}}</td></tr>
<tr><td>File</td><td>{{.StorageKey}}</td></tr>
</table>`))

var uploaderTmpl = template.Must(template.New("uploader").Parse(`<p>Thank you. Your proof of delivery was received by {{.Brand}}.</p>
<p>Your reference: <b>{{.RecordID}}</b></p>
<p>Uploaded {{.Date}} at {{.Time}}.</p>`))

type bodyData struct {
	Brand      string
	RecordID   string
	Reference  string
	Date       string
	Time       string
	Location   string
	StorageKey string
}

func renderBody(t *template.Template, rec *model.Transaction, b brand.Brand) string {
	loc := string(model.SourceUnknown)
	if ch := rec.Location.Chosen; ch != nil {
		loc = fmt.Sprintf("%.5f, %.5f (%s)", ch.Lat, ch.Lon, ch.Source)
	}
	var sb strings.Builder
	// Template execution over a flat struct cannot fail at runtime.
	_ = t.Execute(&sb, bodyData{
		Brand:      b.DisplayName,
		RecordID:   rec.RecordID,
		Reference:  rec.Reference,
		Date:       rec.UploadDate,
		Time:       rec.UploadTime,
		Location:   loc,
		StorageKey: rec.StorageKey,
	})
	return sb.String()
}

func staffBody(rec *model.Transaction, b brand.Brand) string {
	return renderBody(staffTmpl, rec, b)
}

func uploaderBody(rec *model.Transaction, b brand.Brand) string {
	return renderBody(uploaderTmpl, rec, b)
}
