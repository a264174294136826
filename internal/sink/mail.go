package sink

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/mwt/signals/internal/contracts"
	"github.com/mwt/signals/pkg/config"
	"github.com/mwt/signals/pkg/logger"
)

// Mailer sends the daily order report as an HTML table. Mail failure
// is logged but never fails the run; the CSV is the order of record.
type Mailer struct {
	cfg    config.MailConfig
	logger *logger.Logger

	// send is swappable for tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(cfg config.MailConfig, log *logger.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: log, send: smtp.SendMail}
}

// Emit renders and sends the report to the configured recipients.
func (m *Mailer) Emit(_ context.Context, runID string, date time.Time, orders []contracts.Order) error {
	if !m.cfg.Enabled || len(m.cfg.Recipients) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Daily Orders %s (%d orders)", date.Format("2006-01-02"), len(orders))
	body := renderReport(runID, date, orders)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(m.cfg.Recipients, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := m.cfg.Host + ":" + m.cfg.Port

	if err := m.send(addr, auth, m.cfg.From, m.cfg.Recipients, []byte(msg.String())); err != nil {
		m.logger.WithError(err).Error("Failed to send order report")
		return fmt.Errorf("send report: %w", err)
	}
	m.logger.WithFields(map[string]interface{}{
		"recipients": len(m.cfg.Recipients),
		"orders":     len(orders),
	}).Info("Order report sent")
	return nil
}

// renderReport builds the HTML body: a summary line and one table row
// per order, grouped in emission order (strategy priority).
func renderReport(runID string, date time.Time, orders []contracts.Order) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	fmt.Fprintf(&b, "<h2>Daily Orders %s</h2>", date.Format("2006-01-02"))
	fmt.Fprintf(&b, "<p>Run %s generated %d orders.</p>", runID, len(orders))

	if len(orders) == 0 {
		b.WriteString("<p>No signals today.</p></body></html>")
		return b.String()
	}

	b.WriteString(`<table border="1" cellpadding="4" cellspacing="0">`)
	b.WriteString("<tr><th>Symbol</th><th>Action</th><th>Qty</th><th>Type</th><th>Limit</th><th>TIF</th><th>Strategy</th></tr>")
	for _, o := range orders {
		limit := ""
		if o.OrderType == contracts.OrderTypeLimit {
			limit = fmt.Sprintf("%.2f", o.LimitPrice)
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%d</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			o.Symbol, o.Action, o.Quantity, o.OrderType, limit, o.TimeInForce, o.Strategy)
	}
	b.WriteString("</table></body></html>")
	return b.String()
}
