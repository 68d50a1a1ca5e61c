package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/riverwatch/go-flood-routes/internal/models"
)

// Mailer sends a single plain-text message.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer delivers through a plain SMTP relay.
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
		auth: auth,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("error sending mail to %s: %w", to, err)
	}
	return nil
}

func alertSubject(level models.RiskLevel) string {
	return fmt.Sprintf("Flood risk alert: %s risk at your location", level)
}

func alertBody(sub *models.Subscription, a *models.RiskAssessment) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Flood risk at (%.5f, %.5f) is now %s.\n\n", sub.Latitude, sub.Longitude, a.RiskLevel)
	if a.RiverName != nil {
		fmt.Fprintf(&sb, "Nearest river: %s\n", *a.RiverName)
	}
	if a.DistanceToRiver != nil {
		fmt.Fprintf(&sb, "Distance to river: %.1f km\n", *a.DistanceToRiver)
	}
	fmt.Fprintf(&sb, "Water level: %.2f m (critical threshold %.2f m)\n", a.WaterLevel, a.ThresholdLevel)
	sb.WriteString("\nCheck the routes endpoint before travelling.\n")
	return sb.String()
}

func digestBody(sub *models.Subscription, a *models.RiskAssessment) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Daily flood summary for (%.5f, %.5f): risk is %s.\n", sub.Latitude, sub.Longitude, a.RiskLevel)
	if a.RiverName != nil {
		fmt.Fprintf(&sb, "Nearest river: %s, water level %.2f m against threshold %.2f m.\n",
			*a.RiverName, a.WaterLevel, a.ThresholdLevel)
	} else {
		sb.WriteString("No gauge in range of this location.\n")
	}
	return sb.String()
}
