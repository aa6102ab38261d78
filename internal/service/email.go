package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"membership-backend/internal/domain"
	"membership-backend/internal/logger"
)

// MailClient is the part of the SendGrid client the notifier uses.
type MailClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type emailNotifier struct {
	client          MailClient
	fromEmail       string
	fromName        string
	approvalBaseURL string
}

// NewSendGridNotifier sends workflow mail through SendGrid.
func NewSendGridNotifier(apiKey, fromEmail, fromName, approvalBaseURL string) Notifier {
	return NewEmailNotifier(sendgrid.NewSendClient(apiKey), fromEmail, fromName, approvalBaseURL)
}

func NewEmailNotifier(client MailClient, fromEmail, fromName, approvalBaseURL string) Notifier {
	return &emailNotifier{
		client:          client,
		fromEmail:       fromEmail,
		fromName:        fromName,
		approvalBaseURL: strings.TrimRight(approvalBaseURL, "/"),
	}
}

// ApprovalLink is the URL a sponsor opens to review an application.
func ApprovalLink(baseURL, token string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(baseURL, "/"), token)
}

// SendApprovalRequest mails the link and the verification code to the sponsor
// as two separate messages so the link alone cannot approve.
func (n *emailNotifier) SendApprovalRequest(ctx context.Context, app *domain.Application) error {
	link := ApprovalLink(n.approvalBaseURL, app.Token)

	subject := fmt.Sprintf("%s asked you to sponsor their membership", app.ApplicantName)
	plain := fmt.Sprintf("Hello,\n\n%s (%s) named you as their sponsor.\n\nReview the application here:\n%s\n\n"+
		"You will receive the verification code in a separate email. The link expires on %s.\n",
		app.ApplicantName, app.ApplicantEmail, link, app.ExpiresAt.Format("2006-01-02 15:04 MST"))
	html := fmt.Sprintf(`<p>%s (%s) named you as their sponsor.</p><p><a href="%s">Review the application</a></p>`+
		`<p>You will receive the verification code in a separate email. The link expires on %s.</p>`,
		app.ApplicantName, app.ApplicantEmail, link, app.ExpiresAt.Format("2006-01-02 15:04 MST"))
	if err := n.send(ctx, "approval_link", app.SponsorEmail, "", subject, plain, html); err != nil {
		return err
	}

	codeSubject := fmt.Sprintf("Verification code for %s's application", app.ApplicantName)
	codePlain := fmt.Sprintf("Your verification code is %s.\n\nEnter it on the application page to approve.\n", app.VerificationCode)
	codeHTML := fmt.Sprintf("<p>Your verification code is <strong>%s</strong>.</p>", app.VerificationCode)
	return n.send(ctx, "verification_code", app.SponsorEmail, "", codeSubject, codePlain, codeHTML)
}

func (n *emailNotifier) SendApplicationApproved(ctx context.Context, app *domain.Application, member *domain.Member) error {
	subject := "Your membership application was approved"
	plain := fmt.Sprintf("Hello %s,\n\nYour sponsor approved your application. Welcome aboard!\n", app.ApplicantName)
	html := fmt.Sprintf("<p>Hello %s,</p><p>Your sponsor approved your application. Welcome aboard!</p>", app.ApplicantName)
	return n.send(ctx, "application_approved", app.ApplicantEmail, app.ApplicantName, subject, plain, html)
}

func (n *emailNotifier) send(ctx context.Context, kind, to, toName, subject, plain, html string) error {
	logger.ExternalServiceCall("sendgrid", kind, "to", to)

	message := mail.NewSingleEmail(mail.NewEmail(n.fromName, n.fromEmail), subject, mail.NewEmail(toName, to), plain, html)
	response, err := n.client.SendWithContext(ctx, message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	if err != nil {
		err = fmt.Errorf("failed to send %s email: %w", kind, err)
	}
	logger.ExternalServiceResult("sendgrid", kind, err, "to", to)
	return err
}

type logNotifier struct {
	approvalBaseURL string
}

// NewLogNotifier logs notifications instead of sending them. Used when no
// SendGrid key is configured.
func NewLogNotifier(approvalBaseURL string) Notifier {
	return &logNotifier{approvalBaseURL: approvalBaseURL}
}

func (n *logNotifier) SendApprovalRequest(ctx context.Context, app *domain.Application) error {
	logger.InfoContext(ctx, "Approval request notification",
		"to", app.SponsorEmail, "applicationID", app.ID, "link", ApprovalLink(n.approvalBaseURL, app.Token))
	return nil
}

func (n *logNotifier) SendApplicationApproved(ctx context.Context, app *domain.Application, member *domain.Member) error {
	logger.InfoContext(ctx, "Application approved notification", "to", app.ApplicantEmail, "applicationID", app.ID)
	return nil
}
