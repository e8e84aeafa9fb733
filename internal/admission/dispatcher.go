package admission

import (
	"fmt"
	"net/url"
	"time"

	"github.com/arvidfm/codeshare/internal/infrastructure/mailer"
	"github.com/arvidfm/codeshare/internal/infrastructure/sign"
)

// Dispatcher mails the room owner a pair of signed single-decision links.
// Each link is scoped to one room+email+decision tuple and carries its own
// expiry, so an intercepted link cannot be bent to another requester or
// replayed after the window closes.
type Dispatcher struct {
	mailer      mailer.Mailer
	signer      *sign.Signer
	frontendURL string
	linkTTL     time.Duration
}

func NewDispatcher(m mailer.Mailer, signer *sign.Signer, frontendURL string, linkTTL time.Duration) *Dispatcher {
	if linkTTL <= 0 {
		linkTTL = time.Hour
	}
	return &Dispatcher{
		mailer:      m,
		signer:      signer,
		frontendURL: frontendURL,
		linkTTL:     linkTTL,
	}
}

func (d *Dispatcher) NotifyAccessRequest(roomID, requesterEmail, ownerEmail string) error {
	approveLink := d.decisionLink(roomID, requesterEmail, true)
	denyLink := d.decisionLink(roomID, requesterEmail, false)

	subject := "Room Access Request - Action Required"
	body := fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2>Access request for your room</h2>
  <p><strong>%s</strong> has requested access to your room <strong>%s</strong>.</p>
  <p>Approve or reject the request using the links below:</p>
  <p>
    <a href="%s">Approve</a> &nbsp;|&nbsp; <a href="%s">Reject</a>
  </p>
  <p>These links expire in %s. If you did not expect this request, ignore this email.</p>
</div>`,
		requesterEmail, roomID, approveLink, denyLink, d.linkTTL)

	return d.mailer.Send(ownerEmail, subject, body)
}

func (d *Dispatcher) decisionLink(roomID, email string, approve bool) string {
	token := d.signer.WithDuration(sign.DecisionPayload(roomID, email, approve), d.linkTTL)

	q := url.Values{}
	q.Set("roomId", roomID)
	q.Set("email", email)
	q.Set("approve", fmt.Sprintf("%t", approve))
	q.Set("token", token)

	return fmt.Sprintf("%s/approve-access?%s", d.frontendURL, q.Encode())
}
