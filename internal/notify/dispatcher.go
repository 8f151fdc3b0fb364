// Package notify delivers email notifications for society activity. Delivery
// is fire-and-forget: failures are logged, never surfaced to the action that
// triggered them.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentSends bounds the fan-out when mailing every member.
const maxConcurrentSends = 4

// sendTimeout bounds a single notification batch.
const sendTimeout = 2 * time.Minute

// RecipientFunc returns the email addresses a broadcast should reach.
type RecipientFunc func(ctx context.Context) ([]string, error)

// Dispatcher fans notifications out over a Sender.
type Dispatcher struct {
	sender     *Sender
	recipients RecipientFunc
}

// NewDispatcher creates a Dispatcher. recipients supplies the audience for
// member-wide broadcasts.
func NewDispatcher(sender *Sender, recipients RecipientFunc) *Dispatcher {
	return &Dispatcher{sender: sender, recipients: recipients}
}

// EventCreated announces a new event to every member. Returns immediately;
// delivery happens in the background.
func (d *Dispatcher) EventCreated(title, location string, startsAt time.Time) {
	subject := fmt.Sprintf("New event: %s", title)
	body := fmt.Sprintf("A new event has been scheduled.\n\n%s\n%s\n%s\n",
		title, location, startsAt.Format(time.RFC1123))
	d.broadcast(subject, body)
}

// JoinRequestReceived alerts the society admin about a membership application.
func (d *Dispatcher) JoinRequestReceived(name, email string) {
	admin := d.sender.AdminEmail()
	if admin == "" {
		return
	}
	subject := "New membership application"
	body := fmt.Sprintf("%s <%s> has applied to join.\n", name, email)
	d.sendAsync(admin, subject, body)
}

// VoiceFlagged alerts the society admin that a post was automatically pulled
// for review.
func (d *Dispatcher) VoiceFlagged(voiceID string, reportCount int) {
	admin := d.sender.AdminEmail()
	if admin == "" {
		return
	}
	subject := "Post flagged for review"
	body := fmt.Sprintf("Post %s reached %d reports and was hidden pending review.\n", voiceID, reportCount)
	d.sendAsync(admin, subject, body)
}

// broadcast mails every member concurrently with a bounded worker count.
func (d *Dispatcher) broadcast(subject, body string) {
	if !d.sender.Enabled() || d.recipients == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		addrs, err := d.recipients(ctx)
		if err != nil {
			log.Error().Err(err).Msg("notify: failed to resolve recipients")
			return
		}

		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(maxConcurrentSends)

		for _, addr := range addrs {
			g.Go(func() error {
				if err := d.sender.Send(addr, subject, body); err != nil {
					log.Warn().Err(err).Str("to", addr).Msg("notify: send failed")
				}
				return nil
			})
		}

		g.Wait()
		log.Debug().Int("recipients", len(addrs)).Str("subject", subject).Msg("notify: broadcast done")
	}()
}

func (d *Dispatcher) sendAsync(to, subject, body string) {
	if !d.sender.Enabled() {
		return
	}
	go func() {
		if err := d.sender.Send(to, subject, body); err != nil {
			log.Warn().Err(err).Str("to", to).Msg("notify: send failed")
		}
	}()
}
