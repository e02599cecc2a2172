// Package notify delivers chat messages to tenants and administrators.
// Messages are published to NATS subjects consumed by the chat gateway;
// a log-only fallback keeps billing runs working without a broker.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// AdminDirectory resolves the chat identities of administrators for
// notification fan-out. storage.Store satisfies it.
type AdminDirectory interface {
	ListAdminChatIDs(ctx context.Context) ([]int64, error)
}

// Message is the payload published for the chat gateway.
type Message struct {
	ChatID int64     `json:"chatId"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sentAt"`
}

// NATSNotifier publishes chat messages over NATS.
type NATSNotifier struct {
	nc     *nats.Conn
	admins AdminDirectory

	// extraAdmins are chat identities from configuration, notified in
	// addition to the admin users in the store.
	extraAdmins []int64
}

// NewNATSNotifier creates a NATS-backed notifier.
func NewNATSNotifier(nc *nats.Conn, admins AdminDirectory, extraAdmins []int64) *NATSNotifier {
	return &NATSNotifier{nc: nc, admins: admins, extraAdmins: extraAdmins}
}

// SendToTenant publishes a message addressed to one tenant.
func (n *NATSNotifier) SendToTenant(_ context.Context, chatID int64, text string) error {
	return n.publish(fmt.Sprintf("velpra.notify.tenant.%d", chatID), chatID, text)
}

// SendToAdmins fans a message out to every known administrator chat.
// Individual publish failures are logged; the call fails only when no
// admin could be reached at all.
func (n *NATSNotifier) SendToAdmins(ctx context.Context, text string) error {
	ids, err := n.admins.ListAdminChatIDs(ctx)
	if err != nil {
		return fmt.Errorf("list admin chats: %w", err)
	}
	ids = append(ids, n.extraAdmins...)

	if len(ids) == 0 {
		return fmt.Errorf("no admin chats configured")
	}

	delivered := 0
	for _, id := range ids {
		if err := n.publish(fmt.Sprintf("velpra.notify.admin.%d", id), id, text); err != nil {
			log.Warn().Err(err).Int64("chat_id", id).Msg("Failed to notify admin")
			continue
		}
		delivered++
	}

	if delivered == 0 {
		return fmt.Errorf("no admin notification delivered")
	}

	return nil
}

func (n *NATSNotifier) publish(subject string, chatID int64, text string) error {
	data, err := json.Marshal(Message{ChatID: chatID, Text: text, SentAt: time.Now()})
	if err != nil {
		return err
	}

	if err := n.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	log.Debug().
		Str("subject", subject).
		Int64("chat_id", chatID).
		Msg("Notification published")

	return nil
}

// LogNotifier writes messages to the log instead of delivering them.
// Used when no NATS broker is configured.
type LogNotifier struct{}

// SendToTenant logs a tenant-addressed message.
func (LogNotifier) SendToTenant(_ context.Context, chatID int64, text string) error {
	log.Info().
		Int64("chat_id", chatID).
		Str("text", text).
		Msg("Tenant notification (no broker)")
	return nil
}

// SendToAdmins logs an admin-addressed message.
func (LogNotifier) SendToAdmins(_ context.Context, text string) error {
	log.Info().
		Str("text", text).
		Msg("Admin notification (no broker)")
	return nil
}
