package notify

import (
	"context"
	"fmt"
	"time"
)

// defaultTimeout is the bounded per-call timeout the reference adapters
// apply as adapter hygiene (§5's "Timeouts" section leaves this to the
// Notifier implementation).
const defaultTimeout = 10 * time.Second

// Dispatcher is a Notifier that fans out to the Webhook/Email/Telegram
// adapter matching each Method's Kind, per the tagged-variant design
// note (§9).
type Dispatcher struct {
	webhook  *WebhookNotifier
	email    *EmailNotifier
	telegram *TelegramNotifier
}

// NewDispatcher constructs a Dispatcher using the default adapters.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		webhook:  &WebhookNotifier{},
		email:    &EmailNotifier{},
		telegram: &TelegramNotifier{},
	}
}

func (d *Dispatcher) Notify(ctx context.Context, method Method, message string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	switch method.Kind {
	case KindWebhook:
		if method.Webhook == nil {
			return fmt.Errorf("notify: webhook method %s missing config", method.ID)
		}
		return d.webhook.Notify(ctx, *method.Webhook, message)
	case KindEmail:
		if method.Email == nil {
			return fmt.Errorf("notify: email method %s missing config", method.ID)
		}
		return d.email.Notify(ctx, *method.Email, message)
	case KindTelegram:
		if method.Telegram == nil {
			return fmt.Errorf("notify: telegram method %s missing config", method.ID)
		}
		return d.telegram.Notify(ctx, *method.Telegram, message)
	default:
		return fmt.Errorf("notify: unknown kind %q for method %s", method.Kind, method.ID)
	}
}
