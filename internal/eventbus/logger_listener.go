package eventbus

import (
	"context"

	"github.com/annel0/isomap/internal/logging"
)

// StartLoggingListener подписывается на все события и пишет их в лог
// компонента событий. Функция неблокирующая.
func StartLoggingListener(bus EventBus) (Subscription, error) {
	log := logging.GetEventLogger()
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		log.Debug("[EventBus] %s %s src=%s prio=%d payload=%s", ev.ID, ev.EventType, ev.Source, ev.Priority, ev.Payload)
	})
	if err != nil {
		return nil, err
	}
	log.Info("Логирование событий карты включено")
	return sub, nil
}
