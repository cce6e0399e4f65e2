package messaging

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Handle decodes every ChangeNotice on channel and hands it to handler until
// ctx is done or the broker closes the stream.
func Handle(ctx context.Context, broker Broker, channel string, handler func(ChangeNotice) error) error {
	msgChan, err := broker.Subscribe(ctx, channel)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgChan {
			var notice ChangeNotice
			if err := json.Unmarshal(msg, &notice); err != nil {
				log.Warn().Err(err).Str("channel", channel).Msg("dropping malformed change notice")
				continue
			}
			if err := handler(notice); err != nil {
				log.Error().Err(err).Str("channel", channel).Msg("change notice handler failed")
			}
		}
	}()

	return nil
}
