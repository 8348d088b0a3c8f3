package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/crtorres/canasta/internal/api/games"
	"github.com/crtorres/canasta/internal/db"
	"github.com/crtorres/canasta/internal/live"
)

const broadcastJobTimeout = 10 * time.Second

// RegisterBroadcastJob pushes fresh scoreboards for every subscribed
// game to the live hub at a fixed interval. The hub fans each one out
// to the websocket subscribers of that game.
func RegisterBroadcastJob(database *db.DB, hub *live.Hub, interval time.Duration) error {
	if database == nil {
		return fmt.Errorf("broadcast job requires database")
	}
	if hub == nil {
		return fmt.Errorf("broadcast job requires live hub")
	}

	jobLogger := log.With().Str("component", "scoreboard_broadcast_job").Logger()

	_, err := AddIntervalJob("scoreboard_broadcast", interval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), broadcastJobTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		for _, gameID := range hub.SubscribedGames() {
			game, err := database.GetGame(ctx, gameID)
			if err != nil {
				jobLogger.Error().Err(err).Str("game_id", gameID).Msg("Failed to load game for broadcast")
				continue
			}
			hub.Broadcast(games.ScoreboardFor(game))
		}
	})
	return err
}
