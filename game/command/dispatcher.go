package command

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/kotu-game/server/audit"
	"github.com/kotu-game/server/cache"
	"github.com/kotu-game/server/config"
	"github.com/kotu-game/server/game/combat"
	"github.com/kotu-game/server/game/economy"
	"github.com/kotu-game/server/game/player"
	"github.com/kotu-game/server/game/skill"
	"github.com/kotu-game/server/game/travel"
	"github.com/kotu-game/server/gameerr"
	"go.uber.org/zap"
)

// EventChannel is the pub/sub channel every dispatched outcome is published to.
const EventChannel = "game:events"

// eventFeedKey is the cache list holding the most recent outcomes.
const eventFeedKey = "game:event_feed"

// Event is one dispatched outcome as published to the feed.
type Event struct {
	Handle  string `json:"handle"`
	Action  string `json:"action"`
	Message string `json:"message"`
	TS      int64  `json:"ts"`
}

// Dispatcher routes chat commands to the game services and renders every
// outcome, good or bad, as a chat line.
type Dispatcher struct {
	players *player.Service
	skills  *skill.Service
	fights  *combat.Service
	economy *economy.Service
	travels *travel.Service
	auditor *audit.Service
	cache   cache.Cache
	pubsub  cache.PubSub
	game    config.GameConfig
	logger  *zap.Logger
}

// NewDispatcher wires the dispatcher to the game services.
func NewDispatcher(players *player.Service, skills *skill.Service, fights *combat.Service,
	eco *economy.Service, travels *travel.Service, auditor *audit.Service,
	c cache.Cache, ps cache.PubSub, game config.GameConfig, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		players: players,
		skills:  skills,
		fights:  fights,
		economy: eco,
		travels: travels,
		auditor: auditor,
		cache:   c,
		pubsub:  ps,
		game:    game,
		logger:  logger,
	}
}

// Dispatch executes one chat command and returns the line to say back.
// Rule violations come back as a normal message; only infrastructure
// failures return a non-nil error.
func (d *Dispatcher) Dispatch(ctx context.Context, traceID, handle, action, argument string) (string, error) {
	start := time.Now()
	action = strings.ToLower(strings.TrimSpace(action))
	argument = strings.TrimSpace(argument)

	msg, err := d.route(ctx, handle, action, argument)

	entry := audit.Entry{
		TraceID:    traceID,
		Handle:     handle,
		Action:     action,
		Request:    map[string]string{"argument": argument},
		DurationMs: int(time.Since(start).Milliseconds()),
	}

	switch {
	case err == nil:
		entry.Response = map[string]string{"message": msg}
	case gameerr.IsBusiness(err):
		// A rule said no. That is an outcome, not a failure.
		msg = "❌ " + err.Error()
		entry.Error = err.Error()
		err = nil
	default:
		d.logger.Error("command failed",
			zap.String("trace_id", traceID),
			zap.String("handle", handle),
			zap.String("action", action),
			zap.Error(err))
		entry.Error = err.Error()
		d.auditor.Log(entry)
		return "Something went wrong, please try again later.", err
	}

	d.auditor.Log(entry)
	d.publish(ctx, Event{Handle: handle, Action: action, Message: msg, TS: time.Now().Unix()})
	return msg, nil
}

func (d *Dispatcher) route(ctx context.Context, handle, action, argument string) (string, error) {
	switch action {
	case "play":
		return d.players.Register(ctx, handle, argument)
	case "hunt":
		return d.skills.Attempt(ctx, handle, "hunting", "animal")
	case "fish":
		return d.skills.Attempt(ctx, handle, "fishing", "fish")
	case "search":
		return d.skills.Attempt(ctx, handle, "searching", "quest")
	case "fight":
		return d.fights.Fight(ctx, handle, argument)
	case "eat":
		return d.economy.Eat(ctx, handle, argument)
	case "sell":
		return d.economy.Sell(ctx, handle, argument)
	case "buy":
		return d.economy.Buy(ctx, handle, argument)
	case "travel":
		return d.travels.Travel(ctx, handle, argument)
	default:
		return "", gameerr.Reject(gameerr.ErrInvalidInput, "Unknown command '%s'.", action)
	}
}

// publish pushes the outcome onto the capped recent-event feed and broadcasts
// it. Feed failures only cost observers, never the player's result.
func (d *Dispatcher) publish(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := d.cache.LPush(ctx, eventFeedKey, string(payload)); err != nil {
		d.logger.Warn("event feed push failed", zap.Error(err))
	} else if err := d.cache.LTrim(ctx, eventFeedKey, 0, int64(d.game.EventFeedSize)-1); err != nil {
		d.logger.Warn("event feed trim failed", zap.Error(err))
	}
	if err := d.pubsub.Publish(ctx, EventChannel, string(payload)); err != nil {
		d.logger.Warn("event publish failed", zap.Error(err))
	}
}

// RecentEvents returns the newest events first, up to the feed cap.
func (d *Dispatcher) RecentEvents(ctx context.Context) ([]Event, error) {
	raw, err := d.cache.LRange(ctx, eventFeedKey, 0, int64(d.game.EventFeedSize)-1)
	if err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(raw))
	for _, r := range raw {
		var ev Event
		if err := json.Unmarshal([]byte(r), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}
