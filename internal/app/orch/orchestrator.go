// Package orch coordinates the session registry and the room directory:
// every inbound event lands here, mutates state through those two, and
// fans the resulting notifications out to the affected connections.
package orch

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/huddleapp/huddle/internal/app"
	"github.com/huddleapp/huddle/internal/core"
	"github.com/huddleapp/huddle/internal/domain"
)

type Orchestrator struct {
	Registry *app.Registry
	Rooms    core.RoomDirectory
	Policy   app.Policy
}

func (o *Orchestrator) marshal(v any) (core.Frame, bool) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("marshal event")
		return nil, false
	}
	return b, true
}

// sendTo delivers directly to one connection, fire-and-forget. A missing
// or saturated connection is not an error for the producer.
func (o *Orchestrator) sendTo(sid core.SessionID, v any) {
	conn, ok := o.Registry.Conn(sid)
	if !ok {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Msg("send to absent connection, dropped")
		return
	}
	data, ok := o.marshal(v)
	if !ok {
		return
	}
	if err := conn.TrySend(data); err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("direct send dropped")
	}
}

// broadcast marshals once and fans out to the room's main scope,
// excluding from. Pass an empty from to reach everyone in scope.
func (o *Orchestrator) broadcast(room core.RoomService, from core.SessionID, v any) {
	data, ok := o.marshal(v)
	if !ok {
		return
	}
	o.applyPolicy(room, room.Broadcast(from, data))
}

func (o *Orchestrator) broadcastBreakout(room core.RoomService, bid domain.BreakoutID, from core.SessionID, v any) {
	data, ok := o.marshal(v)
	if !ok {
		return
	}
	o.applyPolicy(room, room.BroadcastBreakout(bid, from, data))
}

func (o *Orchestrator) broadcastScope(room core.RoomService, from core.SessionID, v any) {
	data, ok := o.marshal(v)
	if !ok {
		return
	}
	o.applyPolicy(room, room.BroadcastScope(from, data))
}

func (o *Orchestrator) applyPolicy(room core.RoomService, res core.PublishResult) {
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		if o.Policy.OnBackpressure(room, slow) == app.Disconnect {
			o.Registry.Cancel(slow)
		}
	}
}
