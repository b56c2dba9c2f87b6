package orch

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/huddleapp/huddle/internal/core"
	"github.com/huddleapp/huddle/internal/domain"
	"github.com/huddleapp/huddle/internal/protocol"
)

// RelayCall forwards an opaque negotiation blob point-to-point, enriched
// with the caller's current presence. Viewers neither initiate nor
// receive calls. Fire-and-forget: a disconnected target is swallowed,
// the caller relies on its own timeout. The blob is never inspected
// here.
func (o *Orchestrator) RelayCall(from core.SessionID, to core.SessionID, fromName string, signal json.RawMessage) {
	caller, ok := o.Registry.Session(from)
	if !ok {
		log.Debug().Str("module", "orch").Str("sid", string(from)).Msg("call from unknown session, dropped")
		return
	}
	if caller.Role == domain.RoleViewer {
		log.Debug().Str("module", "orch").Str("sid", string(from)).Msg("call from a viewer, dropped")
		return
	}
	if target, ok := o.Registry.Session(to); ok && target.Role == domain.RoleViewer {
		log.Debug().Str("module", "orch").Str("to", string(to)).Msg("call target is a viewer, dropped")
		return
	}
	room, ok := o.Rooms.Get(caller.RoomID)
	if !ok {
		log.Debug().Str("module", "orch").Str("sid", string(from)).Msg("caller has no room, dropped")
		return
	}
	info, ok := room.MemberInfo(from)
	if !ok {
		return
	}
	o.sendTo(to, protocol.ReceiveCall{
		Type:   protocol.EvtReceiveCall,
		Signal: signal,
		From:   fromName,
		Info:   info,
	})
}

// RelayAccept completes the handshake: the answer blob goes back with
// the accepting party's connection id so the original caller can finish
// the peer negotiation.
func (o *Orchestrator) RelayAccept(from core.SessionID, to core.SessionID, signal json.RawMessage) {
	o.sendTo(to, protocol.CallAccepted{
		Type:     protocol.EvtCallAccepted,
		Signal:   signal,
		AnswerID: from,
	})
}
