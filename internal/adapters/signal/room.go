package signal

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/huddleapp/huddle/internal/core"
	"github.com/huddleapp/huddle/internal/domain"
	"github.com/huddleapp/huddle/internal/protocol"
)

func (ctl *SignalWSController) handleJoin(sid core.SessionID, c *WsSignalConn, data []byte) {
	var p protocol.JoinRoom
	if err := protocol.Decode(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(c, protocol.EvJoinRoom, err)
		return
	}
	if !ctl.limiter.Allow(sid) {
		ctl.sendError(c, protocol.EvJoinRoom, errors.New("too many join attempts"))
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).
		Str("room", p.RoomID).Str("user", p.DisplayName).Msg("join")
	if err := ctl.Orch.Join(sid, p.RoomID, p.DisplayName); err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			ctl.sendJSON(c, protocol.UserExist{Type: protocol.EvtUserExist, Error: true})
			return
		}
		ctl.sendError(c, protocol.EvJoinRoom, err)
	}
}

func (ctl *SignalWSController) handleCheckUser(sid core.SessionID, c *WsSignalConn, data []byte) {
	var p protocol.CheckUser
	if err := protocol.Decode(data, &p); err != nil {
		ctl.sendError(c, protocol.EvCheckUser, err)
		return
	}
	if !ctl.limiter.Allow(sid) {
		ctl.sendError(c, protocol.EvCheckUser, errors.New("too many attempts"))
		return
	}
	exists := ctl.Orch.CheckUser(p.RoomID, p.DisplayName)
	ctl.sendJSON(c, protocol.UserExist{Type: protocol.EvtUserExist, Error: exists})
}

func (ctl *SignalWSController) handleLeave(sid core.SessionID, c *WsSignalConn, data []byte) {
	var p protocol.LeaveRoom
	if err := protocol.Decode(data, &p); err != nil {
		ctl.sendError(c, protocol.EvLeaveRoom, err)
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.RoomID).Msg("leave")
	ctl.Orch.Leave(sid, p.RoomID)
}

func (ctl *SignalWSController) handleSendMessage(sid core.SessionID, c *WsSignalConn, data []byte) {
	var p protocol.SendMessage
	if err := protocol.Decode(data, &p); err != nil {
		ctl.sendError(c, protocol.EvSendMessage, err)
		return
	}
	if err := ctl.Orch.SendMessage(p.RoomID, p.Msg, p.Sender); err != nil {
		ctl.sendError(c, protocol.EvSendMessage, err)
	}
}

func (ctl *SignalWSController) handleToggle(sid core.SessionID, c *WsSignalConn, data []byte) {
	var p protocol.Toggle
	if err := protocol.Decode(data, &p); err != nil {
		ctl.sendError(c, protocol.EvToggle, err)
		return
	}
	if err := ctl.Orch.Toggle(sid, p.RoomID, p.SwitchTarget); err != nil {
		ctl.sendError(c, protocol.EvToggle, err)
	}
}
