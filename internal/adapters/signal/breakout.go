package signal

import (
	"github.com/rs/zerolog/log"

	"github.com/huddleapp/huddle/internal/core"
	"github.com/huddleapp/huddle/internal/protocol"
)

func (ctl *SignalWSController) handleCreateBreakout(sid core.SessionID, c *WsSignalConn, data []byte) {
	var p protocol.CreateBreakout
	if err := protocol.Decode(data, &p); err != nil {
		ctl.sendError(c, protocol.EvCreateBreakout, err)
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).
		Str("room", p.MainRoomID).Str("name", p.BreakoutRoomName).Msg("create breakout")
	if _, err := ctl.Orch.CreateBreakout(p.MainRoomID, p.BreakoutRoomName); err != nil {
		ctl.sendError(c, protocol.EvCreateBreakout, err)
	}
}

func (ctl *SignalWSController) handleJoinBreakout(sid core.SessionID, c *WsSignalConn, data []byte) {
	var p protocol.JoinBreakout
	if err := protocol.Decode(data, &p); err != nil {
		ctl.sendError(c, protocol.EvJoinBreakout, err)
		return
	}
	if err := ctl.Orch.JoinBreakout(sid, p.MainRoomID, p.BreakoutRoomID); err != nil {
		ctl.sendError(c, protocol.EvJoinBreakout, err)
	}
}

func (ctl *SignalWSController) handleLeaveBreakout(sid core.SessionID, c *WsSignalConn, data []byte) {
	var p protocol.LeaveBreakout
	if err := protocol.Decode(data, &p); err != nil {
		ctl.sendError(c, protocol.EvLeaveBreakout, err)
		return
	}
	if err := ctl.Orch.LeaveBreakout(sid, p.MainRoomID); err != nil {
		ctl.sendError(c, protocol.EvLeaveBreakout, err)
	}
}
