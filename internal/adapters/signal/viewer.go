package signal

import (
	"github.com/huddleapp/huddle/internal/core"
	"github.com/huddleapp/huddle/internal/protocol"
)

func (ctl *SignalWSController) handleJoinViewer(sid core.SessionID, c *WsSignalConn, data []byte) {
	var p protocol.JoinAsViewer
	if err := protocol.Decode(data, &p); err != nil {
		ctl.sendError(c, protocol.EvJoinAsViewer, err)
		return
	}
	if err := ctl.Orch.JoinViewer(sid, p.RoomID, p.DisplayName); err != nil {
		ctl.sendError(c, protocol.EvJoinAsViewer, err)
	}
}

func (ctl *SignalWSController) handleLeaveViewer(sid core.SessionID, c *WsSignalConn, data []byte) {
	var p protocol.LeaveViewer
	if err := protocol.Decode(data, &p); err != nil {
		ctl.sendError(c, protocol.EvLeaveViewer, err)
		return
	}
	if err := ctl.Orch.LeaveViewer(sid, p.RoomID); err != nil {
		ctl.sendError(c, protocol.EvLeaveViewer, err)
	}
}
