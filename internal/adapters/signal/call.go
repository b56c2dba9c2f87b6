package signal

import (
	"github.com/huddleapp/huddle/internal/core"
	"github.com/huddleapp/huddle/internal/protocol"
)

func (ctl *SignalWSController) handleCallUser(sid core.SessionID, c *WsSignalConn, data []byte) {
	var p protocol.CallUser
	if err := protocol.Decode(data, &p); err != nil {
		ctl.sendError(c, protocol.EvCallUser, err)
		return
	}
	ctl.Orch.RelayCall(sid, core.SessionID(p.UserToCall), p.From, p.Signal)
}

func (ctl *SignalWSController) handleAcceptCall(sid core.SessionID, c *WsSignalConn, data []byte) {
	var p protocol.AcceptCall
	if err := protocol.Decode(data, &p); err != nil {
		ctl.sendError(c, protocol.EvAcceptCall, err)
		return
	}
	ctl.Orch.RelayAccept(sid, core.SessionID(p.To), p.Signal)
}
