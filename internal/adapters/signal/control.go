package signal

import "github.com/huddleapp/huddle/internal/protocol"

func (ctl *SignalWSController) handlePing(c *WsSignalConn) {
	ctl.sendJSON(c, protocol.Pong{Type: protocol.EvtPong})
}
