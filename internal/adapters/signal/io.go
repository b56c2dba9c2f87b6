package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/huddleapp/huddle/internal/core"
	"github.com/huddleapp/huddle/internal/protocol"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				log.Info().Err(err).Str("module", "signal").Msg("writePump keepalive failed")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump owns the connection lifecycle: when the read loop ends for
// any reason the session is fully torn down, exactly once, via the
// orchestrator's idempotent disconnect.
func (ctl *SignalWSController) readPump(ctx context.Context, sid core.SessionID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		ctl.Orch.Disconnect(sid)
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read end")
				return
			}
			ctl.handleEvent(sid, c, data)
		}
	}
}

func (ctl *SignalWSController) handleEvent(sid core.SessionID, c *WsSignalConn, data []byte) {
	ev, err := protocol.DecodeType(data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad envelope")
		ctl.sendError(c, "decode", err)
		return
	}

	switch ev {
	case protocol.EvJoinRoom:
		ctl.handleJoin(sid, c, data)
	case protocol.EvCheckUser:
		ctl.handleCheckUser(sid, c, data)
	case protocol.EvCallUser:
		ctl.handleCallUser(sid, c, data)
	case protocol.EvAcceptCall:
		ctl.handleAcceptCall(sid, c, data)
	case protocol.EvSendMessage:
		ctl.handleSendMessage(sid, c, data)
	case protocol.EvLeaveRoom:
		ctl.handleLeave(sid, c, data)
	case protocol.EvToggle:
		ctl.handleToggle(sid, c, data)
	case protocol.EvCreateBreakout:
		ctl.handleCreateBreakout(sid, c, data)
	case protocol.EvJoinBreakout:
		ctl.handleJoinBreakout(sid, c, data)
	case protocol.EvLeaveBreakout:
		ctl.handleLeaveBreakout(sid, c, data)
	case protocol.EvJoinAsViewer:
		ctl.handleJoinViewer(sid, c, data)
	case protocol.EvLeaveViewer:
		ctl.handleLeaveViewer(sid, c, data)
	case protocol.EvPing:
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", ev).Msg("unknown event")
		ctl.sendJSON(c, protocol.ErrorEvent{Type: protocol.EvtError, Op: ev, Error: "unknown event"})
	}
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

// sendError reports a failed operation back to the originating
// connection only; errors are never broadcast and never fatal.
func (ctl *SignalWSController) sendError(c *WsSignalConn, op string, err error) {
	ctl.sendJSON(c, protocol.ErrorEvent{Type: protocol.EvtError, Op: op, Error: err.Error()})
}
