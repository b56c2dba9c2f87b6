// Package protocol is the closed event-name to payload-shape mapping of
// the signaling wire format. Every inbound event is decoded into its one
// typed payload and validated at the boundary; handlers never see loose
// maps.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/huddleapp/huddle/internal/core"
	"github.com/huddleapp/huddle/internal/domain"
)

// Inbound event names.
const (
	EvJoinRoom       = "join-room"
	EvCheckUser      = "check-user"
	EvCallUser       = "call-user"
	EvAcceptCall     = "accept-call"
	EvSendMessage    = "send-message"
	EvLeaveRoom      = "leave-room"
	EvToggle         = "toggle-camera-audio"
	EvCreateBreakout = "create-breakout-room"
	EvJoinBreakout   = "join-breakout-room"
	EvLeaveBreakout  = "leave-breakout-room"
	EvJoinAsViewer   = "join-as-viewer"
	EvLeaveViewer    = "leave-viewer"
	EvPing           = "ping"
)

// Outbound event names.
const (
	EvtUserJoin        = "user-join"
	EvtUserExist       = "error-user-exist"
	EvtReceiveCall     = "receive-call"
	EvtCallAccepted    = "call-accepted"
	EvtReceiveMessage  = "receive-message"
	EvtUserLeave       = "user-leave"
	EvtToggleCamera    = "toggle-camera"
	EvtBreakoutsUpdate = "breakout-rooms-update"
	EvtJoinBreakout    = "user-join-breakout-room"
	EvtLeaveBreakout   = "user-leave-breakout-room"
	EvtBreakoutClosed  = "breakout-room-closed"
	EvtViewerInit      = "viewer-init"
	EvtNewViewer       = "new-viewer"
	EvtViewerLeave     = "viewer-leave"
	EvtError           = "error"
	EvtPong            = "pong"
)

// Envelope is the flat wire shape: a type discriminator beside the
// event's own fields.
type Envelope struct {
	Type string `json:"type"`
}

// DecodeType extracts the discriminator without committing to a payload
// shape yet.
func DecodeType(data []byte) (string, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return "", domain.ErrMissingField
	}
	return env.Type, nil
}

// Decode unmarshals an inbound payload and validates it, rejecting
// malformed events before any handler runs.
func Decode(data []byte, p Validator) error {
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return p.Validate()
}

type Validator interface {
	Validate() error
}

type JoinRoom struct {
	RoomID      string `json:"roomId"`
	DisplayName string `json:"displayName"`
}

func (p *JoinRoom) Validate() error {
	if p.RoomID == "" || p.DisplayName == "" {
		return domain.ErrMissingField
	}
	return nil
}

type CheckUser struct {
	RoomID      string `json:"roomId"`
	DisplayName string `json:"displayName"`
}

func (p *CheckUser) Validate() error {
	if p.RoomID == "" || p.DisplayName == "" {
		return domain.ErrMissingField
	}
	return nil
}

// CallUser carries an opaque negotiation blob; Signal is never parsed
// here, its structure belongs to the media layer on the clients.
type CallUser struct {
	UserToCall string          `json:"userToCall"`
	From       string          `json:"from"`
	Signal     json.RawMessage `json:"signal"`
}

func (p *CallUser) Validate() error {
	if p.UserToCall == "" || len(p.Signal) == 0 {
		return domain.ErrMissingField
	}
	return nil
}

type AcceptCall struct {
	Signal json.RawMessage `json:"signal"`
	To     string          `json:"to"`
}

func (p *AcceptCall) Validate() error {
	if p.To == "" || len(p.Signal) == 0 {
		return domain.ErrMissingField
	}
	return nil
}

type SendMessage struct {
	RoomID string `json:"roomId"`
	Msg    string `json:"msg"`
	Sender string `json:"sender"`
}

func (p *SendMessage) Validate() error {
	if p.RoomID == "" || p.Sender == "" {
		return domain.ErrMissingField
	}
	return nil
}

type LeaveRoom struct {
	RoomID string `json:"roomId"`
	Leaver string `json:"leaver"`
}

func (p *LeaveRoom) Validate() error {
	if p.RoomID == "" {
		return domain.ErrMissingField
	}
	return nil
}

type Toggle struct {
	RoomID       string       `json:"roomId"`
	SwitchTarget domain.Track `json:"switchTarget"`
}

func (p *Toggle) Validate() error {
	if p.RoomID == "" {
		return domain.ErrMissingField
	}
	if !p.SwitchTarget.Valid() {
		return domain.ErrMissingField
	}
	return nil
}

type CreateBreakout struct {
	MainRoomID       string `json:"mainRoomId"`
	BreakoutRoomName string `json:"breakoutRoomName"`
}

func (p *CreateBreakout) Validate() error {
	if p.MainRoomID == "" || p.BreakoutRoomName == "" {
		return domain.ErrMissingField
	}
	return nil
}

type JoinBreakout struct {
	MainRoomID     string `json:"mainRoomId"`
	BreakoutRoomID string `json:"breakoutRoomId"`
	DisplayName    string `json:"displayName"`
}

func (p *JoinBreakout) Validate() error {
	if p.MainRoomID == "" || p.BreakoutRoomID == "" {
		return domain.ErrMissingField
	}
	return nil
}

type LeaveBreakout struct {
	MainRoomID     string `json:"mainRoomId"`
	BreakoutRoomID string `json:"breakoutRoomId"`
	DisplayName    string `json:"displayName"`
}

func (p *LeaveBreakout) Validate() error {
	if p.MainRoomID == "" {
		return domain.ErrMissingField
	}
	return nil
}

type JoinAsViewer struct {
	RoomID      string `json:"roomId"`
	DisplayName string `json:"displayName"`
}

func (p *JoinAsViewer) Validate() error {
	if p.RoomID == "" || p.DisplayName == "" {
		return domain.ErrMissingField
	}
	return nil
}

type LeaveViewer struct {
	RoomID string `json:"roomId"`
}

func (p *LeaveViewer) Validate() error {
	if p.RoomID == "" {
		return domain.ErrMissingField
	}
	return nil
}

// Outbound shapes. The orchestrator marshals each exactly once per
// fan-out.

type UserJoin struct {
	Type  string             `json:"type"`
	Users []core.RosterEntry `json:"users"`
}

type UserExist struct {
	Type  string `json:"type"`
	Error bool   `json:"error"`
}

type ReceiveCall struct {
	Type   string          `json:"type"`
	Signal json.RawMessage `json:"signal"`
	From   string          `json:"from"`
	Info   domain.Session  `json:"info"`
}

type CallAccepted struct {
	Type     string          `json:"type"`
	Signal   json.RawMessage `json:"signal"`
	AnswerID core.SessionID  `json:"answerId"`
}

type ReceiveMessage struct {
	Type   string `json:"type"`
	Msg    string `json:"msg"`
	Sender string `json:"sender"`
	RoomID string `json:"roomId"`
}

type UserLeave struct {
	Type     string         `json:"type"`
	UserID   core.SessionID `json:"userId"`
	UserName string         `json:"userName"`
}

type ToggleCamera struct {
	Type         string         `json:"type"`
	UserID       core.SessionID `json:"userId"`
	SwitchTarget domain.Track   `json:"switchTarget"`
}

type BreakoutsUpdate struct {
	Type          string            `json:"type"`
	MainRoomID    string            `json:"mainRoomId"`
	BreakoutRooms []domain.Breakout `json:"breakoutRooms"`
}

type BreakoutJoined struct {
	Type     string             `json:"type"`
	Breakout domain.Breakout    `json:"breakoutRoom"`
	Users    []core.RosterEntry `json:"users"`
}

type BreakoutLeft struct {
	Type     string         `json:"type"`
	UserID   core.SessionID `json:"userId"`
	UserName string         `json:"userName"`
}

type BreakoutClosed struct {
	Type           string            `json:"type"`
	BreakoutRoomID domain.BreakoutID `json:"breakoutRoomId"`
}

type ViewerInit struct {
	Type  string             `json:"type"`
	Users []core.RosterEntry `json:"users"`
}

type ViewerEvent struct {
	Type     string         `json:"type"`
	UserID   core.SessionID `json:"userId"`
	UserName string         `json:"userName"`
}

type ErrorEvent struct {
	Type  string `json:"type"`
	Op    string `json:"op"`
	Error string `json:"error"`
}

type Pong struct {
	Type string `json:"type"`
}
