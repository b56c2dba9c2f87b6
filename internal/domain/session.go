// Package domain contains entity without logic, just meta-data
package domain

const MaxDisplayNameLen = 36

type Role string

const (
	RoleParticipant Role = "participant"
	RoleViewer      Role = "viewer"
)

// Track names the toggleable media flags on a session.
type Track string

const (
	TrackVideo Track = "video"
	TrackAudio Track = "audio"
)

func (t Track) Valid() bool {
	return t == TrackVideo || t == TrackAudio
}

// Session is the presence record for one active connection.
// The connection id that keys it lives in the registry, not here.
type Session struct {
	DisplayName string     `json:"userName"`
	Role        Role       `json:"-"`
	Video       bool       `json:"video"`
	Audio       bool       `json:"audio"`
	RoomID      RoomID     `json:"-"`
	BreakoutID  BreakoutID `json:"breakoutRoom,omitempty"`
}

// NewSession avoids raw literals in adapters and keeps defaults obvious:
// both tracks start enabled.
func NewSession(displayName string, role Role) (*Session, error) {
	if len(displayName) == 0 {
		return nil, ErrNameEmpty
	}
	if len(displayName) > MaxDisplayNameLen {
		return nil, ErrNameTooLong
	}
	return &Session{
		DisplayName: displayName,
		Role:        role,
		Video:       true,
		Audio:       true,
	}, nil
}

// Toggle flips the named track and reports the new value.
func (s *Session) Toggle(t Track) bool {
	if t == TrackVideo {
		s.Video = !s.Video
		return s.Video
	}
	s.Audio = !s.Audio
	return s.Audio
}
