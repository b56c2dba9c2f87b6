package domain

type (
	RoomID     string
	BreakoutID string
)

type Room struct {
	ID RoomID
}

// Breakout is the meta of a sub-room; membership lives in core.
type Breakout struct {
	ID   BreakoutID `json:"breakoutRoomId"`
	Name string     `json:"name"`
}
