package core

import "github.com/huddleapp/huddle/internal/domain"

// memberSession implements MemberSession by pairing meta + transport.
type memberSession struct {
	meta *domain.Session
	conn SignalConnection
}

func NewMemberSession(meta *domain.Session, conn SignalConnection) MemberSession {
	return &memberSession{meta: meta, conn: conn}
}

func (m *memberSession) Meta() *domain.Session    { return m.meta }
func (m *memberSession) Signal() SignalConnection { return m.conn }
