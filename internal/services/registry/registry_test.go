package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/Raunaq22/ChessMate-sub001/internal/dependencies/mocks"
	"github.com/Raunaq22/ChessMate-sub001/internal/model"
	"github.com/Raunaq22/ChessMate-sub001/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite
	registry *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.registry = New(testutil.NopLogger())
}

func (s *RegistrySuite) TestRegisterAndLookup() {
	conn := mocks.NewMockConnection("c1", "alice")
	s.registry.Register("alice", conn)

	conns := s.registry.ConnectionsOf("alice")
	s.Require().Len(conns, 1)
	s.Equal("c1", conns[0].ID())
}

func (s *RegistrySuite) TestRegisterKeepsExistingConnections() {
	c1 := mocks.NewMockConnection("c1", "alice")
	c2 := mocks.NewMockConnection("c2", "alice")
	s.registry.Register("alice", c1)
	s.registry.Register("alice", c2)

	s.Len(s.registry.ConnectionsOf("alice"), 2)
}

func (s *RegistrySuite) TestUnregisterRemovesConnection() {
	c1 := mocks.NewMockConnection("c1", "alice")
	c2 := mocks.NewMockConnection("c2", "alice")
	s.registry.Register("alice", c1)
	s.registry.Register("alice", c2)

	s.registry.Unregister(c1)

	conns := s.registry.ConnectionsOf("alice")
	s.Require().Len(conns, 1)
	s.Equal("c2", conns[0].ID())
}

func (s *RegistrySuite) TestUnregisterIsIdempotent() {
	conn := mocks.NewMockConnection("c1", "alice")
	s.registry.Register("alice", conn)

	s.registry.Unregister(conn)
	// Disconnect notifications may race with explicit logout; the
	// second unregister must be a silent no-op.
	s.registry.Unregister(conn)

	s.Empty(s.registry.ConnectionsOf("alice"))
}

func (s *RegistrySuite) TestUnregisterUnknownConnectionIsNoOp() {
	s.registry.Unregister(mocks.NewMockConnection("ghost", "alice"))
	s.Empty(s.registry.ConnectionsOf("alice"))
}

func (s *RegistrySuite) TestSendToFansOutToAllConnections() {
	c1 := mocks.NewMockConnection("c1", "alice")
	c2 := mocks.NewMockConnection("c2", "alice")
	other := mocks.NewMockConnection("c3", "bob")
	s.registry.Register("alice", c1)
	s.registry.Register("alice", c2)
	s.registry.Register("bob", other)

	s.registry.SendTo("alice", []byte("hello"))

	s.Len(c1.Payloads(), 1)
	s.Len(c2.Payloads(), 1)
	s.Empty(other.Payloads())
}

func (s *RegistrySuite) TestSendToUnknownIdentityIsNoOp() {
	s.registry.SendTo("nobody", []byte("hello"))
}

func (s *RegistrySuite) TestSendToClosedConnectionReaps() {
	closed := mocks.NewMockConnection("c1", "alice")
	open := mocks.NewMockConnection("c2", "alice")
	s.registry.Register("alice", closed)
	s.registry.Register("alice", open)
	_ = closed.Close()

	s.registry.SendTo("alice", []byte("hello"))

	conns := s.registry.ConnectionsOf("alice")
	s.Require().Len(conns, 1)
	s.Equal("c2", conns[0].ID())
	s.Len(open.Payloads(), 1)
}

func (s *RegistrySuite) TestCloseDrainsAndClosesConnections() {
	c1 := mocks.NewMockConnection("c1", "alice")
	c2 := mocks.NewMockConnection("c2", "bob")
	s.registry.Register("alice", c1)
	s.registry.Register("bob", c2)

	s.registry.Close()

	s.True(c1.Closed())
	s.True(c2.Closed())
	s.Empty(s.registry.ConnectionsOf("alice"))
	s.Empty(s.registry.ConnectionsOf("bob"))
}

func (s *RegistrySuite) TestConcurrentRegisterUnregisterSendTo() {
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			identity := model.Identity(fmt.Sprintf("user-%d", i%4))
			conn := mocks.NewMockConnection(fmt.Sprintf("c-%d", i), identity)
			s.registry.Register(identity, conn)
			s.registry.SendTo(identity, []byte("payload"))
			s.registry.Unregister(conn)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		s.Empty(s.registry.ConnectionsOf(model.Identity(fmt.Sprintf("user-%d", i))))
	}
}
