package coordinator

import (
	"github.com/wordduel/wordduel/internal/model"
)

func (s *CoordinatorSuite) TestConnectMarksUserOnlineAndBroadcasts() {
	sess, _ := s.connect(alice)

	s.True(s.coord.presence.isOnline(alice))

	calls := s.broadcaster.callsOf(model.EventUserOnline)
	s.Require().Len(calls, 1)
	s.Equal(sess.Conn, calls[0].Except)
	s.Equal(model.UserOnlinePayload{
		UserID:   alice,
		Nickname: "Alice",
		Email:    "alice@example.com",
		Avatar:   "avatars/alice.png",
	}, calls[0].Payload)
}

func (s *CoordinatorSuite) TestConnectUnknownUserCreatesNoPresence() {
	sess, _ := s.connect("user-unknown")

	s.False(s.coord.presence.isOnline("user-unknown"))
	s.Empty(s.broadcaster.callsOf(model.EventUserOnline))

	// Disconnecting the presence-less connection is a clean no-op
	s.coord.Disconnect(s.ctx, sess)
	s.Empty(s.broadcaster.callsOf(model.EventUserOffline))
}

func (s *CoordinatorSuite) TestSetOnlineIsIdempotent() {
	sess, conn := s.connect(alice)

	s.Require().NoError(s.coord.SetOnline(s.ctx, sess))
	s.Require().NoError(s.coord.SetOnline(s.ctx, sess))

	// Came online once at connect; repeats must not re-broadcast
	s.Len(s.broadcaster.callsOf(model.EventUserOnline), 1)

	// But each explicit signal is confirmed to the caller
	s.Equal(2, conn.countOf(model.EventOnlineStatus))
	payload, _ := conn.lastOf(model.EventOnlineStatus)
	s.Equal(model.OnlineStatusPayload{Online: true}, payload)
}

func (s *CoordinatorSuite) TestDisconnectBroadcastsOffline() {
	sess, _ := s.connect(alice)
	s.coord.Disconnect(s.ctx, sess)

	s.False(s.coord.presence.isOnline(alice))
	calls := s.broadcaster.callsOf(model.EventUserOffline)
	s.Require().Len(calls, 1)
	s.Equal(model.UserOfflinePayload{UserID: alice}, calls[0].Payload)
}

func (s *CoordinatorSuite) TestSecondConnectionReplacesPresenceEntry() {
	firstSess, _ := s.connect(alice)
	_, secondConn := s.connect(alice)

	// Only the first transition broadcast
	s.Len(s.broadcaster.callsOf(model.EventUserOnline), 1)

	// The stale connection's teardown must not evict the replacement
	s.coord.Disconnect(s.ctx, firstSess)
	s.True(s.coord.presence.isOnline(alice))
	s.Empty(s.broadcaster.callsOf(model.EventUserOffline))

	// Deliveries reach the new connection
	bobSess, _ := s.connect(bob)
	s.Require().NoError(s.coord.Invite(s.ctx, bobSess, alice))
	s.Equal(1, secondConn.countOf(model.EventInviteReceived))
}

func (s *CoordinatorSuite) TestGetOnlineFriendsFiltersByPresence() {
	aliceSess, aliceConn := s.connect(alice)
	s.connect(bob)
	// carol is a friend but stays offline; bob is online; dave is online
	// but not a friend
	s.connect(dave)

	s.Require().NoError(s.coord.GetOnlineFriends(s.ctx, aliceSess))

	payload, ok := aliceConn.lastOf(model.EventOnlineFriends)
	s.Require().True(ok)
	friends := payload.(model.OnlineFriendsPayload).Friends
	s.Require().Len(friends, 1)
	s.Equal(model.OnlineFriend{
		ID:       bob,
		Nickname: "Bob",
		Email:    "bob@example.com",
		Online:   true,
	}, friends[0])
}

func (s *CoordinatorSuite) TestGetOnlineFriendsEmptyListIsNotNil() {
	aliceSess, aliceConn := s.connect(alice)

	s.Require().NoError(s.coord.GetOnlineFriends(s.ctx, aliceSess))

	payload, ok := aliceConn.lastOf(model.EventOnlineFriends)
	s.Require().True(ok)
	s.NotNil(payload.(model.OnlineFriendsPayload).Friends)
	s.Empty(payload.(model.OnlineFriendsPayload).Friends)
}
