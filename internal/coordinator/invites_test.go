package coordinator

import (
	"time"

	"github.com/wordduel/wordduel/internal/model"
)

// sendInvite creates an invite from the session to the target and
// returns its id
func (s *CoordinatorSuite) sendInvite(sess *Session, to model.UserID) model.InviteID {
	s.Require().NoError(s.coord.Invite(s.ctx, sess, to))
	payload, ok := sess.Conn.(*testConn).lastOf(model.EventInviteSent)
	s.Require().True(ok)
	return payload.(model.InviteSentPayload).Invite.ID
}

// Precondition tests, in check order: first failure wins

func (s *CoordinatorSuite) TestInviteMissingTarget() {
	sess, _ := s.connect(alice)
	s.ErrorIs(s.coord.Invite(s.ctx, sess, ""), ErrMissingTarget)
}

func (s *CoordinatorSuite) TestInviteSelf() {
	sess, _ := s.connect(alice)
	s.ErrorIs(s.coord.Invite(s.ctx, sess, alice), model.ErrSelfInvite)
}

func (s *CoordinatorSuite) TestInviteUnknownUser() {
	sess, _ := s.connect(alice)
	s.ErrorIs(s.coord.Invite(s.ctx, sess, "user-nobody"), model.ErrUserNotFound)
}

func (s *CoordinatorSuite) TestInviteNonFriend() {
	sess, _ := s.connect(alice)
	s.connect(dave)
	s.ErrorIs(s.coord.Invite(s.ctx, sess, dave), model.ErrNotFriends)
}

func (s *CoordinatorSuite) TestInviteBlockedBySender() {
	s.Require().NoError(s.directory.Block(s.ctx, bob, alice))
	sess, _ := s.connect(alice)
	s.connect(bob)
	s.ErrorIs(s.coord.Invite(s.ctx, sess, bob), model.ErrBlocked)
}

func (s *CoordinatorSuite) TestInviteOfflineRecipient() {
	sess, conn := s.connect(alice)

	err := s.coord.Invite(s.ctx, sess, bob)
	s.ErrorIs(err, model.ErrUserOffline)

	// No invite is created and the recipient receives nothing
	s.Equal(0, s.coord.invites.count())
	s.Equal(0, conn.countOf(model.EventInviteSent))
}

func (s *CoordinatorSuite) TestInviteNotifiesBothParties() {
	aliceSess, aliceConn := s.connect(alice)
	_, bobConn := s.connect(bob)

	inviteID := s.sendInvite(aliceSess, bob)

	received, ok := bobConn.lastOf(model.EventInviteReceived)
	s.Require().True(ok)
	invite := received.(model.InviteReceivedPayload).Invite
	s.Equal(inviteID, invite.ID)
	s.Equal(alice, invite.FromID)
	s.Equal("Alice", invite.FromNickname)
	s.Equal("avatars/alice.png", invite.FromAvatar)
	s.Equal(s.clock.Now(), invite.CreatedAt)

	sent, ok := aliceConn.lastOf(model.EventInviteSent)
	s.Require().True(ok)
	s.Equal("Bob", sent.(model.InviteSentPayload).Invite.ToNickname)
}

func (s *CoordinatorSuite) TestDuplicateInvitesAreAllowed() {
	aliceSess, _ := s.connect(alice)
	_, bobConn := s.connect(bob)

	first := s.sendInvite(aliceSess, bob)
	s.clock.Advance(time.Millisecond)
	second := s.sendInvite(aliceSess, bob)

	s.NotEqual(first, second)
	s.Equal(2, s.coord.invites.count())
	s.Equal(2, bobConn.countOf(model.EventInviteReceived))
}

// Expiry tests

func (s *CoordinatorSuite) TestInviteExpiresAfterTTL() {
	aliceSess, aliceConn := s.connect(alice)
	_, bobConn := s.connect(bob)

	inviteID := s.sendInvite(aliceSess, bob)

	s.clock.Advance(59 * time.Second)
	s.Equal(0, aliceConn.countOf(model.EventInviteExpired))

	s.clock.Advance(time.Second)
	expired, ok := aliceConn.lastOf(model.EventInviteExpired)
	s.Require().True(ok)
	s.Equal(model.InviteExpiredPayload{InviteID: inviteID}, expired)
	s.Equal(1, bobConn.countOf(model.EventInviteExpired))
	s.Equal(0, s.coord.invites.count())
}

func (s *CoordinatorSuite) TestAcceptCancelsExpiry() {
	aliceSess, aliceConn := s.connect(alice)
	bobSess, bobConn := s.connect(bob)

	inviteID := s.sendInvite(aliceSess, bob)
	s.Require().NoError(s.coord.AcceptInvite(s.ctx, bobSess, inviteID))

	s.clock.Advance(2 * time.Minute)
	s.Equal(0, aliceConn.countOf(model.EventInviteExpired))
	s.Equal(0, bobConn.countOf(model.EventInviteExpired))
}

func (s *CoordinatorSuite) TestRejectCancelsExpiry() {
	aliceSess, aliceConn := s.connect(alice)
	bobSess, bobConn := s.connect(bob)

	inviteID := s.sendInvite(aliceSess, bob)
	s.Require().NoError(s.coord.RejectInvite(s.ctx, bobSess, inviteID))

	rejected, ok := aliceConn.lastOf(model.EventInviteRejected)
	s.Require().True(ok)
	s.Equal(model.InviteRejectedPayload{InviteID: inviteID, FromID: bob}, rejected)

	confirm, ok := bobConn.lastOf(model.EventInviteRejected)
	s.Require().True(ok)
	s.Equal(model.InviteRejectedPayload{InviteID: inviteID}, confirm)

	s.clock.Advance(2 * time.Minute)
	s.Equal(0, aliceConn.countOf(model.EventInviteExpired))
}

// Accept/reject authorization

func (s *CoordinatorSuite) TestAcceptUnknownInvite() {
	sess, _ := s.connect(bob)
	s.ErrorIs(s.coord.AcceptInvite(s.ctx, sess, "nope"), model.ErrInviteNotFound)
}

func (s *CoordinatorSuite) TestAcceptSomeoneElsesInvite() {
	aliceSess, _ := s.connect(alice)
	s.connect(bob)
	carolSess, _ := s.connect(carol)

	inviteID := s.sendInvite(aliceSess, bob)
	s.ErrorIs(s.coord.AcceptInvite(s.ctx, carolSess, inviteID), model.ErrNotYourInvite)
	s.Equal(1, s.coord.invites.count())
}

func (s *CoordinatorSuite) TestRejectSomeoneElsesInvite() {
	aliceSess, _ := s.connect(alice)
	s.connect(bob)
	carolSess, _ := s.connect(carol)

	inviteID := s.sendInvite(aliceSess, bob)
	s.ErrorIs(s.coord.RejectInvite(s.ctx, carolSess, inviteID), model.ErrNotYourInvite)
}

func (s *CoordinatorSuite) TestAcceptWithSenderOffline() {
	bobSess, _ := s.connect(bob)

	// Inject a pending invite whose sender never came online; the
	// normal disconnect path would have discarded it
	now := s.clock.Now()
	s.coord.invites.add(model.Invite{
		ID:        "inv-ghost",
		FromID:    carol,
		ToID:      bob,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Minute),
	}, nil)

	s.ErrorIs(s.coord.AcceptInvite(s.ctx, bobSess, "inv-ghost"), model.ErrSenderOffline)
}

func (s *CoordinatorSuite) TestAcceptCreatesRoomIndexedFromBothPlayers() {
	aliceSess, aliceConn := s.connect(alice)
	bobSess, bobConn := s.connect(bob)

	inviteID := s.sendInvite(aliceSess, bob)
	s.Require().NoError(s.coord.AcceptInvite(s.ctx, bobSess, inviteID))

	aliceRoom, ok := s.coord.rooms.byUserID(alice)
	s.Require().True(ok)
	bobRoom, ok := s.coord.rooms.byUserID(bob)
	s.Require().True(ok)
	s.Equal(aliceRoom.ID, bobRoom.ID)
	s.Same(aliceRoom, bobRoom)

	accepted, ok := aliceConn.lastOf(model.EventInviteAccepted)
	s.Require().True(ok)
	s.Equal(model.OpponentProfile{ID: bob, Nickname: "Bob"}, accepted.(model.InviteAcceptedPayload).Opponent)

	bobAccepted, ok := bobConn.lastOf(model.EventInviteAccepted)
	s.Require().True(ok)
	s.Equal(alice, bobAccepted.(model.InviteAcceptedPayload).Opponent.ID)
	s.Equal("Alice", bobAccepted.(model.InviteAcceptedPayload).Opponent.Nickname)

	// The invite reached its terminal outcome
	s.Equal(0, s.coord.invites.count())
}

func (s *CoordinatorSuite) TestAcceptWhileAlreadyInRoom() {
	aliceSess, _ := s.connect(alice)
	bobSess, _ := s.connect(bob)
	carolSess, _ := s.connect(carol)

	inviteID := s.sendInvite(aliceSess, bob)
	s.Require().NoError(s.coord.AcceptInvite(s.ctx, bobSess, inviteID))

	// Alice is in a room with Bob; Carol cannot join her in a second one
	secondID := s.sendInvite(aliceSess, carol)
	s.ErrorIs(s.coord.AcceptInvite(s.ctx, carolSess, secondID), model.ErrAlreadyInRoom)
	s.Equal(1, s.coord.rooms.count())
}

func (s *CoordinatorSuite) TestDisconnectDiscardsInvitesSilently() {
	aliceSess, aliceConn := s.connect(alice)
	bobSess, _ := s.connect(bob)

	s.sendInvite(aliceSess, bob)
	s.coord.Disconnect(s.ctx, bobSess)

	s.Equal(0, s.coord.invites.count())

	// No expiry or rejection ever surfaces for the discarded invite
	s.clock.Advance(2 * time.Minute)
	s.Equal(0, aliceConn.countOf(model.EventInviteExpired))
	s.Equal(0, aliceConn.countOf(model.EventInviteRejected))
}
