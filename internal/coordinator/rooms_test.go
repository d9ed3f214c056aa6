package coordinator

import (
	"time"

	"github.com/wordduel/wordduel/internal/model"
)

// createRoom drives alice and bob into an unstarted room
func (s *CoordinatorSuite) createRoom(aliceSess, bobSess *Session) model.RoomID {
	inviteID := s.sendInvite(aliceSess, bob)
	s.Require().NoError(s.coord.AcceptInvite(s.ctx, bobSess, inviteID))
	room, ok := s.coord.rooms.byUserID(alice)
	s.Require().True(ok)
	return room.ID
}

// Readiness handshake

func (s *CoordinatorSuite) TestReadyWithoutRoom() {
	sess, _ := s.connect(alice)
	s.ErrorIs(s.coord.Ready(s.ctx, sess, "room-x"), model.ErrRoomNotFound)
}

func (s *CoordinatorSuite) TestReadyWithMismatchedRoomID() {
	aliceSess, _ := s.connect(alice)
	bobSess, _ := s.connect(bob)
	s.createRoom(aliceSess, bobSess)

	s.ErrorIs(s.coord.Ready(s.ctx, aliceSess, "room-stale"), model.ErrRoomNotFound)
}

func (s *CoordinatorSuite) TestReadyNotifiesOpponent() {
	aliceSess, _ := s.connect(alice)
	bobSess, bobConn := s.connect(bob)
	roomID := s.createRoom(aliceSess, bobSess)

	s.Require().NoError(s.coord.Ready(s.ctx, aliceSess, roomID))

	payload, ok := bobConn.lastOf(model.EventOpponentReady)
	s.Require().True(ok)
	s.Equal(model.OpponentReadyPayload{RoomID: roomID}, payload)
}

func (s *CoordinatorSuite) TestReadyIsIdempotent() {
	aliceSess, aliceConn := s.connect(alice)
	bobSess, bobConn := s.connect(bob)
	roomID := s.createRoom(aliceSess, bobSess)

	s.Require().NoError(s.coord.Ready(s.ctx, aliceSess, roomID))
	s.Require().NoError(s.coord.Ready(s.ctx, aliceSess, roomID))
	s.Equal(1, bobConn.countOf(model.EventOpponentReady))

	s.Require().NoError(s.coord.Ready(s.ctx, bobSess, roomID))
	s.Require().NoError(s.coord.Ready(s.ctx, bobSess, roomID))

	s.clock.Advance(5 * time.Second)

	// Exactly one round starts despite the repeated signals
	s.Equal(1, aliceConn.countOf(model.EventRoundStarted))
	s.Equal(1, bobConn.countOf(model.EventRoundStarted))
}

func (s *CoordinatorSuite) TestRoundStartDealsUppercasedKeywordToBoth() {
	aliceSess, aliceConn := s.connect(alice)
	bobSess, bobConn := s.connect(bob)
	roomID := s.createRoom(aliceSess, bobSess)

	s.Require().NoError(s.coord.Ready(s.ctx, aliceSess, roomID))
	s.Require().NoError(s.coord.Ready(s.ctx, bobSess, roomID))

	// Nothing is dealt before the scheduled delay elapses
	s.Equal(0, aliceConn.countOf(model.EventRoundStarted))

	s.clock.Advance(time.Second)

	alicePayload, ok := aliceConn.lastOf(model.EventRoundStarted)
	s.Require().True(ok)
	bobPayload, ok := bobConn.lastOf(model.EventRoundStarted)
	s.Require().True(ok)
	s.Equal(alicePayload, bobPayload)
	s.Equal(model.RoundStartedPayload{
		RoomID:    roomID,
		Keyword:   "BANANA",
		KeywordID: "1",
	}, alicePayload)

	room, ok := s.coord.rooms.byID(roomID)
	s.Require().True(ok)
	s.True(room.Started)
}

func (s *CoordinatorSuite) TestRoundStartDrawFailureKeepsRoomUnstarted() {
	s.keywords.Load(nil)
	aliceSess, aliceConn := s.connect(alice)
	bobSess, bobConn := s.connect(bob)
	roomID := s.createRoom(aliceSess, bobSess)

	s.Require().NoError(s.coord.Ready(s.ctx, aliceSess, roomID))
	s.Require().NoError(s.coord.Ready(s.ctx, bobSess, roomID))
	s.clock.Advance(time.Second)

	// Error is scoped to the side whose ready triggered the draw
	s.Equal(1, bobConn.countOf(model.EventError))
	s.Equal(0, aliceConn.countOf(model.EventError))
	s.Equal(0, aliceConn.countOf(model.EventRoundStarted))

	room, ok := s.coord.rooms.byID(roomID)
	s.Require().True(ok)
	s.False(room.Started)

	// Another ready signal retries the draw once keywords exist
	s.keywords.Load([]string{"mango"})
	s.Require().NoError(s.coord.Ready(s.ctx, bobSess, roomID))
	s.clock.Advance(time.Second)

	payload, ok := aliceConn.lastOf(model.EventRoundStarted)
	s.Require().True(ok)
	s.Equal("MANGO", payload.(model.RoundStartedPayload).Keyword)
}

func (s *CoordinatorSuite) TestRoundStartAfterTeardownIsNoOp() {
	aliceSess, aliceConn := s.connect(alice)
	bobSess, bobConn := s.connect(bob)
	roomID := s.createRoom(aliceSess, bobSess)

	s.Require().NoError(s.coord.Ready(s.ctx, aliceSess, roomID))
	s.Require().NoError(s.coord.Ready(s.ctx, bobSess, roomID))

	// The room is torn down during the scheduling window
	s.Require().NoError(s.coord.Leave(s.ctx, aliceSess, roomID))
	s.clock.Advance(time.Second)

	s.Equal(0, aliceConn.countOf(model.EventRoundStarted))
	s.Equal(0, bobConn.countOf(model.EventRoundStarted))
}

// Guessing

func (s *CoordinatorSuite) TestGuessBeforeStart() {
	aliceSess, _ := s.connect(alice)
	bobSess, _ := s.connect(bob)
	roomID := s.createRoom(aliceSess, bobSess)

	s.ErrorIs(s.coord.Guess(s.ctx, aliceSess, roomID, "banana"), model.ErrRoomNotStarted)
}

func (s *CoordinatorSuite) TestGuessWithoutRoom() {
	sess, _ := s.connect(alice)
	s.ErrorIs(s.coord.Guess(s.ctx, sess, "room-x", "banana"), model.ErrRoomNotStarted)
}

func (s *CoordinatorSuite) TestWrongGuessNotifiesOnlyGuesser() {
	aliceSess, aliceConn := s.connect(alice)
	bobSess, bobConn := s.connect(bob)
	roomID := s.startMatch(aliceSess, bobSess)

	s.Require().NoError(s.coord.Guess(s.ctx, aliceSess, roomID, "wrong"))

	payload, ok := aliceConn.lastOf(model.EventGuessResult)
	s.Require().True(ok)
	s.Equal(model.GuessIncorrectPayload{Correct: false, Guess: "wrong"}, payload)

	s.Equal(0, bobConn.countOf(model.EventOpponentGuessResult))

	// A wrong guess scores nothing
	room, _ := s.coord.rooms.byID(roomID)
	s.Equal(0, room.Player1Score)
	s.Equal(0, room.Player2Score)
}

func (s *CoordinatorSuite) TestCorrectGuessScoreViewsAreConsistent() {
	aliceSess, aliceConn := s.connect(alice)
	bobSess, bobConn := s.connect(bob)
	roomID := s.startMatch(aliceSess, bobSess)

	s.Require().NoError(s.coord.Guess(s.ctx, bobSess, roomID, "BaNaNa"))

	result, ok := bobConn.lastOf(model.EventGuessResult)
	s.Require().True(ok)
	s.Equal(model.GuessCorrectPayload{Correct: true, Score: 1, OpponentScore: 0}, result)

	mirror, ok := aliceConn.lastOf(model.EventOpponentGuessResult)
	s.Require().True(ok)
	s.Equal(model.OpponentGuessResultPayload{OpponentScore: 1, YourScore: 0}, mirror)
}

func (s *CoordinatorSuite) TestCorrectGuessRotatesKeywordAfterDelay() {
	aliceSess, aliceConn := s.connect(alice)
	bobSess, bobConn := s.connect(bob)
	roomID := s.startMatch(aliceSess, bobSess)

	s.Require().NoError(s.coord.Guess(s.ctx, aliceSess, roomID, "banana"))

	s.keywords.Load([]string{"papaya"})
	s.clock.Advance(time.Second)

	payload, ok := aliceConn.lastOf(model.EventNewKeyword)
	s.Require().True(ok)
	s.Equal(model.NewKeywordPayload{Keyword: "PAPAYA", KeywordID: "1"}, payload)
	s.Equal(1, bobConn.countOf(model.EventNewKeyword))

	// The old keyword no longer scores
	s.Require().NoError(s.coord.Guess(s.ctx, aliceSess, roomID, "banana"))
	wrong, ok := aliceConn.lastOf(model.EventGuessResult)
	s.Require().True(ok)
	s.Equal(model.GuessIncorrectPayload{Correct: false, Guess: "banana"}, wrong)
}

func (s *CoordinatorSuite) TestRotationFailureKeepsOldKeyword() {
	aliceSess, aliceConn := s.connect(alice)
	bobSess, _ := s.connect(bob)
	roomID := s.startMatch(aliceSess, bobSess)

	s.Require().NoError(s.coord.Guess(s.ctx, aliceSess, roomID, "banana"))

	s.keywords.Load(nil)
	s.clock.Advance(time.Second)

	s.Equal(0, aliceConn.countOf(model.EventNewKeyword))

	// Play continues against the old keyword
	s.Require().NoError(s.coord.Guess(s.ctx, aliceSess, roomID, "banana"))
	result, ok := aliceConn.lastOf(model.EventGuessResult)
	s.Require().True(ok)
	s.Equal(model.GuessCorrectPayload{Correct: true, Score: 2, OpponentScore: 0}, result)
}

func (s *CoordinatorSuite) TestRotationAfterTeardownIsDiscarded() {
	aliceSess, aliceConn := s.connect(alice)
	bobSess, bobConn := s.connect(bob)
	roomID := s.startMatch(aliceSess, bobSess)

	s.Require().NoError(s.coord.Guess(s.ctx, aliceSess, roomID, "banana"))
	s.Require().NoError(s.coord.Leave(s.ctx, bobSess, roomID))

	s.clock.Advance(time.Second)

	s.Equal(0, aliceConn.countOf(model.EventNewKeyword))
	s.Equal(0, bobConn.countOf(model.EventNewKeyword))
}

// Leaving and disconnects

func (s *CoordinatorSuite) TestLeaveNotifiesOpponentAndRemovesRoom() {
	aliceSess, aliceConn := s.connect(alice)
	bobSess, bobConn := s.connect(bob)
	roomID := s.startMatch(aliceSess, bobSess)

	s.Require().NoError(s.coord.Leave(s.ctx, aliceSess, roomID))

	s.Equal(1, bobConn.countOf(model.EventOpponentLeft))
	left, ok := aliceConn.lastOf(model.EventLeft)
	s.Require().True(ok)
	s.Equal(model.LeftPayload{RoomID: roomID}, left)

	_, ok = s.coord.rooms.byUserID(alice)
	s.False(ok)
	_, ok = s.coord.rooms.byUserID(bob)
	s.False(ok)

	// A later guess against the stale room id fails
	s.ErrorIs(s.coord.Guess(s.ctx, bobSess, roomID, "banana"), model.ErrRoomNotStarted)
}

func (s *CoordinatorSuite) TestLeaveNonexistentRoomSucceeds() {
	sess, conn := s.connect(alice)

	s.Require().NoError(s.coord.Leave(s.ctx, sess, "room-stale"))

	left, ok := conn.lastOf(model.EventLeft)
	s.Require().True(ok)
	s.Equal(model.LeftPayload{RoomID: model.RoomID("room-stale")}, left)
	s.Equal(0, conn.countOf(model.EventError))
}

func (s *CoordinatorSuite) TestLeaveDoesNotAffectUnrelatedRooms() {
	aliceSess, _ := s.connect(alice)
	bobSess, _ := s.connect(bob)

	s.Require().NoError(s.directory.AddFriendship(s.ctx, carol, dave))
	carolSess, _ := s.connect(carol)
	daveSess, _ := s.connect(dave)

	s.createRoom(aliceSess, bobSess)
	carolInvite := s.sendInvite(carolSess, dave)
	s.Require().NoError(s.coord.AcceptInvite(s.ctx, daveSess, carolInvite))
	s.Equal(2, s.coord.rooms.count())

	s.Require().NoError(s.coord.Leave(s.ctx, aliceSess, "room-whatever"))

	s.Equal(1, s.coord.rooms.count())
	_, ok := s.coord.rooms.byUserID(carol)
	s.True(ok)
}

func (s *CoordinatorSuite) TestDisconnectInActiveRoom() {
	aliceSess, _ := s.connect(alice)
	bobSess, bobConn := s.connect(bob)
	roomID := s.startMatch(aliceSess, bobSess)

	s.coord.Disconnect(s.ctx, aliceSess)

	s.Equal(1, bobConn.countOf(model.EventOpponentLeft))
	s.Equal(0, s.coord.rooms.count())

	s.ErrorIs(s.coord.Guess(s.ctx, bobSess, roomID, "banana"), model.ErrRoomNotStarted)
}
