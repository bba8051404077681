// File: internal/navigator/incall_test.go
package navigator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/meetpilot/api/schemas"
	"github.com/xkilldash9x/meetpilot/internal/config"
	"github.com/xkilldash9x/meetpilot/internal/vision"
)

func meetingPage(alone bool, elements ...schemas.ControlElement) *schemas.Classification {
	return &schemas.Classification{
		State:       schemas.StateMeetingPage,
		LoggedIn:    true,
		AloneInCall: alone,
		Elements:    elements,
	}
}

func TestMonitor_IsolationLeavesOnExactlyThresholdPoll(t *testing.T) {
	endCall := elem(schemas.ControlEndCall, schemas.Box{760, 600, 790, 660})
	cls := &scriptedClassifier{seq: []*schemas.Classification{
		meetingPage(true, endCall),
	}}
	f := newFixture(t, cls, func(c *config.SessionConfig) {
		c.MeetingLink = "https://meet.google.com/abc-defg-hij" // guest, no admit cascade
		c.AloneThreshold = 120
	})

	err := f.controller.monitorCall(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 120, cls.calls, "leave fires on the 120th alone poll, not before")
	require.Len(t, f.driver.clicks, 1, "exactly one leave click")
	assert.Equal(t, [2]int{630, 775}, f.driver.clicks[0])
}

func TestMonitor_AloneCounterSurvivesInterruption(t *testing.T) {
	endCall := elem(schemas.ControlEndCall, schemas.Box{760, 600, 790, 660})
	seq := []*schemas.Classification{
		meetingPage(true, endCall),
		meetingPage(true, endCall),
		meetingPage(false, endCall), // interruption does not reset the counter
		meetingPage(true, endCall),
	}
	cls := &scriptedClassifier{seq: seq}
	f := newFixture(t, cls, func(c *config.SessionConfig) {
		c.MeetingLink = "https://meet.google.com/abc-defg-hij"
		c.AloneThreshold = 3
	})

	err := f.controller.monitorCall(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, cls.calls, "third alone poll is the fourth iteration")
	assert.Len(t, f.driver.clicks, 1)
}

func TestMonitor_LeaveSignalExitsImmediately(t *testing.T) {
	cls := &scriptedClassifier{seq: []*schemas.Classification{meetingPage(false)}}
	f := newFixture(t, cls, func(c *config.SessionConfig) {
		c.MeetingLink = "https://meet.google.com/abc-defg-hij"
	})
	f.controller.Leave().Request()

	err := f.controller.monitorCall(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cls.calls)
	// No resolvable end-call control and no sprite on disk: the attempt
	// degrades to nothing, but the loop still exits cleanly.
	assert.Empty(t, f.driver.clicks)
}

func TestMonitor_GettingReadyToleranceThenFatal(t *testing.T) {
	cls := &scriptedClassifier{seq: []*schemas.Classification{
		{State: schemas.StateGettingReady, LoggedIn: true},
	}}
	f := newFixture(t, cls, func(c *config.SessionConfig) {
		c.MeetingLink = "https://meet.google.com/abc-defg-hij"
		c.GettingReadyTolerance = 3
	})

	err := f.controller.monitorCall(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "green room")
	assert.Equal(t, 4, cls.calls, "three tolerated repeats, fatal on the fourth")
}

func TestMonitor_UnexpectedStateEndsLoop(t *testing.T) {
	cls := &scriptedClassifier{seq: []*schemas.Classification{
		{State: schemas.StateRejoinPage, LoggedIn: true},
	}}
	f := newFixture(t, cls, func(c *config.SessionConfig) {
		c.MeetingLink = "https://meet.google.com/abc-defg-hij"
	})

	err := f.controller.monitorCall(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedState)
	assert.Equal(t, 1, cls.calls)
}

func TestAdmitCascade_FallsThroughToPanelAdmitAll(t *testing.T) {
	// No sprites exist and neither the notification nor the view control
	// resolves, so the cascade must reach the panel's admit-all element.
	cls := &scriptedClassifier{seq: []*schemas.Classification{
		meetingPage(false,
			elem(schemas.ControlPeopleAdmitAll, schemas.Box{300, 400, 330, 520})),
	}}
	f := newFixture(t, cls, func(c *config.SessionConfig) {
		c.MeetingLink = "" // hosting
	})
	f.controller.nav.host = true
	require.NoError(t, f.controller.observe(context.Background()))

	f.controller.admitParticipants(context.Background(),
		vision.NewResolver(f.controller.cur.Elements))

	require.Len(t, f.driver.clicks, 1)
	assert.Equal(t, [2]int{460, 315}, f.driver.clicks[0], "admit-all element center")
	assert.Greater(t, f.screen.captures, 1, "sprite fallbacks re-capture the screen")
}

func TestAdmitCascade_HighConfidenceNotificationClicked(t *testing.T) {
	cls := &scriptedClassifier{seq: []*schemas.Classification{
		meetingPage(false,
			elem(schemas.ControlAdmitNotification, schemas.Box{100, 900, 130, 1000})),
	}}
	f := newFixture(t, cls, func(c *config.SessionConfig) { c.MeetingLink = "" })
	f.controller.nav.host = true
	require.NoError(t, f.controller.observe(context.Background()))

	f.controller.admitParticipants(context.Background(),
		vision.NewResolver(f.controller.cur.Elements))

	require.NotEmpty(t, f.driver.clicks)
	assert.Equal(t, [2]int{950, 115}, f.driver.clicks[0])
}

func TestMonitor_HostClosesMeetingReadyPopup(t *testing.T) {
	cls := &scriptedClassifier{seq: []*schemas.Classification{
		meetingPage(false,
			elem(schemas.ControlMeetingReadyClose, schemas.Box{200, 200, 220, 240})),
		{State: schemas.StateRejoinPage, LoggedIn: true}, // ends the loop
	}}
	f := newFixture(t, cls, func(c *config.SessionConfig) { c.MeetingLink = "" })
	f.controller.nav.host = true

	err := f.controller.monitorCall(context.Background())
	require.Error(t, err)
	require.NotEmpty(t, f.driver.clicks)
	assert.Equal(t, [2]int{220, 210}, f.driver.clicks[0], "popup close clicked first")
}
