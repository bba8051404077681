// File: internal/navigator/context.go
package navigator

// stateID enumerates the navigation states. Transitions are computed by the
// controller's trampoline loop, one step per classified screenshot.
type stateID int

const (
	stateLanding stateID = iota
	stateLogin
	stateCreateMeeting
	stateJoinMeeting
	stateAwaitApproval
	statePermitMic
	stateInMeeting
	stateInCall
	stateStop
)

func (s stateID) String() string {
	switch s {
	case stateLanding:
		return "LandingPage"
	case stateLogin:
		return "GoogleLogin"
	case stateCreateMeeting:
		return "CreateNewMeeting"
	case stateJoinMeeting:
		return "JoinCurrentMeeting"
	case stateAwaitApproval:
		return "AwaitApproval"
	case statePermitMic:
		return "PermitMicrophone"
	case stateInMeeting:
		return "InMeeting"
	case stateInCall:
		return "InCallMonitor"
	case stateStop:
		return "Stop"
	default:
		return "unknown"
	}
}

// navContext is the mutable session state owned exclusively by the
// controller. It lives from Run until the terminal state and is never shared.
type navContext struct {
	history []stateID

	// restartTries is the global budget shared by landing and join attempts.
	restartTries int
	// Per-state budgets.
	loginTries     int
	approvalTries  int
	inMeetingTries int
	// joinGettingReady counts consecutive pre-join green-room
	// classifications while trying to join.
	joinGettingReady int

	link   string
	host   bool
	errMsg string

	notifiedWaiting bool
}

func (n *navContext) record(s stateID) {
	n.history = append(n.history, s)
}

func (n *navContext) fail(msg string) stateID {
	n.errMsg = msg
	return stateStop
}
