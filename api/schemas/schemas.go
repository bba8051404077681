// File: api/schemas/schemas.go
package schemas

// Box is a rectangular screen region stored as [yMin, xMin, yMax, xMax].
// This axis order mirrors what vision models emit, so it is kept end to end.
// Depending on the pipeline stage the coordinates are either normalized to
// the 0-1000 model space or absolute pixels.
type Box [4]int

// Canonical returns the box with its endpoints ordered so that
// yMin <= yMax and xMin <= xMax. Models occasionally return swapped corners.
func (b Box) Canonical() Box {
	if b[0] > b[2] {
		b[0], b[2] = b[2], b[0]
	}
	if b[1] > b[3] {
		b[1], b[3] = b[3], b[1]
	}
	return b
}

// Center returns the midpoint of the box as (x, y).
func (b Box) Center() (int, int) {
	c := b.Canonical()
	return c[1] + (c[3]-c[1])/2, c[0] + (c[2]-c[0])/2
}

// PageState classifies what screen the meeting UI is currently showing.
// Exactly one value is produced per classification call. The string values
// are part of the classifier prompt contract and must not be renamed.
type PageState string

const (
	StateLoginPage        PageState = "google_login_page"
	StateReloginPage      PageState = "google_relogin_page"
	StateWorkspacePopup   PageState = "google_chrome_workspace_popup"
	StateSignInToChrome   PageState = "google_sign_in_to_chrome"
	StateLandingPage      PageState = "google_meet_landing_page"
	StateInitialPage      PageState = "google_meet_initial_page"
	StateLoadingCall      PageState = "google_meet_loading_call"
	StateGettingReady     PageState = "google_meet_meeting_connection_page_getting_ready"
	StateConnectionPage   PageState = "google_meet_meeting_connection_page"
	StateAwaitingApproval PageState = "google_meet_awaiting_approval_page"
	StateMeetingPage      PageState = "google_meet_meeting_page"
	StateCallFinishing    PageState = "google_meet_call_finishing_page"
	StateRejoinPage       PageState = "google_meet_rejoin_page"
	StateCantJoinCall     PageState = "google_meet_cant_join_this_call"
	StateAllowMicrophone  PageState = "google_meet_allow_microphone"
	StateUnknownPage      PageState = "google_meet_unknown_page"
)

// AllPageStates lists every recognized page state. The classifier uses this
// to build the response schema so the model cannot invent new states.
func AllPageStates() []PageState {
	return []PageState{
		StateLoginPage, StateReloginPage, StateWorkspacePopup, StateSignInToChrome,
		StateLandingPage, StateInitialPage, StateLoadingCall, StateGettingReady,
		StateConnectionPage, StateAwaitingApproval, StateMeetingPage,
		StateCallFinishing, StateRejoinPage, StateCantJoinCall,
		StateAllowMicrophone, StateUnknownPage,
	}
}

// Well-known control labels the navigation logic clicks on. Labels outside
// this set still flow through the resolver; these are just the ones states
// look up by name.
const (
	ControlNewMeeting            = "new_meeting_button"
	ControlStartInstantMeeting   = "start_an_instant_meeting"
	ControlJoinMeeting           = "join_meeting"
	ControlUseMicAndCamera       = "use_microphone_and_camera"
	ControlAllowWhileVisiting    = "allow_while_visiting_the_site"
	ControlCancel                = "cancel"
	ControlContinue              = "continue"
	ControlMeetingReadyClose     = "your_meeting_is_ready_close_button"
	ControlAdmitNotification     = "someone_wants_to_join_this_call_admit_button"
	ControlViewParticipants      = "meet_callcontrol_viewparticipantsbutton"
	ControlPeopleAdmit           = "people_admit_button"
	ControlPeopleAdmitAll        = "people_popup_admit_all_button"
	ControlAdmitAllConfirm       = "admit_all_admit_button"
	ControlEndCall               = "meet_call_control_end_call_button"
)

// MaxElements bounds how many control elements a single classification may
// carry. The inference service guarantees this limit; the adapter enforces it
// defensively by truncation.
const MaxElements = 25

// ControlElement is one detected UI control: a normalized label and its
// bounding box. Boxes arrive in the 0-1000 model space and are converted to
// absolute pixels by the classifier adapter before anything clicks on them.
type ControlElement struct {
	Label string `json:"label"`
	Box   Box    `json:"box_2d"`
}

// Classification is the structured result of classifying one screenshot.
// It is produced fresh on every classifier invocation and never merged with
// results from earlier screenshots.
type Classification struct {
	State PageState `json:"state"`
	// LoggedIn reports whether the web page (not the browser profile) shows
	// an authenticated session.
	LoggedIn bool `json:"logged_in"`
	// AloneInCall is meaningful only when State is StateMeetingPage.
	AloneInCall bool             `json:"alone_in_the_call"`
	Elements    []ControlElement `json:"elements"`
}

// MatchResult is the outcome of resolving a logical control name against a
// classification's element list. Confidence is 100.0 only for exact label or
// alias matches, strictly between 0 and 100 for fuzzy fallback matches, and
// exactly 0.0 when nothing matched (Element is nil in that case).
type MatchResult struct {
	Element    *ControlElement
	Confidence float64
}

// Found reports whether the lookup produced any element at all.
func (m MatchResult) Found() bool { return m.Element != nil }

// Status enumerates the progress milestones reported to the session manager.
type Status string

const (
	StatusNewMeetingStarting Status = "new_meeting_starting"
	StatusConnecting         Status = "connecting_to_the_meeting"
	StatusWaitingForApproval Status = "waiting_for_approve"
	StatusMeetingReady       Status = "meeting_ready"
	StatusError              Status = "error"
	StatusDone               Status = "done"
)

// Progress is the fire-and-forget payload pushed to the session manager as
// the agent moves through the connection flow.
type Progress struct {
	SessionID string `json:"session_id"`
	Status    Status `json:"status"`
	Link      string `json:"gm_link,omitempty"`
	Error     string `json:"error,omitempty"`
}
