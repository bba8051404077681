// File: internal/classifier/prompts.go
package classifier

import "github.com/xkilldash9x/meetpilot/api/schemas"

// statePrompt drives the page-state call. It enumerates every recognized
// state with its distinguishing cues so the schema-constrained response can
// only pick from the closed set.
const statePrompt = `Objective:
Analyze Google Meet screenshots and determine the current state of the call
or related Google page, and infer the user's login status.

Identify the state from key visual cues, prominent text, interface layout,
and the presence or absence of distinct UI components:

google_login_page: central form prompting for 'Email or phone' for initial
Google account login, with a "Next" button. logged_in: false.

google_relogin_page: identity re-confirmation for a previously logged-in
account, usually a profile picture or name above a password field.
logged_in: false.

google_chrome_workspace_popup: modal dialog about Google Workspace profile
management, with text like 'Set up a work profile' or 'Your organization
will manage this profile'. logged_in: true.

google_sign_in_to_chrome: modal dialog with text like 'Sign in to Chrome?'
or similar browser profile setup messages. logged_in: true.

google_meet_landing_page: public introductory page for Google Meet with no
"New meeting" or "Join" controls, typically a "Sign in" option top right.
logged_in: false.

google_meet_initial_page: the main dashboard after login, with prominent
"New meeting" and "Join a meeting" (or code input) controls and a circular
profile icon top right. logged_in: true.

google_meet_loading_call: transitional mostly-black screen with 'loading…'
or 'joining…' text. logged_in: true.

google_meet_meeting_connection_page_getting_ready: pre-meeting green room
with self-preview video and text like "Getting ready..." but no Join
buttons. If a 'Leave call' or 'Raise hand' control is visible this is NOT
this state, it is almost certainly google_meet_meeting_page. logged_in: true.

google_meet_meeting_connection_page: final prompt before joining, with
self-preview, "Ready to join?" text and an "Ask to join" / "Join now"
button. logged_in: true.

google_meet_awaiting_approval_page: waiting for the host to admit you, with
text like "Someone will let you in soon". No Join button, no call controls.
logged_in: true.

google_meet_meeting_page: an active call: participant tiles or avatars and
the bottom control bar (mute, camera, present, leave). logged_in: true.
Special condition: if only one participant tile is visible and no other
names or tiles, set alone_in_the_call to true, otherwise false.

google_meet_call_finishing_page: brief transitional screen with "Call
ended" or "Disconnecting..." text. logged_in: true.

google_meet_rejoin_page: post-meeting page with "You've left the meeting"
and "Rejoin" / "Return to home screen" buttons. logged_in: true.

google_meet_cant_join_this_call: page with text like "You can't join this
call". The main cause is a missing login, so logged_in must be false.

google_meet_allow_microphone: an in-page Google Meet prompt asking for
microphone/camera access with Allow-style buttons. logged_in: true.

google_meet_unknown_page: any other Google-branded page that fits none of
the above. Decide logged_in from the circular account icon in the top right
of the page content.

General rules for logged_in:
The primary indicator is the circular account icon in the top right of the
web page content, not the browser chrome. States that require a session
(loading, green room, connection, awaiting approval, meeting, finishing,
rejoin, allow microphone) are implicitly logged_in: true. Do not confuse a
browser profile avatar with a web page login.`

// densePrompt is the deliberately short system instruction used for the
// active-call screen. Long prescriptive label lists push the model towards
// checking items off instead of localizing precisely, which shifts and
// merges boxes on the crowded control bar.
const densePrompt = `Objective:
Identify all interactive control elements in the provided Google Meet
screenshot and return their bounding box coordinates.

Bounding Box Format: box_2d is a list of four integers
[y_min, x_min, y_max, x_max] in relative coordinates from 0 to 1000.

Respond with a JSON array of {"label": ..., "box_2d": [...]} objects.
Label each element with the window or popup it belongs to followed by the
action name, all lowercase, words separated by underscores.
Never return masks. Limit to 25 objects.`

// densePromptUser is the user-turn instruction accompanying the screenshot
// in free-form mode.
const densePromptUser = "Please detect all call control elements in the google meet screenshot"

// elementPromptCommon prefixes every schema-constrained element call.
const elementPromptCommon = `Objective:
Identify specific interface elements within Google Meet screenshots and
provide their precise bounding box coordinates.

Bounding Box Format: box_2d is a list of four integers
[y_min, x_min, y_max, x_max] in relative coordinates from 0 to 1000.
Return only coordinates and labels from the description below.
Never return masks or code fencing. Limit to 25 objects.

List of controls to detect and their characteristics:

`

// elementPromptUser is the user-turn instruction for schema-constrained calls.
const elementPromptUser = "Please find all available control elements."

const popupControls = `cancel: a button or icon on a modal dialog managing browser profiles,
accounts or organizational settings that dismisses or declines the action.
Text examples: "Cancel", "No thanks", "Use Chrome without an account", or a
close icon. Always look for this control when such a popup is present.

continue: a button or icon on the same kind of dialog that confirms or
proceeds. Text examples: "Continue", "Next", "Done", "Continue as [Name]".
`

// elementPrompts maps a classified state to the control descriptions the
// follow-up detection call should look for. States without an entry still get
// the common instruction; the model reports whatever it recognizes.
var elementPrompts = map[schemas.PageState]string{
	schemas.StateInitialPage: `new_meeting_button: a prominent button with the text "New meeting" or
"Start a new meeting" on the dashboard.

start_an_instant_meeting: an item inside the dropdown opened by "New
meeting", labelled "Start an instant meeting".

join_meeting_button: a button or input on pre-join pages with text like
"Join now", "Ask to join", "Join meeting" or other combinations of "Join".

join_meeting_input: an input field accepting a meeting code or nickname.
`,
	schemas.StateAllowMicrophone: `use_microphone_and_camera: the primary action button on a permission
request page granting mic/camera access. Text examples: "Allow access",
"Continue".

allow_while_visiting_the_site: a button labelled "Allow while visiting the
site" or similar on a permissions request page.
`,
	schemas.StateConnectionPage: `join_meeting: a button on the pre-join page with text like "Join now",
"Ask to join", "Join meeting" or other combinations of "Join".
`,
	schemas.StateWorkspacePopup: popupControls,
	schemas.StateSignInToChrome: popupControls,
}

// elementInstructionFor assembles the system instruction for the
// schema-constrained element call on the given state.
func elementInstructionFor(state schemas.PageState) string {
	return elementPromptCommon + elementPrompts[state]
}
