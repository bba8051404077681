// File: internal/navigator/incall.go
package navigator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/meetpilot/api/schemas"
	"github.com/xkilldash9x/meetpilot/internal/vision"
)

// Template sprite files used for click fallbacks when label resolution is
// not trustworthy enough.
const (
	tplAdmitNotification = "admit_view.png"
	tplViewPopup         = "view.png"
	tplAdmitAll          = "admit_all.png"
	tplDenyAllAdmitAll   = "deny_all_admit_all.png"
	tplCancelAdmit       = "cancel_admit.png"
	tplLeaveCall         = "leave_call.png"
)

// Horizontal click offsets for sprites whose hit target sits next to the
// recognizable part of the image.
const (
	admitNotificationShift = -15
	denyAllAdmitAllShift   = 45
	cancelAdmitShift       = 40
)

const cascadePause = time.Second

var viewParticipantsAliases = []string{
	"meet_call_controls_view_all_participants",
	"meet_callcontrol_viewparticipants_button",
	"meet_callcontrol_view_participants_button",
	"someone_wants_to_join_this_call_view",
	"call_control_view_button",
	"someone_wants_to_join_this_call_view_button",
	"meet_incoming_call_view_button",
	"call_control_someone_wants_to_join_this_call_view_button",
	"meet_someone_wants_to_join_this_call_view_button",
}

// monitorCall is the in-call loop: one classification per poll, then leave
// handling, isolation tracking and (for hosts) the admit cascade. It returns
// nil on a graceful exit and an error when the call ended on a failure.
func (c *Controller) monitorCall(ctx context.Context) error {
	aloneCount := 0
	gettingReadySeen := 0

	for {
		if err := c.observe(ctx); err != nil {
			return err
		}

		switch c.cur.State {
		case schemas.StateMeetingPage:
			resolver := vision.NewResolver(c.cur.Elements)

			if c.leave.Requested() {
				c.logger.Info("Leave requested, exiting the call.")
				c.leaveCall(ctx, resolver)
				return nil
			}

			if c.cur.AloneInCall {
				// The counter deliberately survives non-alone iterations:
				// total time spent alone is what bounds the session, not one
				// uninterrupted stretch.
				aloneCount++
				if aloneCount >= c.cfg.AloneThreshold {
					c.logger.Info("Alone in the call too long, leaving.",
						zap.Int("alone_polls", aloneCount))
					c.leaveCall(ctx, resolver)
					return nil
				}
			}

			if c.nav.host {
				if m := resolver.Find(schemas.ControlMeetingReadyClose, "your_meeting_is_ready_close"); m.Confidence == 100.0 {
					c.actor.ClickMatch(ctx, m)
				}
				c.admitParticipants(ctx, resolver)
			}

			if err := c.sleep(ctx, c.cfg.PollInterval); err != nil {
				return err
			}

		case schemas.StateGettingReady:
			// The model sometimes mistakes the active call for the green
			// room. Tolerate a few repeats before declaring the call broken.
			if gettingReadySeen >= c.cfg.GettingReadyTolerance {
				return fmt.Errorf("green room kept classifying while in the call, giving up after %d repeats", gettingReadySeen)
			}
			gettingReadySeen++
			c.logger.Warn("Green room classified during an active call.",
				zap.Int("occurrence", gettingReadySeen))

		default:
			return fmt.Errorf("%w: %s during the call", ErrUnexpectedState, c.cur.State)
		}
	}
}

// leaveCall clicks the end-call control when it resolves confidently enough,
// then always tries the sprite fallback. Neither click is verifiable, so
// both are attempted.
func (c *Controller) leaveCall(ctx context.Context, resolver *vision.Resolver) {
	m := resolver.Find(schemas.ControlEndCall,
		"meet_leave_call_button",
		"meet_call_control_leave_call_button")
	if m.Confidence >= c.cfg.LeaveConfidence {
		c.logger.Info("Leaving via resolved end-call control.",
			zap.Float64("confidence", m.Confidence))
		c.actor.ClickMatch(ctx, m)
	} else {
		c.logger.Warn("Leave requested but no end-call control resolved.",
			zap.Float64("confidence", m.Confidence))
	}
	c.actor.ClickTemplate(ctx, c.lastImg, tplLeaveCall, 0)
}

// admitParticipants runs the host's admit cascade. A click's success cannot
// be confirmed from pixels alone, so later strategies run even after an
// earlier one reported success; only the strategies that end in a confirmed
// template click short-circuit.
func (c *Controller) admitParticipants(ctx context.Context, resolver *vision.Resolver) {
	if c.actor.ClickTemplate(ctx, c.lastImg, tplAdmitNotification, admitNotificationShift) {
		c.logger.Info("Admitted via notification sprite.")
		return
	}

	if m := resolver.Find(schemas.ControlAdmitNotification); m.Confidence >= c.cfg.AdmitConfidence {
		c.logger.Info("Clicking admit notification.", zap.Float64("confidence", m.Confidence))
		c.actor.ClickMatch(ctx, m)
	}

	if m := resolver.Find(schemas.ControlViewParticipants, viewParticipantsAliases...); m.Confidence >= c.cfg.ViewConfidence {
		c.logger.Info("Opening participants panel for admission.",
			zap.Float64("confidence", m.Confidence))
		c.actor.ClickMatch(ctx, m)
		_ = c.sleep(ctx, cascadePause)
		c.admitAllSequence(ctx)
		return
	}

	if m := resolver.Find(schemas.ControlPeopleAdmit); m.Confidence > c.cfg.PersonAdmitConfidence {
		c.logger.Info("Clicking per-person admit in the people panel.",
			zap.Float64("confidence", m.Confidence))
		c.actor.ClickMatch(ctx, m)
	}

	if m := resolver.Find(schemas.ControlPeopleAdmitAll,
		"people_admit_all_button", "people_admit_all"); m.Confidence > c.cfg.AdmitAllConfidence {
		c.logger.Info("Clicking admit-all in the people panel.",
			zap.Float64("confidence", m.Confidence))
		c.actor.ClickMatch(ctx, m)
		_ = c.sleep(ctx, cascadePause)
		if c.clickTemplateFresh(ctx, tplCancelAdmit, cancelAdmitShift) {
			return
		}
	}

	if m := resolver.Find(schemas.ControlAdmitAllConfirm); m.Confidence == 100.0 {
		c.logger.Info("Clicking admit-all confirmation.")
		c.actor.ClickMatch(ctx, m)
	}

	// Last resort: open the waiting-room popup by sprite and run the
	// admit-all sequence inside it.
	if c.clickTemplateFresh(ctx, tplViewPopup, 0) {
		c.admitAllSequence(ctx)
	}
}

// admitAllSequence drives the admit-all dialog purely by sprites, on fresh
// screenshots since the panel just changed.
func (c *Controller) admitAllSequence(ctx context.Context) bool {
	ok := c.clickTemplateFresh(ctx, tplAdmitAll, 0)
	if !ok {
		ok = c.clickTemplateFresh(ctx, tplDenyAllAdmitAll, denyAllAdmitAllShift)
	}
	if !ok {
		return false
	}
	_ = c.sleep(ctx, cascadePause)
	return c.clickTemplateFresh(ctx, tplCancelAdmit, cancelAdmitShift)
}

// clickTemplateFresh re-captures the screen before the template search. A
// failed capture degrades to false like any other action failure.
func (c *Controller) clickTemplateFresh(ctx context.Context, name string, shiftX int) bool {
	img, _, _, err := c.screenProvider.Capture(ctx)
	if err != nil {
		c.logger.Warn("Cannot capture screen for template search.",
			zap.String("template", name), zap.Error(err))
		return false
	}
	c.lastImg = img
	return c.actor.ClickTemplate(ctx, img, name, shiftX)
}
