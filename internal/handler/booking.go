package handler

import (
	"net/http" // HTTP status codes
	"time"     // event timestamps

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/classpeak/group-booking/internal/booking"
	"github.com/classpeak/group-booking/internal/cache"
	"github.com/classpeak/group-booking/internal/model"
	"github.com/classpeak/group-booking/internal/queue"
	queue_publisher "github.com/classpeak/group-booking/internal/service"
)

// BookingHandler exposes the engine's roster and waitlist mutations
// over HTTP.  All methods assume that JWT authentication and role
// validation have already been performed by middleware.  After every
// successful mutation the handler invalidates the availability cache
// and publishes participant events; a failed publish is logged by the
// publisher and never fails the request, since the roster change is
// already committed.
type BookingHandler struct {
	Engine *booking.Engine     // the capacity and waitlist engine
	Cache  *cache.Availability // availability snapshot cache, may be disabled
}

// NewBookingHandler constructs a BookingHandler.  The engine must be
// non-nil; the cache may be a disabled instance.
func NewBookingHandler(engine *booking.Engine, avail *cache.Availability) *BookingHandler {
	if engine == nil {
		panic("nil engine passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: engine, Cache: avail}
}

// publishEvents enriches and publishes one event per participant.
// Session context is looked up once; if the lookup fails the events
// are sent without title enrichment rather than dropped.
func (h *BookingHandler) publishEvents(c echo.Context, kind string, tenantID, sessionID uint64, parts []model.Participant) {
	ctx := c.Request().Context()
	title, startsAt := "", ""
	if sess, err := h.Engine.GetSession(ctx, tenantID, sessionID); err == nil {
		title = sess.Title
		startsAt = sess.StartsAt.UTC().Format(time.RFC3339)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for _, p := range parts {
		_ = queue_publisher.PublishParticipantEvent(ctx, queue.ParticipantEvent{
			Kind:          kind,
			TenantID:      tenantID,
			SessionID:     sessionID,
			SessionTitle:  title,
			StartsAt:      startsAt,
			ParticipantID: p.ID,
			CustomerID:    p.CustomerID,
			OccurredAt:    now,
		})
	}
}

// Join handles POST /v1/sessions/:id/join.  The authenticated user
// takes a seat when one is open and otherwise lands on the waitlist;
// the response distinguishes the two outcomes and reports the
// waitlist position.  Joining a session the user is already active in
// returns 409.
func (h *BookingHandler) Join(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sessionID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	res, err := h.Engine.Join(c.Request().Context(), tenantID, sessionID, userID)
	if err != nil {
		return engineError(c, err)
	}
	h.Cache.Invalidate(c.Request().Context(), tenantID, sessionID)
	if res.Waitlisted {
		return c.JSON(http.StatusCreated, echo.Map{
			"participant_id": res.Participant.ID,
			"state":          res.Participant.State,
			"position":       res.Position,
		})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"participant_id": res.Participant.ID,
		"state":          res.Participant.State,
	})
}

// Cancel handles DELETE /v1/sessions/:id/participants/:pid.  Members
// may cancel only their own participant; staff may cancel anyone's.
// A freed seat is immediately backfilled from the waitlist and the
// promoted participants are reported in the response.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sessionID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	participantID, ok := pathID(c, "pid")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid participant id"})
	}
	ctx := c.Request().Context()
	if !isStaff(c) {
		// Ownership check: a member cancelling someone else's spot gets
		// the same 404 an absent participant would produce.
		p, err := h.Engine.GetParticipant(ctx, tenantID, sessionID, participantID)
		if err != nil {
			return engineError(c, err)
		}
		if p.CustomerID != userID {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
	}
	res, err := h.Engine.Cancel(ctx, tenantID, sessionID, participantID)
	if err != nil && res == nil {
		return engineError(c, err)
	}
	h.Cache.Invalidate(ctx, tenantID, sessionID)
	if len(res.Promoted) > 0 {
		h.publishEvents(c, queue.KindPromoted, tenantID, sessionID, res.Promoted)
	}
	if err != nil {
		// The cancellation committed but the promotion chain halted
		// partway; report what was promoted and let the caller retry.
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"error":    "promotion incomplete, retry",
			"promoted": len(res.Promoted),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"participant_id": res.Cancelled.ID,
		"state":          res.Cancelled.State,
		"promoted":       len(res.Promoted),
	})
}

// CheckIn handles POST /v1/participants/:pid/checkin.  Checking in an
// already checked-in participant succeeds and reports the unchanged
// state.
func (h *BookingHandler) CheckIn(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	participantID, ok := pathID(c, "pid")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid participant id"})
	}
	p, err := h.Engine.CheckIn(c.Request().Context(), tenantID, participantID)
	if err != nil {
		return engineError(c, err)
	}
	h.publishEvents(c, queue.KindCheckedIn, tenantID, p.SessionID, []model.Participant{*p})
	return c.JSON(http.StatusOK, echo.Map{
		"participant_id": p.ID,
		"state":          p.State,
	})
}

// CheckInAll handles POST /v1/sessions/:id/checkin-all.  Every booked
// participant is marked checked in; the response reports how many
// entries newly transitioned, so a repeated call returns zero.
func (h *BookingHandler) CheckInAll(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sessionID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	checked, err := h.Engine.CheckInAll(c.Request().Context(), tenantID, sessionID)
	if err != nil && checked == nil {
		return engineError(c, err)
	}
	if len(checked) > 0 {
		h.publishEvents(c, queue.KindCheckedIn, tenantID, sessionID, checked)
	}
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"error":      "check-in incomplete, retry",
			"checked_in": len(checked),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"checked_in": len(checked)})
}

// MarkNoShow handles POST /v1/participants/:pid/no-show.  Only booked
// participants can be marked; a checked-in or already no-show
// participant yields 422.
func (h *BookingHandler) MarkNoShow(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	participantID, ok := pathID(c, "pid")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid participant id"})
	}
	p, err := h.Engine.MarkNoShow(c.Request().Context(), tenantID, participantID)
	if err != nil {
		return engineError(c, err)
	}
	h.publishEvents(c, queue.KindNoShow, tenantID, p.SessionID, []model.Participant{*p})
	return c.JSON(http.StatusOK, echo.Map{
		"participant_id": p.ID,
		"state":          p.State,
	})
}

// Promote handles POST /v1/sessions/:id/promote.  Without a body the
// waitlist head is promoted; a JSON body naming participant_id
// promotes that entry out of order as an explicit operator override.
// One entry moves per call; with a full roster the call returns 409.
func (h *BookingHandler) Promote(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sessionID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	var body struct {
		ParticipantID uint64 `json:"participant_id"`
	}
	// The body is optional; an empty or absent body means "promote the
	// head of the waitlist".
	_ = c.Bind(&body)
	p, err := h.Engine.Promote(c.Request().Context(), tenantID, sessionID, body.ParticipantID)
	if err != nil {
		return engineError(c, err)
	}
	h.Cache.Invalidate(c.Request().Context(), tenantID, sessionID)
	h.publishEvents(c, queue.KindPromoted, tenantID, sessionID, []model.Participant{*p})
	return c.JSON(http.StatusOK, echo.Map{
		"participant_id": p.ID,
		"state":          p.State,
	})
}
