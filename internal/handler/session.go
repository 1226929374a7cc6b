package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/classpeak/group-booking/internal/booking"
	"github.com/classpeak/group-booking/internal/cache"
	"github.com/classpeak/group-booking/internal/queue"
)

// SessionHandler exposes session-level reads and staff operations:
// availability, the ordered waitlist, visibility toggling and
// capacity changes.
type SessionHandler struct {
	Engine *booking.Engine
	Cache  *cache.Availability
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(engine *booking.Engine, avail *cache.Availability) *SessionHandler {
	if engine == nil {
		panic("nil engine passed to NewSessionHandler")
	}
	return &SessionHandler{Engine: engine, Cache: avail}
}

// GetAvailability handles GET /v1/sessions/:id/availability.  Hidden
// sessions are visible to staff only; members and guests of the
// tenant receive 404.  Snapshots are served from the Redis cache when
// fresh, falling back to the store on a miss.
func (h *SessionHandler) GetAvailability(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sessionID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	ctx := c.Request().Context()
	staff := isStaff(c)
	// Staff snapshots bypass the cache: they may need hidden sessions
	// and front-desk decisions should not act on stale counts.
	if !staff {
		if av, hit := h.Cache.Get(ctx, tenantID, sessionID); hit {
			return c.JSON(http.StatusOK, av)
		}
	}
	av, err := h.Engine.GetAvailability(ctx, tenantID, sessionID, staff)
	if err != nil {
		return engineError(c, err)
	}
	if !staff {
		h.Cache.Set(ctx, tenantID, sessionID, av)
	}
	return c.JSON(http.StatusOK, av)
}

// GetWaitlist handles GET /v1/sessions/:id/waitlist.  The list is
// ordered by position, which matches join order.
func (h *SessionHandler) GetWaitlist(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sessionID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	waitlist, err := h.Engine.GetWaitlist(c.Request().Context(), tenantID, sessionID)
	if err != nil {
		return engineError(c, err)
	}
	entries := make([]echo.Map, 0, len(waitlist))
	for _, p := range waitlist {
		entries = append(entries, echo.Map{
			"participant_id": p.ID,
			"customer_id":    p.CustomerID,
			"position":       p.Position,
			"joined_at":      p.JoinedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"waitlist": entries})
}

// SetVisibility handles PATCH /v1/sessions/:id/visibility.  A JSON
// body {"visible": bool} sets the flag explicitly; an absent body
// toggles the current value.
func (h *SessionHandler) SetVisibility(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sessionID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	ctx := c.Request().Context()
	var body struct {
		Visible *bool `json:"visible"`
	}
	_ = c.Bind(&body)
	visible := body.Visible
	if visible == nil {
		sess, err := h.Engine.GetSession(ctx, tenantID, sessionID)
		if err != nil {
			return engineError(c, err)
		}
		v := !sess.Visible
		visible = &v
	}
	if err := h.Engine.SetVisibility(ctx, tenantID, sessionID, *visible); err != nil {
		return engineError(c, err)
	}
	h.Cache.Invalidate(ctx, tenantID, sessionID)
	return c.JSON(http.StatusOK, echo.Map{"visible": *visible})
}

// SetCapacity handles PATCH /v1/sessions/:id/capacity.  Raising the
// capacity immediately backfills the freed seats from the waitlist in
// FIFO order; the promoted participants are reported and announced on
// the event queue.  Lowering the capacity never evicts anyone.
func (h *SessionHandler) SetCapacity(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sessionID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	var body struct {
		Capacity *uint32 `json:"capacity"`
	}
	if err := c.Bind(&body); err != nil || body.Capacity == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity is required"})
	}
	ctx := c.Request().Context()
	res, err := h.Engine.SetCapacity(ctx, tenantID, sessionID, *body.Capacity)
	if err != nil && res == nil {
		return engineError(c, err)
	}
	h.Cache.Invalidate(ctx, tenantID, sessionID)
	if len(res.Promoted) > 0 {
		// Reuse the booking handler's publish path via a local publish:
		// capacity raises behave exactly like cancellations for the
		// promoted entries.
		now := time.Now().UTC().Format(time.RFC3339)
		for _, p := range res.Promoted {
			_ = publishPromoted(c, tenantID, res.Session.Title, res.Session.StartsAt, p.ID, p.CustomerID, sessionID, now)
		}
	}
	if err != nil {
		// The capacity change committed but the promotion chain halted
		// partway; report what was promoted and let the caller retry.
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"error":    "promotion incomplete, retry",
			"promoted": len(res.Promoted),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"capacity": res.Session.Capacity,
		"promoted": len(res.Promoted),
	})
}

// publishPromoted emits a single promotion event.  Kept separate so
// SessionHandler does not depend on BookingHandler.
func publishPromoted(c echo.Context, tenantID uint64, title string, startsAt time.Time, participantID, customerID, sessionID uint64, occurredAt string) error {
	return publishEvent(c, queue.ParticipantEvent{
		Kind:          queue.KindPromoted,
		TenantID:      tenantID,
		SessionID:     sessionID,
		SessionTitle:  title,
		StartsAt:      startsAt.UTC().Format(time.RFC3339),
		ParticipantID: participantID,
		CustomerID:    customerID,
		OccurredAt:    occurredAt,
	})
}
