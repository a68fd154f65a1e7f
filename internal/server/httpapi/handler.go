package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lighthouse-crew/profilesync/internal/common"
	"github.com/lighthouse-crew/profilesync/internal/server/models"
	"github.com/lighthouse-crew/profilesync/internal/server/validation"
)

// StartSession resolves the caller's profile and opens an editing session.
// 404 here means "no profile": the client is expected to send the user back
// to onboarding, the wizard cannot proceed without a resolvable identity.
func (s *HTTPServer) StartSession(c *fiber.Ctx) error {
	principal, ok := principalFromCtx(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "missing principal")
	}

	s.logger.Info(c.Context(), "Session start request", "auth_id", principal.AuthID)

	result, err := s.sessions.Start(c.Context(), principal)
	if err != nil {
		if errors.Is(err, common.ErrIdentityNotFound) {
			return respondError(c, http.StatusNotFound, "no profile found for this account")
		}
		s.logger.Error(c.Context(), "session start failed", "error", err)
		return respondError(c, http.StatusInternalServerError, "failed to start session")
	}

	return respondJSON(c, http.StatusCreated, fiber.Map{
		"profile_id": result.ProfileID,
		"state":      result.Snapshot,
	})
}

// EndSession flushes pending edits and tears the session down.
func (s *HTTPServer) EndSession(c *fiber.Ctx) error {
	principal, ok := principalFromCtx(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "missing principal")
	}

	if err := s.sessions.End(c.Context(), principal.AuthID); err != nil {
		s.logger.Error(c.Context(), "session end failed", "error", err)
		return respondError(c, http.StatusInternalServerError, "failed to save pending changes")
	}

	return c.SendStatus(http.StatusNoContent)
}

// UpdateState submits the latest full form snapshot. It returns immediately;
// persistence happens behind the debounce window.
func (s *HTTPServer) UpdateState(c *fiber.Ctx) error {
	principal, ok := principalFromCtx(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "missing principal")
	}

	var snap models.Snapshot
	if err := c.BodyParser(&snap); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid JSON payload")
	}

	if err := s.sessions.Change(principal.AuthID, snap); err != nil {
		return s.sessionError(c, err, "failed to submit changes")
	}

	return c.SendStatus(http.StatusAccepted)
}

// FlushSession persists all pending edits before returning.
func (s *HTTPServer) FlushSession(c *fiber.Ctx) error {
	principal, ok := principalFromCtx(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "missing principal")
	}

	if err := s.sessions.Flush(c.Context(), principal.AuthID); err != nil {
		return s.sessionError(c, err, "failed to save changes")
	}

	return c.SendStatus(http.StatusNoContent)
}

// SessionStatus returns the save indicator for the active session.
func (s *HTTPServer) SessionStatus(c *fiber.Ctx) error {
	principal, ok := principalFromCtx(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "missing principal")
	}

	info, err := s.sessions.Status(principal.AuthID)
	if err != nil {
		return s.sessionError(c, err, "failed to read status")
	}

	return respondJSON(c, http.StatusOK, info)
}

type validateResponse struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

// ValidateStep runs the section validator for one wizard step against the
// submitted snapshot. When the step passes, the snapshot is flushed before
// returning, so a passing response means the step's data is stored.
func (s *HTTPServer) ValidateStep(c *fiber.Ctx) error {
	principal, ok := principalFromCtx(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "missing principal")
	}

	step, ok := parseStep(c.Params("step"))
	if !ok {
		return respondError(c, http.StatusBadRequest, "unknown step")
	}

	var snap models.Snapshot
	if err := c.BodyParser(&snap); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid JSON payload")
	}

	result := validation.Validate(step, snap)
	if !result.Valid {
		return respondJSON(c, http.StatusOK, validateResponse{Valid: false, Errors: result.Errors})
	}

	if err := s.sessions.Change(principal.AuthID, snap); err != nil {
		return s.sessionError(c, err, "failed to submit changes")
	}
	if err := s.sessions.Flush(c.Context(), principal.AuthID); err != nil {
		return s.sessionError(c, err, "failed to save changes")
	}

	return respondJSON(c, http.StatusOK, validateResponse{Valid: true})
}

// PhotoUploadURL hands the client a presigned PUT URL for a profile photo.
func (s *HTTPServer) PhotoUploadURL(c *fiber.Ctx) error {
	principal, ok := principalFromCtx(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "missing principal")
	}

	profileID, err := s.sessions.ProfileID(principal.AuthID)
	if err != nil {
		return s.sessionError(c, err, "failed to resolve profile")
	}

	key, url, err := s.uploads.GetPresignedPutUrl(c.Context(), profileID)
	if err != nil {
		s.logger.Error(c.Context(), "presign failed", "error", err)
		return respondError(c, http.StatusInternalServerError, "failed to prepare upload")
	}

	return respondJSON(c, http.StatusOK, fiber.Map{
		"key": key,
		"url": url,
	})
}

// Health answers liveness probes; the database ping makes it double as a
// readiness check.
func (s *HTTPServer) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 1*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return respondJSON(c, http.StatusServiceUnavailable, fiber.Map{
			"status":  "not_ready",
			"details": err.Error(),
		})
	}
	return respondJSON(c, http.StatusOK, fiber.Map{"status": "ok"})
}

func (s *HTTPServer) sessionError(c *fiber.Ctx, err error, fallback string) error {
	if errors.Is(err, common.ErrSessionNotFound) {
		return respondError(c, http.StatusConflict, "no active editing session")
	}
	s.logger.Error(c.Context(), fallback, "error", err)
	return respondError(c, http.StatusInternalServerError, fallback)
}

func parseStep(raw string) (models.Section, bool) {
	for _, sec := range models.Sections() {
		if raw == string(sec) {
			return sec, true
		}
	}
	return "", false
}
