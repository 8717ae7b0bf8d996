package matching

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"jobmatch-backend/internal/shared/server/middleware"
	"jobmatch-backend/internal/shared/server/respond"
	"jobmatch-backend/internal/shared/telemetry"
)

// Handler wires HTTP handlers to the match service and result log.
type Handler struct {
	Svc     *Service
	Results Repo
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, results Repo) *Handler {
	return &Handler{Svc: svc, Results: results}
}

// RegisterRoutes attaches match routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/match", h.match)
	rg.GET("/matches", h.listMatches)
}

type matchRequest struct {
	SubjectID string `json:"subjectId"`
	JobID     string `json:"jobId"`
	FastFirst bool   `json:"fastFirst"`
}

func (h *Handler) match(c *gin.Context) {
	var body matchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "request body must be a JSON object", []respond.FieldIssue{
			{Field: "body", Issue: "invalid_json"},
		})
		return
	}
	body.SubjectID = strings.TrimSpace(body.SubjectID)
	body.JobID = strings.TrimSpace(body.JobID)

	var issues []respond.FieldIssue
	if body.SubjectID == "" {
		issues = append(issues, respond.FieldIssue{Field: "subjectId", Issue: "required"})
	}
	if body.JobID == "" {
		issues = append(issues, respond.FieldIssue{Field: "jobId", Issue: "required"})
	}
	if len(issues) > 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "subjectId and jobId are required", issues)
		return
	}

	requester := middleware.UserIDFromContext(c)
	if requester != body.SubjectID {
		telemetry.Warn("match.forbidden", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"subject_id": body.SubjectID,
			"requester":  requester,
		})
		respond.Error(c, http.StatusForbidden, "forbidden", "you can only match your own profile", nil)
		return
	}
	c.Set(middleware.JobIDKey, body.JobID)

	out, err := h.Svc.Match(c.Request.Context(), Request{
		SubjectID: body.SubjectID,
		JobID:     body.JobID,
		FastFirst: body.FastFirst,
		RequestID: middleware.RequestIDFromContext(c),
	})
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), []respond.FieldIssue{
				{Field: verr.Field, Issue: verr.Issue},
			})
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to compute match", nil)
		return
	}

	c.Set(middleware.MatchSourceKey, string(out.Source))
	c.Set(middleware.MatchCachedKey, out.Cached)
	if out.MatchID != "" {
		c.Set(middleware.MatchIDKey, out.MatchID)
	}
	respond.JSON(c, http.StatusOK, out)
}

func (h *Handler) listMatches(c *gin.Context) {
	subjectID := middleware.UserIDFromContext(c)

	filter := ListFilter{JobID: strings.TrimSpace(c.Query("jobId"))}
	var issues []respond.FieldIssue
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			issues = append(issues, respond.FieldIssue{Field: "limit", Issue: "must be a positive integer"})
		}
		filter.Limit = parsed
	}
	if v := c.Query("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			issues = append(issues, respond.FieldIssue{Field: "offset", Issue: "must be a non-negative integer"})
		}
		filter.Offset = parsed
	}
	if len(issues) > 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid paging parameters", issues)
		return
	}
	filter = filter.normalized()

	records, err := h.Results.ListBySubject(c.Request.Context(), subjectID, filter)
	if err != nil {
		telemetry.Error("match.history.failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"subject_id": subjectID,
			"err":        err,
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list matches", nil)
		return
	}

	respond.Paged(c, http.StatusOK, records, filter.Limit, filter.Offset)
}
