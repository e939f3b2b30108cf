// Poll HTTP handlers.
//
// This file exposes REST endpoints for poll resources:
//   - POST   /polls               (create, admin, Idempotency-Key aware)
//   - GET    /polls               (list active, paginated)
//   - GET    /polls/{id}          (fetch one)
//   - DELETE /polls/{id}          (delete, admin)
//   - POST   /polls/{id}/options  (add option, admin)
//
// Handlers are transport-thin: they bind input, resolve the principal set by
// middleware.Authenticate, call the services and map errors via failErr.
// Authorization itself lives in the services.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Akins-Coded/Online-Poll-System/internal/domain"
	"github.com/Akins-Coded/Online-Poll-System/internal/http/middleware"
	"github.com/Akins-Coded/Online-Poll-System/internal/services"
	"github.com/Akins-Coded/Online-Poll-System/internal/utils"
)

//
// Service contracts (context-aware)
//

// PollService defines poll lifecycle operations consumed by HTTP handlers.
type PollService interface {
	// CreatePollIdempotent creates a poll; a non-empty key already used by
	// the creator replays the recorded poll and reports replayed=true.
	CreatePollIdempotent(ctx context.Context, in services.NewPoll, creator domain.Principal, key string) (*domain.Poll, bool, error)
	ListActive(ctx context.Context, page, pageSize int) ([]domain.Poll, int64, error)
	GetPoll(ctx context.Context, pollID string) (*domain.Poll, error)
	DeletePoll(ctx context.Context, pollID string, requester domain.Principal) error
	AddOption(ctx context.Context, pollID, text string, requester domain.Principal) (*domain.Option, error)
}

// VoteService defines ballot operations.
type VoteService interface {
	CastVote(ctx context.Context, pollID, optionID string, voter domain.Principal) (*domain.Vote, error)
	UpdateVote(ctx context.Context, pollID, optionID string, voter domain.Principal) error
	MyVote(ctx context.Context, pollID string, voter domain.Principal) (*domain.Vote, error)
}

// ResultsService serves per-option tallies, usually through the result cache.
type ResultsService interface {
	GetResults(ctx context.Context, pollID string) (*services.ResultSnapshot, error)
}

//
// Handler wiring
//

// Handlers groups the poll, vote and results endpoints.
type Handlers struct {
	pollSvc    PollService
	voteSvc    VoteService
	resultsSvc ResultsService

	defaultPageSize int
}

// New constructs Handlers. defaultPageSize applies when page_size is absent;
// values <= 0 fall back to services.DefaultPageSize.
func New(pollSvc PollService, voteSvc VoteService, resultsSvc ResultsService, defaultPageSize int) *Handlers {
	if defaultPageSize <= 0 {
		defaultPageSize = services.DefaultPageSize
	}
	return &Handlers{
		pollSvc:         pollSvc,
		voteSvc:         voteSvc,
		resultsSvc:      resultsSvc,
		defaultPageSize: defaultPageSize,
	}
}

//
// DTOs
//

// CreatePollRequest is the JSON payload for creating a poll.
type CreatePollRequest struct {
	// Title is required, 1-255 characters after normalization.
	Title       string `json:"title" example:"Favorite Food"`
	Description string `json:"description" example:"Pick one"`
	// ExpiresAt must be in the future; omitted means seven days from now.
	ExpiresAt *time.Time `json:"expires_at,omitempty" example:"2030-01-01T00:00:00Z"`
	Options   []string   `json:"options" example:"Pizza,Sushi,Tacos"`
}

// AddOptionRequest is the JSON payload for adding an option to a poll.
type AddOptionRequest struct {
	Text string `json:"text" example:"Burgers"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListPollsResponse wraps a page of active polls.
type ListPollsResponse struct {
	Polls      []domain.Poll `json:"polls"`
	Pagination Pagination    `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses page and page_size, bounding page_size to
// services.MaxPageSize.
func (h *Handlers) clampPagination(c *gin.Context) utils.Page {
	return utils.ParsePage(c.Query("page"), c.Query("page_size"), h.defaultPageSize, services.MaxPageSize)
}

// pollID validates the :id path parameter; on failure it writes a 400.
func pollID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "poll id must be a UUID")
		return "", false
	}
	return id, true
}

//
// Handlers
//

// CreatePoll godoc
// @ID          createPoll
// @Summary     Create a poll
// @Description Creates a poll with its initial options. Admin only. A repeated Idempotency-Key from the same admin returns the original poll with 200 and `Idempotency-Replayed: true`.
// @Tags        Polls
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  true   "Caller user id"  example(admin-1)
// @Param       X-User-Role      header  string  true   "Caller role"     Enums(voter, admin)
// @Param       Idempotency-Key  header  string  false  "Key for safe retries (UUID recommended)"
// @Param       body             body    handlers.CreatePollRequest  true  "Poll payload"
//
// @Success     201  {object}  domain.Poll
// @Success     200  {object}  domain.Poll             "Idempotent replay"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     403  {object}  handlers.ErrorResponse  "Not an admin"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /polls [post]
func (h *Handlers) CreatePoll(c *gin.Context) {
	var req CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	key, _ := middleware.GetIdempotencyKey(c)

	in := services.NewPoll{
		Title:       req.Title,
		Description: req.Description,
		ExpiresAt:   req.ExpiresAt,
		Options:     req.Options,
	}
	p, replayed, err := h.pollSvc.CreatePollIdempotent(c.Request.Context(), in, middleware.PrincipalFrom(c), key)
	if err != nil {
		failErr(c, err)
		return
	}
	if replayed {
		c.Header("Idempotency-Replayed", "true")
		ok(c, http.StatusOK, p)
		return
	}
	ok(c, http.StatusCreated, p)
}

// ListPolls godoc
// @ID          listPolls
// @Summary     List active polls
// @Description Returns a page of polls that have not expired, newest first.
// @Tags        Polls
// @Produce     json
//
// @Param       page       query  int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page"  minimum(1) maximum(100) default(10)
//
// @Success     200  {object}  handlers.ListPollsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /polls [get]
func (h *Handlers) ListPolls(c *gin.Context) {
	pg := h.clampPagination(c)

	items, total, err := h.pollSvc.ListActive(c.Request.Context(), pg.Number, pg.Size)
	if err != nil {
		failErr(c, err)
		return
	}
	if items == nil {
		items = []domain.Poll{}
	}

	totalPages := pg.TotalPages(total)
	ok(c, http.StatusOK, ListPollsResponse{
		Polls: items,
		Pagination: Pagination{
			Page:       pg.Number,
			PageSize:   pg.Size,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    pg.Number < totalPages,
		},
	})
}

// GetPoll godoc
// @ID          getPoll
// @Summary     Get a poll
// @Tags        Polls
// @Produce     json
// @Param       id   path      string  true  "Poll ID (UUID)"  format(uuid)
// @Success     200  {object}  domain.Poll
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Poll not found"
// @Router      /polls/{id} [get]
func (h *Handlers) GetPoll(c *gin.Context) {
	id, valid := pollID(c)
	if !valid {
		return
	}
	p, err := h.pollSvc.GetPoll(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// DeletePoll godoc
// @ID          deletePoll
// @Summary     Delete a poll
// @Description Deletes a poll with its options and votes. Admin only.
// @Tags        Polls
// @Param       X-User-ID    header  string  true  "Caller user id"
// @Param       X-User-Role  header  string  true  "Caller role"  Enums(voter, admin)
// @Param       id           path    string  true  "Poll ID (UUID)"  format(uuid)
// @Success     204  {string}  string "No Content"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     403  {object}  handlers.ErrorResponse  "Not an admin"
// @Failure     404  {object}  handlers.ErrorResponse  "Poll not found"
// @Router      /polls/{id} [delete]
func (h *Handlers) DeletePoll(c *gin.Context) {
	id, valid := pollID(c)
	if !valid {
		return
	}
	if err := h.pollSvc.DeletePoll(c.Request.Context(), id, middleware.PrincipalFrom(c)); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// AddOption godoc
// @ID          addOption
// @Summary     Add an option to a poll
// @Description Appends an option to an active poll. Admin only.
// @Tags        Polls
// @Accept      json
// @Produce     json
// @Param       X-User-ID    header  string  true  "Caller user id"
// @Param       X-User-Role  header  string  true  "Caller role"  Enums(voter, admin)
// @Param       id           path    string  true  "Poll ID (UUID)"  format(uuid)
// @Param       body         body    handlers.AddOptionRequest  true  "Option payload"
// @Success     201  {object}  domain.Option
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request or poll expired"
// @Failure     403  {object}  handlers.ErrorResponse  "Not an admin"
// @Failure     404  {object}  handlers.ErrorResponse  "Poll not found"
// @Router      /polls/{id}/options [post]
func (h *Handlers) AddOption(c *gin.Context) {
	id, valid := pollID(c)
	if !valid {
		return
	}
	var req AddOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	opt, err := h.pollSvc.AddOption(c.Request.Context(), id, req.Text, middleware.PrincipalFrom(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, opt)
}
