// Vote HTTP handlers.
//
//   - POST /polls/{id}/vote  (cast, authenticated)
//   - GET  /polls/{id}/vote  (caller's own vote)
//   - PUT  /polls/{id}/vote  (always rejected; votes are immutable)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Akins-Coded/Online-Poll-System/internal/domain"
	"github.com/Akins-Coded/Online-Poll-System/internal/http/middleware"
)

// CastVoteRequest is the JSON payload for casting a vote.
type CastVoteRequest struct {
	OptionID string `json:"option_id" example:"0b6c2f0e-7c1e-4d55-9a3e-5a1f3a1c9d10"`
}

// VoteResponse acknowledges a recorded vote.
type VoteResponse struct {
	Message string       `json:"message" example:"Vote recorded successfully"`
	Vote    *domain.Vote `json:"vote"`
}

// CastVote godoc
// @ID          castVote
// @Summary     Vote on a poll
// @Description Records the caller's single vote on the poll. A second vote by the same user is rejected.
// @Tags        Votes
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  true  "Caller user id"  example(user123)
// @Param       id         path    string  true  "Poll ID (UUID)"  format(uuid)
// @Param       body       body    handlers.CastVoteRequest  true  "Chosen option"
// @Success     201  {object}  handlers.VoteResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Expired poll, already voted, or bad option"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     404  {object}  handlers.ErrorResponse  "Poll or option not found"
// @Router      /polls/{id}/vote [post]
func (h *Handlers) CastVote(c *gin.Context) {
	id, valid := pollID(c)
	if !valid {
		return
	}
	var req CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	v, err := h.voteSvc.CastVote(c.Request.Context(), id, req.OptionID, middleware.PrincipalFrom(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, VoteResponse{Message: "Vote recorded successfully", Vote: v})
}

// MyVote godoc
// @ID          myVote
// @Summary     Get the caller's vote
// @Tags        Votes
// @Produce     json
// @Param       X-User-ID  header  string  true  "Caller user id"
// @Param       id         path    string  true  "Poll ID (UUID)"  format(uuid)
// @Success     200  {object}  domain.Vote
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     404  {object}  handlers.ErrorResponse  "Poll not found or not voted"
// @Router      /polls/{id}/vote [get]
func (h *Handlers) MyVote(c *gin.Context) {
	id, valid := pollID(c)
	if !valid {
		return
	}
	v, err := h.voteSvc.MyVote(c.Request.Context(), id, middleware.PrincipalFrom(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, v)
}

// UpdateVote godoc
// @ID          updateVote
// @Summary     Change a vote (not supported)
// @Description Votes are final once cast; this endpoint always answers 400 votes_immutable.
// @Tags        Votes
// @Accept      json
// @Produce     json
// @Param       id    path  string  true  "Poll ID (UUID)"  format(uuid)
// @Param       body  body  handlers.CastVoteRequest  true  "Chosen option"
// @Failure     400  {object}  handlers.ErrorResponse  "Votes are immutable"
// @Router      /polls/{id}/vote [put]
func (h *Handlers) UpdateVote(c *gin.Context) {
	id, valid := pollID(c)
	if !valid {
		return
	}
	var req CastVoteRequest
	_ = c.ShouldBindJSON(&req)
	failErr(c, h.voteSvc.UpdateVote(c.Request.Context(), id, req.OptionID, middleware.PrincipalFrom(c)))
}
