package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetResults godoc
// @ID          getResults
// @Summary     Poll results
// @Description Returns per-option vote counts. Served from the result cache; any vote or option change invalidates it.
// @Tags        Results
// @Produce     json
// @Param       id   path      string  true  "Poll ID (UUID)"  format(uuid)
// @Success     200  {object}  services.ResultSnapshot
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Poll not found"
// @Router      /polls/{id}/results [get]
func (h *Handlers) GetResults(c *gin.Context) {
	id, valid := pollID(c)
	if !valid {
		return
	}
	snap, err := h.resultsSvc.GetResults(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, snap)
}
