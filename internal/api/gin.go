package api

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// PathParam is the wildcard that carries the request path below the API prefix.
const PathParam = "path"

// Handle adapts the dispatcher to gin. It parses the request, dispatches it and
// writes the result as JSON.
func (d *Dispatcher) Handle(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := ParseRequest(c.Request, c.Param(PathParam))
	if err != nil {
		writeResponse(c, ErrorResponse(ctx, err))
		return
	}

	writeResponse(c, d.Dispatch(ctx, req))
}

func writeResponse(c *gin.Context, resp Response) {
	if eb, ok := resp.Body.(ErrorBody); ok {
		// Recorded for the access log.
		_ = c.Error(errors.New(eb.Error))
	}
	c.JSON(resp.Status, resp.Body)
}
