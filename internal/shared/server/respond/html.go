package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"humangov/internal/shared/server/flash"
)

// StateKey is the context key holding the display label of the state.
const StateKey = "usState"

// HTML renders a page from the template set with the shared layout values
// (state label, pending notices, search query) filled in.
func HTML(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["USState"] = c.GetString(StateKey)
	data["Flashes"] = flash.Pop(c)
	if _, ok := data["Query"]; !ok {
		data["Query"] = ""
	}
	c.HTML(status, name, data)
}

// Redirect sends a 302 to location.
func Redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}
