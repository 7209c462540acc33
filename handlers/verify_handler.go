package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"turf-booking/internal/services"
)

type VerifyHandler struct {
	app    *pocketbase.PocketBase
	verify *services.VerifyService
}

func NewVerifyHandler(app *pocketbase.PocketBase, verify *services.VerifyService) *VerifyHandler {
	return &VerifyHandler{
		app:    app,
		verify: verify,
	}
}

// VerifyProofToken - gate-side scan of an entry proof token. Always 200
// with a verdict; an unknown token is a verdict, not an error.
func (h *VerifyHandler) VerifyProofToken(e *core.RequestEvent) error {
	token := e.Request.PathValue("secret")
	if token == "" {
		return apis.NewBadRequestError("secret is required", nil)
	}

	verdict, err := h.verify.Verify(e.Request.Context(), token)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, verdict)
}
