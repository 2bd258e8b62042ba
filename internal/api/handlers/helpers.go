package handlers

import (
	"net/http"

	"github.com/skysweep/skysweep/internal/pkg/errors"
	"github.com/skysweep/skysweep/internal/pkg/utils"
)

// writeServiceError maps a service-layer error onto the response
// envelope, preserving AppError status codes and falling back to 500.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	if appErr, ok := err.(*errors.AppError); ok {
		utils.WriteError(w, appErr)
		return
	}
	utils.WriteError(w, errors.Internal(fallback, err))
}
