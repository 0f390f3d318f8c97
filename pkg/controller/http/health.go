package http

import (
	"net/http"

	"github.com/m-mizutani/sheetmerge/pkg/domain/interfaces"
	"github.com/m-mizutani/sheetmerge/pkg/domain/model"
	"github.com/m-mizutani/sheetmerge/pkg/domain/types"
)

// handleHealth reports liveness together with the number of live sessions
func handleHealth(uc interfaces.MergeUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, &model.HealthStatus{
			Status:   "healthy",
			Service:  "sheetmerge",
			Version:  types.Version,
			Sessions: uc.SessionCount(),
		})
	}
}
