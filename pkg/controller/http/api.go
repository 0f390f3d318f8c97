package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/sheetmerge/pkg/domain/interfaces"
	"github.com/m-mizutani/sheetmerge/pkg/domain/model"
	"github.com/m-mizutani/sheetmerge/pkg/utils/errutil"
)

// handleState returns the last committed result of the session as JSON
func handleState(uc interfaces.MergeUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, uc.State(r.Context(), sessionFrom(r.Context())))
	}
}

// handleUpdateSettings applies settings given as JSON and returns the new result
func handleUpdateSettings(uc interfaces.MergeUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		settings := model.DefaultFilterSettings()
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			writeError(w, r, goerr.Wrap(err, "invalid settings payload"), http.StatusBadRequest)
			return
		}

		result, err := uc.UpdateSettings(ctx, sessionFrom(ctx), settings)
		if err != nil {
			errutil.Handle(ctx, "failed to apply settings", err)
			writeError(w, r, err, http.StatusInternalServerError)
			return
		}

		writeJSON(w, r, http.StatusOK, result)
	}
}
