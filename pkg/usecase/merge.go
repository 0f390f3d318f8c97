package usecase

import (
	"context"
	"io"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/sheetmerge/pkg/domain/model"
	"github.com/m-mizutani/sheetmerge/pkg/domain/types"
	"github.com/m-mizutani/sheetmerge/pkg/utils/async"
)

type mergeUseCase struct {
	sessions *Sessions
}

// NewMerge creates the MergeUseCase backed by sessions
func NewMerge(sessions *Sessions) *mergeUseCase {
	return &mergeUseCase{
		sessions: sessions,
	}
}

// LoadFiles replaces the session's FileSet and processes it
func (uc *mergeUseCase) LoadFiles(ctx context.Context, id types.SessionID, uploads []*model.Upload, settings *model.FilterSettings) (*model.PassResult, error) {
	uc.sweep(ctx)
	return uc.sessions.Workspace(id).Load(ctx, uploads, settings)
}

// UpdateSettings changes the session's settings and reprocesses its files
func (uc *mergeUseCase) UpdateSettings(ctx context.Context, id types.SessionID, settings model.FilterSettings) (*model.PassResult, error) {
	uc.sweep(ctx)
	return uc.sessions.Workspace(id).SetSettings(ctx, settings)
}

// State returns the last committed result of the session
func (uc *mergeUseCase) State(ctx context.Context, id types.SessionID) *model.PassResult {
	uc.sweep(ctx)
	return uc.sessions.Workspace(id).Snapshot()
}

// Download writes the combined workbook of the session to w
func (uc *mergeUseCase) Download(ctx context.Context, id types.SessionID, w io.Writer) error {
	uc.sweep(ctx)
	return uc.sessions.Workspace(id).Combine(ctx, w)
}

// SessionCount returns the number of live sessions
func (uc *mergeUseCase) SessionCount() int {
	return uc.sessions.Len()
}

// sweep evicts idle sessions in the background, at most once per sweep interval
func (uc *mergeUseCase) sweep(ctx context.Context) {
	if !uc.sessions.SweepDue() {
		return
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		if removed := uc.sessions.Sweep(); removed > 0 {
			ctxlog.From(ctx).Info("Evicted idle sessions",
				"removed", removed,
				"remaining", uc.sessions.Len(),
			)
		}
		return nil
	})
}
