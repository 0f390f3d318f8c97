package interfaces

//go:generate moq -out mocks/usecase_mock.go -pkg mocks . MergeUseCase

import (
	"context"
	"io"

	"github.com/m-mizutani/sheetmerge/pkg/domain/model"
	"github.com/m-mizutani/sheetmerge/pkg/domain/types"
)

// MergeUseCase is the per-session merge workflow exposed to controllers
type MergeUseCase interface {
	// LoadFiles replaces the session's FileSet and processes it
	LoadFiles(ctx context.Context, id types.SessionID, uploads []*model.Upload, settings *model.FilterSettings) (*model.PassResult, error)

	// UpdateSettings changes the session's filter settings and reprocesses its files
	UpdateSettings(ctx context.Context, id types.SessionID, settings model.FilterSettings) (*model.PassResult, error)

	// State returns the last committed result of the session
	State(ctx context.Context, id types.SessionID) *model.PassResult

	// Download writes the combined workbook of the session to w
	Download(ctx context.Context, id types.SessionID, w io.Writer) error

	// SessionCount returns the number of live sessions
	SessionCount() int
}
