package usecase

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/sheetmerge/pkg/domain/interfaces"
	"github.com/m-mizutani/sheetmerge/pkg/domain/model"
	"github.com/m-mizutani/sheetmerge/pkg/utils/errutil"
)

// Workspace holds one FileSet and its FilterSettings. Every change runs a
// processing pass over all files; a pass commits only if no newer pass has
// started meanwhile, so the most recently started pass always wins.
type Workspace struct {
	codec interfaces.SpreadsheetCodec
	now   func() time.Time

	mu         sync.Mutex
	files      model.FileSet
	settings   model.FilterSettings
	generation uint64
	result     *model.PassResult
	lastAccess time.Time
}

// NewWorkspace creates an empty workspace
func NewWorkspace(codec interfaces.SpreadsheetCodec, settings model.FilterSettings) *Workspace {
	return newWorkspace(codec, settings, time.Now)
}

func newWorkspace(codec interfaces.SpreadsheetCodec, settings model.FilterSettings, now func() time.Time) *Workspace {
	settings = settings.Normalize()
	return &Workspace{
		codec:      codec,
		now:        now,
		settings:   settings,
		lastAccess: now(),
		result: &model.PassResult{
			Settings: settings,
			Previews: []*model.Preview{},
		},
	}
}

// Load replaces the FileSet with uploads and processes it. If settings is not
// nil it replaces the current settings in the same pass.
func (x *Workspace) Load(ctx context.Context, uploads []*model.Upload, settings *model.FilterSettings) (*model.PassResult, error) {
	files := model.NewFileSet(uploads)
	ctxlog.From(ctx).Info("Loading files",
		"count", len(files),
		"names", files.Names(),
	)

	return x.run(ctx, func() {
		x.files = files
		if settings != nil {
			x.settings = settings.Normalize()
		}
	})
}

// SetSettings replaces the filter settings and reprocesses the loaded files
func (x *Workspace) SetSettings(ctx context.Context, settings model.FilterSettings) (*model.PassResult, error) {
	return x.run(ctx, func() {
		x.settings = settings.Normalize()
	})
}

// Snapshot returns the last committed result
func (x *Workspace) Snapshot() *model.PassResult {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.lastAccess = x.now()
	return x.result
}

// Settings returns the current filter settings
func (x *Workspace) Settings() model.FilterSettings {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.settings
}

// LastAccess returns when the workspace was last used
func (x *Workspace) LastAccess() time.Time {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.lastAccess
}

// Combine encodes the concatenation of all current filtered grids to w as a
// workbook with a single "Combined" sheet. It fails with model.ErrNoData when
// no files are loaded.
func (x *Workspace) Combine(ctx context.Context, w io.Writer) error {
	x.mu.Lock()
	files := make(model.FileSet, len(x.files))
	for i, f := range x.files {
		files[i] = &model.SourceFile{Name: f.Name, Grid: f.Grid}
	}
	x.lastAccess = x.now()
	x.mu.Unlock()

	combined, err := Combine(files)
	if err != nil {
		return err
	}

	if err := x.codec.Encode(ctx, CombinedSheetName, combined, w); err != nil {
		return goerr.Wrap(err, "failed to encode combined workbook",
			goerr.V("rows", len(combined)),
			goerr.V("files", len(files)),
		)
	}

	ctxlog.From(ctx).Info("Combined files",
		"files", len(files),
		"rows", len(combined),
	)
	return nil
}

// fileState is the per-file view a pass works on, detached from shared state
type fileState struct {
	file    *model.SourceFile
	name    string
	content []byte
	raw     model.Grid
	failed  bool
}

func (x *Workspace) run(ctx context.Context, mutate func()) (*model.PassResult, error) {
	logger := ctxlog.From(ctx)

	x.mu.Lock()
	mutate()
	x.generation++
	gen := x.generation
	settings := x.settings
	states := make([]*fileState, len(x.files))
	for i, f := range x.files {
		states[i] = &fileState{
			file:    f,
			name:    f.Name,
			content: f.Content,
			raw:     f.Raw,
			failed:  f.Err != nil,
		}
	}
	x.lastAccess = x.now()
	x.mu.Unlock()

	result := &model.PassResult{
		Generation: gen,
		Settings:   settings,
		Previews:   make([]*model.Preview, 0, len(states)),
	}
	grids := make([]model.Grid, len(states))
	errs := make([]error, len(states))

	// Passes are not cancellable: mutate has already installed files and settings.
	for i, st := range states {
		if st.raw == nil && !st.failed {
			raw, err := x.codec.Decode(ctx, st.name, st.content)
			if err != nil {
				errutil.Handle(ctx, "failed to process file", goerr.Wrap(err, "decode failed", goerr.V("file", st.name)))
				errs[i] = err
				st.failed = true
			} else {
				st.raw = raw
			}
		}

		if st.failed {
			result.Previews = append(result.Previews, renderFailure(st.name))
			result.Notices = append(result.Notices, model.DecodeNotice(st.name))
			continue
		}

		grids[i] = Filter(st.raw, settings)
		result.Previews = append(result.Previews, Render(st.name, grids[i]))
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	// Decoded grids are cached even for a stale pass so no file is decoded twice.
	for i, st := range states {
		f := st.file
		if f.Raw == nil && f.Err == nil {
			switch {
			case errs[i] != nil:
				f.Err = errs[i]
				f.Content = nil
			case st.raw != nil:
				f.Raw = st.raw
				f.Content = nil
			}
		}
	}

	if gen != x.generation {
		logger.Debug("Discarded stale processing pass",
			"generation", gen,
			"latest", x.generation,
		)
		return x.result, nil
	}

	for i, st := range states {
		st.file.Grid = grids[i]
	}
	x.result = result

	logger.Info("Processed files",
		"generation", gen,
		"files", len(states),
		"rows", result.TotalRows(),
		"notices", len(result.Notices),
		"settings", settings,
	)
	return result, nil
}
