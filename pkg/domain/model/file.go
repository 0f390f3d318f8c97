package model

// Upload is a file as received from the user
type Upload struct {
	Name    string
	Content []byte `masq:"secret"`
}

// SourceFile is one loaded file. Raw keeps the decoded first sheet so that a
// settings change never decodes the content again; Grid is the filtered result
// of the last committed pass.
type SourceFile struct {
	Name    string
	Content []byte `masq:"secret"`
	Raw     Grid
	Grid    Grid
	Err     error
}

// NewSourceFile creates a SourceFile that has not been decoded yet
func NewSourceFile(upload *Upload) *SourceFile {
	return &SourceFile{
		Name:    upload.Name,
		Content: upload.Content,
	}
}

// Decoded reports whether the raw grid is available
func (x *SourceFile) Decoded() bool {
	return x.Raw != nil
}

// FileSet is the ordered collection of loaded files, in selection order
type FileSet []*SourceFile

// NewFileSet builds a FileSet from uploads, keeping their order
func NewFileSet(uploads []*Upload) FileSet {
	files := make(FileSet, 0, len(uploads))
	for _, upload := range uploads {
		files = append(files, NewSourceFile(upload))
	}
	return files
}

// Names returns file names in order
func (x FileSet) Names() []string {
	names := make([]string, len(x))
	for i, f := range x {
		names[i] = f.Name
	}
	return names
}
