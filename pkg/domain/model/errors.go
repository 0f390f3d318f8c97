package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrDecode is returned when a file cannot be parsed as a supported spreadsheet
	ErrDecode = goerr.New("cannot decode spreadsheet")

	// ErrNoData is returned when a download is requested with no loaded files
	ErrNoData = goerr.New("no files to combine")
)

const (
	NoticeNoData = "Please upload and process files before downloading."
)

// DecodeNotice is the user-facing message for a file that failed to decode
func DecodeNotice(name string) string {
	return "An error occurred while processing " + name + "."
}
