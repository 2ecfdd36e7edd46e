// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// FileEntry holds the metadata shown for one selected PDF.
type FileEntry struct {
	// Path is the absolute filesystem path of the PDF.
	Path string `json:"path" yaml:"path"`

	// Name is the display name (base name of Path).
	Name string `json:"name" yaml:"name"`

	// Size is the file size in bytes at selection time.
	Size int64 `json:"size" yaml:"size"`

	// PageCount is the number of pages reported by the PDF library.
	PageCount int `json:"page_count" yaml:"page_count"`

	// ModTime is the file modification time at selection time.
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
}

// OperationStatus is the outcome of a user-facing operation.
type OperationStatus string

const (
	StatusSuccess   OperationStatus = "success"
	StatusError     OperationStatus = "error"
	StatusCancelled OperationStatus = "cancelled"
)

// Response carries the outcome of a selection or merge operation back to
// the UI shell, which renders Message as a status banner.
type Response struct {
	Status  OperationStatus `json:"status" yaml:"status"`
	Message string          `json:"message" yaml:"message"`
}

// OK reports whether the operation succeeded.
func (r Response) OK() bool {
	return r.Status == StatusSuccess
}

// MergeResult records a completed (or failed) merge.
type MergeResult struct {
	// ID identifies the merge run.
	ID string `json:"id" yaml:"id" db:"id"`

	// OutputPath is where the merged document was written.
	OutputPath string `json:"output_path" yaml:"output_path" db:"output_path"`

	// Inputs lists the merged files in page order.
	Inputs []string `json:"inputs" yaml:"inputs" db:"-"`

	// PageCount is the page count of the output document.
	PageCount int `json:"page_count" yaml:"page_count" db:"page_count"`

	// Size is the output size in bytes.
	Size int64 `json:"size" yaml:"size" db:"size"`

	// Success is false when the merge did not produce an output file.
	Success bool `json:"success" yaml:"success" db:"success"`

	// Message is the human-readable outcome.
	Message string `json:"message" yaml:"message" db:"message"`

	StartedAt  time.Time `json:"started_at" yaml:"started_at" db:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at" db:"finished_at"`
}

// Duration returns how long the merge took.
func (r MergeResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
