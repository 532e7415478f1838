package render

import "fmt"

// Failure kinds, surfaced via Code for handler summaries.
const (
	KindTemplateError   = "template_error"
	KindArtifactMissing = "artifact_missing"
	KindTimeout         = "timeout"
	KindRasterError     = "raster_error"
)

// Failure describes why a receipt could not be produced.
type Failure struct {
	Kind string
	Err  error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("render failed: %s", f.Kind)
	}
	return fmt.Sprintf("render failed (%s): %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Code exposes the failure kind to logging summaries.
func (f *Failure) Code() string { return f.Kind }

func failure(kind string, err error) *Failure {
	return &Failure{Kind: kind, Err: err}
}
