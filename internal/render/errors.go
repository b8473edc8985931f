package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/inamate/vizscene/internal/scene"
)

// UnknownShapeError reports a layer whose shape type has no renderer. The
// layer is skipped; the rest of the frame is still painted.
type UnknownShapeError struct {
	LayerID string
	Type    scene.ShapeType
}

func (e *UnknownShapeError) Error() string {
	return fmt.Sprintf("layer %q: unknown shape type %q", e.LayerID, e.Type)
}

// UnsupportedPathCommandError reports a path command that was skipped. The
// remaining commands of the path are still drawn.
type UnsupportedPathCommandError struct {
	LayerID string
	Command string
	Offset  int
	Reason  string
}

func (e *UnsupportedPathCommandError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "unsupported command"
	}
	if e.LayerID == "" {
		return fmt.Sprintf("path command %q at %d: %s", e.Command, e.Offset, reason)
	}
	return fmt.Sprintf("layer %q: path command %q at %d: %s", e.LayerID, e.Command, e.Offset, reason)
}

// RenderTargetError reports that the drawing surface failed. It ends the
// current paint pass; the scene and playback state are unaffected and the
// next pass may succeed.
type RenderTargetError struct {
	LayerID string
	Err     error
}

func (e *RenderTargetError) Error() string {
	if e.LayerID == "" {
		return fmt.Sprintf("render target: %v", e.Err)
	}
	return fmt.Sprintf("render target (at layer %q): %v", e.LayerID, e.Err)
}

func (e *RenderTargetError) Unwrap() error {
	return e.Err
}

// FrameErrors collects every problem from one paint pass.
type FrameErrors struct {
	Errs []error
}

func (e *FrameErrors) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d render issue(s): %s", len(e.Errs), strings.Join(msgs, "; "))
}

func (e *FrameErrors) Unwrap() []error {
	return e.Errs
}

// Fatal reports whether the pass was aborted by the render target.
func (e *FrameErrors) Fatal() bool {
	var target *RenderTargetError
	return errors.As(e, &target)
}
