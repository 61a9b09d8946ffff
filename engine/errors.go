package engine

import "github.com/pkg/errors"

var (
	ErrNoContext   = errors.New("engine: no graphics context")
	ErrNoSurface   = errors.New("engine: no surface")
	ErrBadPixels   = errors.New("engine: pixel buffer does not match dimensions")
	ErrUnitOverlap = errors.New("engine: render target units overlap material units")
	ErrUnitBudget  = errors.New("engine: render target units exceed texture unit budget")
	ErrNotFound    = errors.New("engine: resource not found")

	ErrTargetIncomplete = errors.New("engine: write target missing or incomplete")
)
