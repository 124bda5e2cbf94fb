package tilefilter

import "errors"

// Per-tile failure classes. Everything here is caught at the tile boundary
// and recorded on the Decision; only configuration problems abort a batch.
var (
	ErrRead           = errors.New("tile unreadable")
	ErrEmptyTile      = errors.New("tile has no points")
	ErrOutputConflict = errors.New("output already exists")
	ErrWrite          = errors.New("output write failed")
)

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrEmptyTile):
		return "EmptyTileError"
	case errors.Is(err, ErrOutputConflict):
		return "OutputConflictError"
	case errors.Is(err, ErrWrite):
		return "WriteError"
	case errors.Is(err, ErrRead):
		return "ReadError"
	default:
		return "Error"
	}
}
