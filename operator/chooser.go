package operator

import (
	"context"
	"fmt"

	"github.com/kbukum/liftkit/crane"
	"github.com/kbukum/liftkit/errors"
)

// Chooser picks one variant and returns its 0-based index.
type Chooser interface {
	ChooseHook(ctx context.Context, variants []crane.Hook) (int, error)
	ChooseBearing(ctx context.Context, variants []crane.Bearing) (int, error)
}

// CannedChooser returns fixed indexes. The zero value picks the first
// variant every time.
type CannedChooser struct {
	Hook    int
	Bearing int
}

var _ Chooser = CannedChooser{}

func (c CannedChooser) ChooseHook(_ context.Context, variants []crane.Hook) (int, error) {
	return checkIndex("hook", c.Hook, len(variants))
}

func (c CannedChooser) ChooseBearing(_ context.Context, variants []crane.Bearing) (int, error) {
	return checkIndex("bearing", c.Bearing, len(variants))
}

func checkIndex(what string, i, n int) (int, error) {
	if i < 0 || i >= n {
		return 0, errors.InvalidInput(what, fmt.Sprintf("index %d out of range [0, %d)", i, n))
	}
	return i, nil
}
