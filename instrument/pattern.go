package instrument

import (
	"context"
	"fmt"

	"github.com/probelab/pal/object"
)

// scanPattern is the host value behind a pattern handle.
type scanPattern struct {
	kind   string
	params []float64
}

// patternNatives returns the scan-pattern constructors. Each returns a
// handle the bench also records as the active pattern.
func (b *Bench) patternNatives() map[string]object.Value {
	return map[string]object.Value{
		"Raster":      b.patternNative("Raster", []string{"skip", "start", "orientation", "coverage"}),
		"Snake":       b.patternNative("Snake", []string{"skip", "start", "orientation", "coverage"}),
		"Spiral":      b.patternNative("Spiral", []string{"skip", "start", "orientation", "coverage"}),
		"Grid":        b.patternNative("Grid", []string{"gap", "shift", "order", "coverage"}),
		"Random":      b.patternNative("Random", []string{"r_type", "n", "coverage", "scale", "loc", "lam", "low", "high"}),
		"stage_snake": b.stageSnakeNative(),
		"correct_for": b.correctForNative(),
	}
}

func (b *Bench) patternNative(kind string, params []string) *object.NativeFunction {
	return object.NewNativeFunction(kind, func(ctx context.Context, args []object.Value) (object.Value, error) {
		numbers, err := numberArgs(kind, len(params), args)
		if err != nil {
			return nil, err
		}
		handle := object.NewNativeObject(kind+" pattern", &scanPattern{kind: kind, params: numbers})
		for i, name := range params {
			handle.SetField(name, object.NewNumber(numbers[i]))
		}
		b.pattern = kind
		b.log.Info().Str("pattern", kind).Msg("scan pattern configured")
		return handle, nil
	})
}

// stageSnakeNative builds the stage-move iterator: rows by cols stage
// positions visited boustrophedon, one [row, col] pair per advance.
func (b *Bench) stageSnakeNative() *object.NativeFunction {
	return object.NewNativeFunction("stage_snake", func(ctx context.Context, args []object.Value) (object.Value, error) {
		numbers, err := numberArgs("stage_snake", 2, args)
		if err != nil {
			return nil, err
		}
		rows, cols := int(numbers[0]), int(numbers[1])
		if rows < 0 || cols < 0 {
			return nil, fmt.Errorf("stage_snake dimensions must not be negative")
		}
		row, col, direction := 0, 0, 1
		return object.NewNativeIterator("stage_snake", func() (object.Value, bool) {
			if cols == 0 || row >= rows {
				return nil, false
			}
			move := object.NewArray(object.NewNumber(float64(row)), object.NewNumber(float64(col)))
			col += direction
			if col < 0 || col >= cols {
				direction = -direction
				col += direction
				row++
			}
			b.log.Debug().Int("row", row).Int("col", col).Msg("stage moved")
			return move, true
		}), nil
	})
}

func (b *Bench) correctForNative() *object.NativeFunction {
	return object.NewNativeFunction("correct_for", func(ctx context.Context, args []object.Value) (object.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("correct_for expected 1 arguments, got %d", len(args))
		}
		correction, ok := args[0].(*object.Correction)
		if !ok {
			return nil, fmt.Errorf("correct_for expected a correction keyword, got %s", args[0].Inspect())
		}
		b.lastCorrection = correction.Value()
		b.log.Info().Str("correction", correction.Value()).Msg("correction pass")
		return nil, nil
	})
}
