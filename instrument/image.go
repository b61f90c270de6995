package instrument

import (
	"context"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"

	"github.com/probelab/pal/object"
)

// imageNatives returns the preprocessing functions scripts call to
// shape the working frame. Each one records itself as the current
// filter so a later filter action can re-apply it.
func (b *Bench) imageNatives() map[string]object.Value {
	return map[string]object.Value{
		"blur": b.filterNative("blur", 2, func(frame *image.RGBA, args []float64) *image.RGBA {
			return blur.Box(frame, (args[0]+args[1])/2)
		}),
		"gss_blur": b.filterNative("gss_blur", 4, func(frame *image.RGBA, args []float64) *image.RGBA {
			return blur.Gaussian(frame, (args[2]+args[3])/2)
		}),
		"sharpen": b.filterNative("sharpen", 3, func(frame *image.RGBA, args []float64) *image.RGBA {
			return effect.UnsharpMask(frame, args[0], args[2])
		}),
		"median": b.filterNative("median", 1, func(frame *image.RGBA, args []float64) *image.RGBA {
			return effect.Median(frame, args[0])
		}),
		"edge": b.filterNative("edge", 1, func(frame *image.RGBA, args []float64) *image.RGBA {
			return effect.EdgeDetection(frame, args[0])
		}),
		"threshold": b.filterNative("threshold", 0, func(frame *image.RGBA, args []float64) *image.RGBA {
			return clone.AsRGBA(segment.Threshold(frame, b.thresholdLevel()))
		}),
		"open": b.filterNative("open", 5, func(frame *image.RGBA, args []float64) *image.RGBA {
			radius := kernelRadius(args)
			for i := 0; i < passCount(args); i++ {
				frame = effect.Dilate(effect.Erode(frame, radius), radius)
			}
			return frame
		}),
		"close": b.filterNative("close", 5, func(frame *image.RGBA, args []float64) *image.RGBA {
			radius := kernelRadius(args)
			for i := 0; i < passCount(args); i++ {
				frame = effect.Erode(effect.Dilate(frame, radius), radius)
			}
			return frame
		}),
		"gradient": b.filterNative("gradient", 5, func(frame *image.RGBA, args []float64) *image.RGBA {
			radius := kernelRadius(args)
			return blend.Subtract(effect.Dilate(frame, radius), effect.Erode(frame, radius))
		}),
		"i_gradient": b.filterNative("i_gradient", 5, func(frame *image.RGBA, args []float64) *image.RGBA {
			return blend.Subtract(frame, effect.Erode(frame, kernelRadius(args)))
		}),
		"e_gradient": b.filterNative("e_gradient", 5, func(frame *image.RGBA, args []float64) *image.RGBA {
			return blend.Subtract(effect.Dilate(frame, kernelRadius(args)), frame)
		}),
	}
}

// filterNative wraps one frame transformation as a script-callable
// native with a fixed arity.
func (b *Bench) filterNative(name string, arity int, apply func(*image.RGBA, []float64) *image.RGBA) *object.NativeFunction {
	return object.NewNativeFunction(name, func(ctx context.Context, args []object.Value) (object.Value, error) {
		numbers, err := numberArgs(name, arity, args)
		if err != nil {
			return nil, err
		}
		if b.frame == nil {
			b.survey()
		}
		b.frame = apply(b.frame, numbers)
		b.centroids = nil
		b.lastFilter = name
		b.lastFilterFn = func(frame *image.RGBA) *image.RGBA {
			return apply(frame, numbers)
		}
		b.log.Debug().Str("filter", name).Msg("frame filtered")
		return nil, nil
	})
}

// kernelRadius reduces the morphology kernel arguments (width, height,
// passes, shape, anchor) to the radius bild works with.
func kernelRadius(args []float64) float64 {
	radius := (args[0] + args[1]) / 4
	if radius < 1 {
		radius = 1
	}
	return radius
}

func passCount(args []float64) int {
	passes := int(args[2])
	if passes < 1 {
		passes = 1
	}
	return passes
}

// thresholdLevel maps the minima and maxima knobs onto the single
// cutoff bild thresholds at.
func (b *Bench) thresholdLevel() uint8 {
	minima := b.knobNumber("minima", 0)
	maxima := b.knobNumber("maxima", 255)
	level := (minima + maxima) / 2
	if level < 0 {
		level = 0
	}
	if level > 255 {
		level = 255
	}
	return uint8(level)
}

// labelFrame thresholds the working frame and labels its connected
// bright regions, recording one centroid per region. Regions smaller
// than the size knob are discarded.
func (b *Bench) labelFrame() int {
	if b.frame == nil {
		b.survey()
	}
	mask := segment.Threshold(b.frame, b.thresholdLevel())
	bounds := mask.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	visited := make([]bool, width*height)
	minSize := int(b.knobNumber("size", 16))

	bright := func(x, y int) bool {
		return mask.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y > 0
	}

	b.centroids = nil
	var queue []image.Point
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if visited[y*width+x] || !bright(x, y) {
				continue
			}
			queue = append(queue[:0], image.Point{X: x, Y: y})
			visited[y*width+x] = true
			var sumX, sumY, count int
			for len(queue) > 0 {
				p := queue[len(queue)-1]
				queue = queue[:len(queue)-1]
				sumX += p.X
				sumY += p.Y
				count++
				for _, d := range [4]image.Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
					nx, ny := p.X+d.X, p.Y+d.Y
					if nx < 0 || ny < 0 || nx >= width || ny >= height {
						continue
					}
					if visited[ny*width+nx] || !bright(nx, ny) {
						continue
					}
					visited[ny*width+nx] = true
					queue = append(queue, image.Point{X: nx, Y: ny})
				}
			}
			if count >= minSize {
				b.centroids = append(b.centroids, image.Point{X: sumX / count, Y: sumY / count})
			}
		}
	}
	return len(b.centroids)
}

// numberArgs validates a native call: exactly want arguments, all
// numbers.
func numberArgs(name string, want int, args []object.Value) ([]float64, error) {
	if len(args) != want {
		return nil, fmt.Errorf("%s expected %d arguments, got %d", name, want, len(args))
	}
	numbers := make([]float64, len(args))
	for i, arg := range args {
		number, ok := arg.(*object.Number)
		if !ok {
			return nil, fmt.Errorf("%s is not a number.", arg.Inspect())
		}
		numbers[i] = number.Value()
	}
	return numbers, nil
}
