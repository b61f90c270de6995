// Package instrument provides a simulated probe bench for running
// scripts without hardware. It supplies the pre-seeded globals a real
// embedding would (image pipeline, scan patterns, settings) and
// implements the action handler the machine dispatches to.
package instrument

import (
	"context"
	"fmt"
	"image"
	"math/rand"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"

	"github.com/probelab/pal/object"
	"github.com/probelab/pal/vm"
)

// DefaultFrameSize is the edge length of the square working frame.
const DefaultFrameSize = 256

// Options configures a simulated bench.
type Options struct {
	// Logger receives one event per action and per settings change.
	// Nil disables logging.
	Logger *zerolog.Logger

	// Seed fixes the random source. The bench is deterministic for a
	// given seed and script.
	Seed int64

	// FrameSize overrides the working frame edge length.
	FrameSize int
}

// Export records one completed cluster-manager export.
type Export struct {
	ID    uuid.UUID `json:"id"`
	Sites int       `json:"sites"`
}

// Report summarizes everything a script did to the bench.
type Report struct {
	Session  string         `json:"session"`
	Sample   string         `json:"sample"`
	Frames   int            `json:"frames"`
	Clusters int            `json:"clusters"`
	Sites    int            `json:"sites"`
	Spectra  int            `json:"spectra"`
	Actions  map[string]int `json:"actions"`
	Exports  []Export       `json:"exports"`
}

// Bench simulates the instrument host. It implements vm.ActionHandler
// and supplies the globals scripts expect.
type Bench struct {
	log       zerolog.Logger
	rng       *rand.Rand
	frameSize int

	sessionID uuid.UUID
	sampleID  uuid.UUID

	frame     *image.RGBA
	frames    int
	centroids []image.Point
	sites     []image.Point
	spectra   int
	exports   []Export
	counts    map[vm.Action]int

	lastFilter     string
	lastFilterFn   func(*image.RGBA) *image.RGBA
	lastCorrection string
	pattern        string

	settings *object.NativeObject
	knobs    map[string]object.Value
	globals  map[string]object.Value
	reserved map[string]bool
}

// New creates a bench. The zero Options value gives a silent bench
// seeded at zero with the default frame size.
func New(opts Options) *Bench {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	size := opts.FrameSize
	if size <= 0 {
		size = DefaultFrameSize
	}
	b := &Bench{
		log:       logger,
		rng:       rand.New(rand.NewSource(opts.Seed)),
		frameSize: size,
		counts:    map[vm.Action]int{},
		knobs:     map[string]object.Value{},
		reserved:  map[string]bool{},
	}
	b.sessionID = b.newID()
	b.sampleID = b.newID()
	b.buildGlobals()
	return b
}

// newID derives a version 4 UUID from the bench random source, so IDs
// repeat under a fixed seed.
func (b *Bench) newID() uuid.UUID {
	var raw [16]byte
	b.rng.Read(raw[:])
	raw[6] = (raw[6] & 0x0f) | 0x40
	raw[8] = (raw[8] & 0x3f) | 0x80
	id, err := uuid.FromBytes(raw[:])
	if err != nil {
		panic(err)
	}
	return id
}

// Globals returns the pre-seeded global surface: image natives, scan
// patterns, enums, settings, and the session identity paths.
func (b *Bench) Globals() map[string]object.Value {
	return b.globals
}

// VarListener mirrors recognized settings assignments onto the bench
// and warns when a script shadows a native name.
func (b *Bench) VarListener() vm.VarListener {
	return func(name string, value object.Value) {
		if b.reserved[name] {
			b.log.Warn().Str("name", name).Msg("native global shadowed by script")
			return
		}
		if _, ok := b.knobs[name]; ok {
			b.knobs[name] = value
			b.settings.SetField(name, value)
			b.log.Info().Str("setting", name).Str("value", value.Inspect()).Msg("setting changed")
		}
	}
}

// HandleAction implements vm.ActionHandler.
func (b *Bench) HandleAction(ctx context.Context, action vm.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.counts[action]++
	switch action {
	case vm.Survey:
		b.survey()
	case vm.Segment:
		b.segment()
	case vm.Filter:
		b.applyFilter()
	case vm.Interact:
		b.interact()
	case vm.Manage:
		b.manage()
	case vm.DeepScan:
		b.deepScan()
	default:
		return fmt.Errorf("unknown action %d", int(action))
	}
	return nil
}

// survey captures a fresh working frame filled from the bench random
// source.
func (b *Bench) survey() {
	frame := image.NewRGBA(image.Rect(0, 0, b.frameSize, b.frameSize))
	b.rng.Read(frame.Pix)
	for i := 3; i < len(frame.Pix); i += 4 {
		frame.Pix[i] = 0xff
	}
	b.frame = frame
	b.frames++
	b.centroids = nil
	b.log.Info().Str("action", "survey").Int("size", b.frameSize).Int("frames", b.frames).Msg("frame captured")
}

func (b *Bench) segment() {
	clusters := b.labelFrame()
	b.log.Info().Str("action", "segment").Int("clusters", clusters).Msg("frame segmented")
}

func (b *Bench) applyFilter() {
	if b.frame == nil {
		b.survey()
	}
	if b.lastFilterFn == nil {
		b.log.Info().Str("action", "filter").Msg("no filter configured")
		return
	}
	b.frame = b.lastFilterFn(b.frame)
	b.log.Info().Str("action", "filter").Str("filter", b.lastFilter).Msg("filter applied")
}

// interact marks analysis sites. Cluster centroids from the last
// segmentation are used when present; otherwise sites come from the
// random source.
func (b *Bench) interact() {
	if len(b.centroids) == 0 {
		b.labelFrame()
	}
	if len(b.centroids) > 0 {
		b.sites = append(b.sites, b.centroids...)
	} else {
		count := int(b.knobNumber("num_groups", 5))
		for i := 0; i < count; i++ {
			b.sites = append(b.sites, image.Point{
				X: b.rng.Intn(b.frameSize),
				Y: b.rng.Intn(b.frameSize),
			})
		}
	}
	b.log.Info().Str("action", "interact").Int("sites", len(b.sites)).Msg("sites marked")
}

// manage tightens the marked grid by dropping sites that overlap and
// records an export.
func (b *Bench) manage() {
	minGap := b.knobNumber("padding", 4)
	if minGap < 1 {
		minGap = 1
	}
	var kept []image.Point
	for _, site := range b.sites {
		tooClose := false
		for _, other := range kept {
			dx := site.X - other.X
			dy := site.Y - other.Y
			if dx*dx+dy*dy < int(minGap*minGap) {
				tooClose = true
				break
			}
		}
		if !tooClose {
			kept = append(kept, site)
		}
	}
	b.sites = kept
	export := Export{ID: b.newID(), Sites: len(kept)}
	b.exports = append(b.exports, export)
	b.log.Info().Str("action", "manage").Int("sites", len(kept)).Str("export", export.ID.String()).Msg("grid tightened")
}

func (b *Bench) deepScan() {
	passes := len(b.sites)
	if passes == 0 {
		passes = 1
	}
	b.spectra += passes
	b.log.Info().Str("action", "deepscan").Int("passes", passes).Int("spectra", b.spectra).Msg("spectroscopy pass")
}

func (b *Bench) knobNumber(name string, fallback float64) float64 {
	if value, ok := b.knobs[name]; ok {
		if number, ok := value.(*object.Number); ok {
			return number.Value()
		}
	}
	return fallback
}

// Report returns the accumulated bench state.
func (b *Bench) Report() Report {
	actions := make(map[string]int, len(b.counts))
	for action, count := range b.counts {
		actions[action.String()] = count
	}
	exports := make([]Export, len(b.exports))
	copy(exports, b.exports)
	return Report{
		Session:  b.sessionID.String(),
		Sample:   b.sampleID.String(),
		Frames:   b.frames,
		Clusters: len(b.centroids),
		Sites:    len(b.sites),
		Spectra:  b.spectra,
		Actions:  actions,
		Exports:  exports,
	}
}
