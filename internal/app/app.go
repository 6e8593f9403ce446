// Package app wires pinch input, stroke segmentation, recognition and
// command actuation into one running service.
package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/geometry"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/monitoring"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/stroke"
	"github.com/ayusman/mudra/internal/timeutil"
)

// JournalSubscriberID is the id the store journal registers on the results
// topic.
const JournalSubscriberID = "journal"

// Options holds collaborators that are not described by the config file.
type Options struct {
	// Clock drives the inactivity timer. Nil selects the real clock.
	Clock timeutil.Clock
	// Store journals recognitions and actions. Optional.
	Store *store.Store
	// Actuator overrides the plugin actuator built from the config.
	Actuator Actuator
}

// Status is a point-in-time view of the running service.
type Status struct {
	Running    bool         `json:"running"`
	Uptime     string       `json:"uptime"`
	Segmenter  stroke.State `json:"segmenter"`
	Command    Command      `json:"command"`
	Templates  int          `json:"templates"`
	Processed  int64        `json:"processed"`
	Actuations int          `json:"actuations"`
	Pinches    int64        `json:"pinches"`
	Gaps       int64        `json:"gaps"`
	Plugins    []string     `json:"plugins"`
}

// App owns the gesture pipeline and its collaborators.
type App struct {
	cfg   *config.Config
	clock timeutil.Clock
	store *store.Store

	recognizer *gesture.Recognizer
	segmenter  *stroke.Segmenter
	pipeline   *Pipeline
	controller *Controller
	tracker    *detector.PinchTracker
	plugins    *plugin.Manager

	mu        sync.Mutex
	running   bool
	startedAt time.Time
}

// New builds an App from cfg. Templates listed in the templates file
// replace builtin templates of the same name.
func New(cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clock := opts.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	recognizer, err := loadRecognizer(cfg.GetTemplatesFile(), cfg.GetPointsPerStroke())
	if err != nil {
		return nil, err
	}

	segmenter := stroke.New(stroke.Config{
		Timeout:         cfg.GetInactivityTimeout(),
		MinPoints:       cfg.GetMinPoints(),
		PointsPerStroke: cfg.GetPointsPerStroke(),
	}, clock)

	plugins := plugin.NewManager(cfg.GetPluginDir())

	actuator := opts.Actuator
	if actuator == nil {
		executor := plugin.NewExecutor(cfg.GetPluginTimeout())
		actuator = NewPluginActuator(plugins, executor, cfg.GetBindings(), opts.Store)
	}

	return &App{
		cfg:        cfg,
		clock:      clock,
		store:      opts.Store,
		recognizer: recognizer,
		segmenter:  segmenter,
		pipeline:   NewPipeline(recognizer, cfg.GetMinScore(), clock),
		controller: NewController(actuator, cfg.GetPluginTimeout()),
		tracker:    detector.NewPinchTracker(cfg.GetPinchThreshold(), segmenter),
		plugins:    plugins,
	}, nil
}

// loadRecognizer seeds a recognizer with the builtins and the templates
// file. Every seed is interpolated to perStroke points per stroke, the shape
// the segmenter emits, so attempts and templates line up stroke by stroke.
func loadRecognizer(path string, perStroke int) (*gesture.Recognizer, error) {
	seeds := gesture.BuiltinTemplates()

	var loaded []gesture.Template
	if path != "" {
		var err error
		if loaded, err = gesture.LoadTemplates(path); err != nil {
			return nil, err
		}
	}

	byName := make(map[string]int, len(seeds))
	for i, t := range seeds {
		byName[t.Name] = i
	}
	for _, t := range loaded {
		if i, ok := byName[t.Name]; ok {
			seeds[i] = t
			continue
		}
		byName[t.Name] = len(seeds)
		seeds = append(seeds, t)
	}

	for i := range seeds {
		seeds[i].Points = geometry.InterpolateStrokeWise(seeds[i].Points, perStroke)
	}

	r, err := gesture.New(seeds...)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	if path != "" {
		monitoring.Logf("Loaded %d templates from %s", len(loaded), path)
	}
	return r, nil
}

// Start discovers plugins and connects the pipeline. Calling Start on a
// running App does nothing.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return nil
	}

	if err := a.plugins.Discover(); err != nil {
		return fmt.Errorf("discover plugins: %w", err)
	}
	if n := len(a.plugins.List()); n > 0 {
		monitoring.Logf("Discovered %d plugins in %s", n, a.plugins.PluginDir())
	}

	a.pipeline.Attach(a.segmenter.Attempts())
	// The journal runs first so actions can reference the recognition row.
	if a.store != nil {
		a.pipeline.Results().Subscribe(JournalSubscriberID, a.journal)
	}
	a.controller.Subscribe(a.pipeline.Results())

	a.running = true
	a.startedAt = a.clock.Now()
	monitoring.Logf("Gesture pipeline started")
	return nil
}

// Stop flushes the pending attempt and disconnects the pipeline.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return
	}

	a.segmenter.Flush()
	a.pipeline.Detach()
	results := a.pipeline.Results()
	results.Unsubscribe(JournalSubscriberID)
	results.Unsubscribe(ControllerSubscriberID)

	a.running = false
	monitoring.Logf("Gesture pipeline stopped")
}

func (a *App) journal(rec Recognition) error {
	return a.store.Recognitions().Create(&store.Recognition{
		ID:        rec.ID,
		Name:      rec.Name,
		Score:     rec.Score,
		Command:   rec.Command.String(),
		Strokes:   rec.Strokes,
		Points:    rec.Points,
		CreatedAt: rec.At,
	})
}

// Running reports whether the pipeline is connected.
func (a *App) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Status returns the current service state.
func (a *App) Status() Status {
	a.mu.Lock()
	running, startedAt := a.running, a.startedAt
	a.mu.Unlock()

	pinches, gaps := a.tracker.Stats()
	var uptime time.Duration
	if running {
		uptime = a.clock.Since(startedAt).Round(time.Second)
	}

	names := []string{}
	for _, p := range a.plugins.List() {
		names = append(names, p.Manifest.Name)
	}

	return Status{
		Running:    running,
		Uptime:     uptime.String(),
		Segmenter:  a.segmenter.Snapshot(),
		Command:    a.controller.State(),
		Templates:  a.recognizer.Len(),
		Processed:  a.pipeline.Processed(),
		Actuations: a.controller.Fired(),
		Pinches:    pinches,
		Gaps:       gaps,
		Plugins:    names,
	}
}

// Config returns the configuration the App was built from.
func (a *App) Config() *config.Config { return a.cfg }

// Recognizer returns the template recognizer.
func (a *App) Recognizer() *gesture.Recognizer { return a.recognizer }

// Segmenter returns the stroke segmenter fed by ticks.
func (a *App) Segmenter() *stroke.Segmenter { return a.segmenter }

// Pipeline returns the recognition pipeline.
func (a *App) Pipeline() *Pipeline { return a.pipeline }

// Controller returns the command controller.
func (a *App) Controller() *Controller { return a.controller }

// Tracker returns the pinch tracker that feeds the segmenter from hand
// landmarks.
func (a *App) Tracker() *detector.PinchTracker { return a.tracker }

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager { return a.plugins }

// Store returns the journal store, or nil.
func (a *App) Store() *store.Store { return a.store }
