package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/monitoring"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/pubsub"
	"github.com/ayusman/mudra/internal/store"
)

// ControllerSubscriberID is the id the controller registers on the results
// topic.
const ControllerSubscriberID = "controller"

// Actuator carries out a command, for example by driving a media player.
type Actuator interface {
	Actuate(ctx context.Context, rec Recognition) error
}

// ActuatorFunc adapts a function into an Actuator.
type ActuatorFunc func(ctx context.Context, rec Recognition) error

// Actuate calls f.
func (f ActuatorFunc) Actuate(ctx context.Context, rec Recognition) error {
	return f(ctx, rec)
}

// Controller turns the stream of recognitions into actuator calls. It only
// acts when the command changes, so repeating a gesture is a no-op. An
// Unknown command performs nothing but is remembered, which lets the next
// play or pause through again.
type Controller struct {
	actuator Actuator
	timeout  time.Duration

	mu    sync.Mutex
	state Command
	fired int
}

// NewController creates a Controller. Each actuation gets timeout, or no
// deadline when timeout is zero.
func NewController(actuator Actuator, timeout time.Duration) *Controller {
	return &Controller{actuator: actuator, timeout: timeout}
}

// State returns the last command seen.
func (c *Controller) State() Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Fired returns how many times the actuator was called.
func (c *Controller) Fired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fired
}

// Subscribe registers the controller on topic.
func (c *Controller) Subscribe(topic *pubsub.Topic[Recognition]) {
	topic.Subscribe(ControllerSubscriberID, func(rec Recognition) error {
		_, err := c.Handle(context.Background(), rec)
		return err
	})
}

// Handle applies rec and reports whether the actuator was called.
func (c *Controller) Handle(ctx context.Context, rec Recognition) (bool, error) {
	c.mu.Lock()
	if rec.Command == c.state {
		c.mu.Unlock()
		return false, nil
	}
	c.state = rec.Command
	if rec.Command == Unknown || c.actuator == nil {
		c.mu.Unlock()
		return false, nil
	}
	c.fired++
	c.mu.Unlock()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if err := c.actuator.Actuate(ctx, rec); err != nil {
		return true, fmt.Errorf("actuate %s: %w", rec.Command, err)
	}
	return true, nil
}

// PluginActuator runs the plugin action bound to a command and records
// the outcome in the action log when a store is set.
type PluginActuator struct {
	plugins  *plugin.Manager
	executor *plugin.Executor
	bindings map[string]config.Binding
	store    *store.Store
}

// NewPluginActuator creates a PluginActuator. st may be nil.
func NewPluginActuator(plugins *plugin.Manager, executor *plugin.Executor, bindings map[string]config.Binding, st *store.Store) *PluginActuator {
	return &PluginActuator{
		plugins:  plugins,
		executor: executor,
		bindings: bindings,
		store:    st,
	}
}

// Actuate implements Actuator. A command without a binding is ignored.
func (a *PluginActuator) Actuate(ctx context.Context, rec Recognition) error {
	binding, ok := a.bindings[rec.Command.String()]
	if !ok {
		monitoring.Logf("No binding for command %s", rec.Command)
		return nil
	}

	err := a.run(ctx, binding, rec)

	entry := &store.Action{
		RecognitionID: rec.ID,
		PluginName:    binding.Plugin,
		ActionName:    binding.Action,
		Success:       err == nil,
	}
	if err != nil {
		entry.Message = err.Error()
		monitoring.Logf("Action %s/%s failed: %v", binding.Plugin, binding.Action, err)
	} else {
		monitoring.Logf("Action %s/%s executed for %s", binding.Plugin, binding.Action, rec.Name)
	}
	if a.store != nil {
		if serr := a.store.Actions().Create(entry); serr != nil {
			monitoring.Logf("Failed to record action: %v", serr)
		}
	}
	return err
}

func (a *PluginActuator) run(ctx context.Context, binding config.Binding, rec Recognition) error {
	p, err := a.plugins.Get(binding.Plugin)
	if err != nil {
		return err
	}

	resp, err := a.executor.Execute(ctx, p, &plugin.Request{
		Action:        binding.Action,
		Command:       rec.Command.String(),
		Gesture:       rec.Name,
		Score:         rec.Score,
		RecognitionID: rec.ID,
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("plugin %s: %s", binding.Plugin, resp.Error)
	}
	return nil
}
