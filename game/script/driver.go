// Package script runs a JavaScript player driver against an encounter.
// The program defines tick(state) and returns a command object each tick.
package script

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// ErrTimeout is returned when a tick call exceeds the execution time limit.
var ErrTimeout = errors.New("script: execution timed out")

// ErrPanic is returned when the runtime panics while executing a script.
var ErrPanic = errors.New("script: uncaught exception")

// ErrNoTick is returned by NewDriver when the program defines no tick function.
var ErrNoTick = errors.New("script: program does not define tick(state)")

// Driver executes a compiled driver program. It is safe for concurrent
// use, but calls are serialised.
type Driver struct {
	prog    *goja.Program
	timeout time.Duration
	logger  *zap.Logger

	mu   sync.Mutex
	vm   *goja.Runtime
	tick goja.Callable
}

// NewDriver compiles source and evaluates it once so top-level state is
// initialised.
func NewDriver(source string, timeout time.Duration, logger *zap.Logger) (*Driver, error) {
	if timeout <= 0 {
		timeout = 50 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	prog, err := goja.Compile("driver.js", source, true)
	if err != nil {
		return nil, fmt.Errorf("script: compile: %w", err)
	}
	d := &Driver{prog: prog, timeout: timeout, logger: logger}
	if err := d.reset(); err != nil {
		return nil, err
	}
	return d, nil
}

// reset builds a fresh VM and re-runs the program. A VM interrupted by a
// timeout is discarded.
func (d *Driver) reset() error {
	vm := newSafeVM(d.logger)
	if _, err := d.run(vm, func() (goja.Value, error) { return vm.RunProgram(d.prog) }); err != nil {
		return err
	}
	fn, ok := goja.AssertFunction(vm.Get("tick"))
	if !ok {
		return ErrNoTick
	}
	d.vm, d.tick = vm, fn
	return nil
}

// Tick calls tick(view) and decodes the returned command. A null or
// undefined result is an empty command.
func (d *Driver) Tick(ctx context.Context, view View) (Command, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Command{}, err
	}
	vm := d.vm
	arg := vm.ToValue(view)
	result, err := d.run(vm, func() (goja.Value, error) { return d.tick(goja.Undefined(), arg) })
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			d.logger.Warn("driver tick timed out, reloading program",
				zap.Int64("tick", view.Tick), zap.Duration("timeout", d.timeout))
			if rerr := d.reset(); rerr != nil {
				d.logger.Error("driver reload failed", zap.Error(rerr))
			}
		}
		return Command{}, err
	}
	return decodeCommand(result)
}

func (d *Driver) run(vm *goja.Runtime, call func() (goja.Value, error)) (result goja.Value, err error) {
	timer := time.AfterFunc(d.timeout, func() {
		vm.Interrupt(ErrTimeout)
	})
	defer timer.Stop()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("driver panic", zap.Any("panic", r))
			result, err = nil, ErrPanic
		}
	}()

	result, err = call()
	if err == nil {
		vm.ClearInterrupt()
		return result, nil
	}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if v, ok := interrupted.Value().(error); ok && errors.Is(v, ErrTimeout) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("script: interrupted: %v", interrupted.Value())
	}
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return nil, fmt.Errorf("script: %s", ex.Error())
	}
	return nil, err
}

func decodeCommand(v goja.Value) (Command, error) {
	var cmd Command
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return cmd, nil
	}
	raw, err := json.Marshal(v.Export())
	if err != nil {
		return cmd, fmt.Errorf("script: encode command: %w", err)
	}
	if err := json.Unmarshal(raw, &cmd); err != nil {
		return cmd, fmt.Errorf("script: decode command: %w", err)
	}
	return cmd, nil
}

// newSafeVM creates a goja Runtime with dangerous globals removed and a
// deterministic Math.random.
func newSafeVM(logger *zap.Logger) *goja.Runtime {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	vm.SetRandSource(rand.New(rand.NewSource(1)).Float64)
	for _, name := range []string{"require", "process", "fetch", "XMLHttpRequest", "eval", "Function"} {
		vm.Set(name, goja.Undefined())
	}
	vm.Set("log", func(msg string) { logger.Debug("driver", zap.String("msg", msg)) })
	return vm
}
