package volumetric

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"time"
)

type systemFn any

type App struct {
	modules   []Module
	stages    []Stage
	systems   map[string][]systemFn
	resources map[reflect.Type]any
	ctx       context.Context
}

type Module interface {
	Install(app *App, cmd *Commands)
}

func NewApp() *App {
	app := &App{
		systems:   make(map[string][]systemFn),
		resources: make(map[reflect.Type]any),
		ctx:       context.Background(),
	}
	for _, stage := range defaultStages {
		app.initStage(stage)
	}
	return app
}

func (app *App) Commands() *Commands {
	return &Commands{app: app}
}

// UseModules installs modules in order.
func (app *App) UseModules(modules ...Module) *App {
	cmd := app.Commands()
	for _, module := range modules {
		module.Install(app, cmd)
		app.modules = append(app.modules, module)
	}
	return app
}

// Context is the context of the running loop, or Background outside Run.
func (app *App) Context() context.Context {
	return app.ctx
}

// Tick advances the Time resource by dt and runs every stage once.
func (app *App) Tick(dt time.Duration) {
	if t := Resource[Time](app); t != nil {
		t.advance(dt)
	}
	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name] {
			app.callSystem(system)
		}
	}
}

// Run ticks the app at a fixed rate of hz until ctx is done. Real time is
// accumulated and consumed in fixed steps so slow frames catch up.
func (app *App) Run(ctx context.Context, hz int) error {
	if hz <= 0 {
		return fmt.Errorf("run: invalid tick rate %d", hz)
	}
	app.ctx = ctx
	defer func() { app.ctx = context.Background() }()

	step := time.Second / time.Duration(hz)
	ticker := time.NewTicker(step)
	defer ticker.Stop()

	last := time.Now()
	var acc time.Duration
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			acc += now.Sub(last)
			last = now
			for acc >= step {
				app.Tick(step)
				acc -= step
				if ctx.Err() != nil {
					return ctx.Err()
				}
			}
		}
	}
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("%s is not a pointer resource", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}
		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// AddResource registers pointer resources keyed by their element type.
// Adding a second resource of the same type panics.
func (app *App) AddResource(resources ...any) *App {
	return app.addResources(resources...)
}

// Resource returns the resource of type T, or nil when none was added.
func Resource[T any](app *App) *T {
	r, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil
	}
	return r.(*T)
}

// ensureResource returns the resource of type T, adding the one built by mk first
// when it is missing.
func ensureResource[T any](app *App, mk func() *T) *T {
	if r := Resource[T](app); r != nil {
		return r
	}
	r := mk()
	app.addResources(r)
	return r
}

var (
	typeOfCommands = reflect.TypeOf(Commands{})
	typeOfApp      = reflect.TypeOf(App{})
)

// callSystem resolves every pointer argument of system from the app: *Commands,
// *App or a resource of the pointed-to type.
func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())
	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		if argType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("system %s takes non-pointer argument %s", funcName(systemValue), argType))
		}
		underlyingType := argType.Elem()

		switch {
		case underlyingType == typeOfCommands:
			args[i] = reflect.ValueOf(app.Commands())
		case underlyingType == typeOfApp:
			args[i] = reflect.ValueOf(app)
		default:
			resource, ok := app.resources[underlyingType]
			if !ok {
				panic(fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
					funcName(systemValue), systemType, argType))
			}
			args[i] = reflect.ValueOf(resource)
		}
	}
	systemValue.Call(args)
}

func funcName(v reflect.Value) string {
	if f := runtime.FuncForPC(v.Pointer()); f != nil {
		return f.Name()
	}
	return "<unknown>"
}
