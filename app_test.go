package volumetric

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func NewMockResource1(name string) *MockResource1 {
	return &MockResource1{name: name}
}
func NewMockResource2(name string) *MockResource2 {
	return &MockResource2{name: name}
}

type MockModule struct {
	installed int
}

func (m *MockModule) Install(app *App, commands *Commands) {
	m.installed++
	commands.AddResources(NewMockResource1("from module"))
}

func TestApp_addResources(t *testing.T) {
	app := NewApp()

	resource1 := NewMockResource1("Resource1")
	app.AddResource(resource1)
	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.AddResource(resource1)
	})

	resource2 := NewMockResource2("Resource2")
	app.AddResource(resource2)
	assert.Same(t, resource2, Resource[MockResource2](app))
	assert.Nil(t, Resource[Time](app))
}

func TestApp_nonPointerResourcePanics(t *testing.T) {
	app := NewApp()
	assert.Panics(t, func() { app.AddResource(MockResource1{}) })
}

func TestApp_UseModules(t *testing.T) {
	app := NewApp()
	mod := &MockModule{}
	app.UseModules(mod)

	assert.Equal(t, 1, mod.installed)
	require.NotNil(t, Resource[MockResource1](app))
	assert.Equal(t, "from module", Resource[MockResource1](app).name)
	assert.Len(t, app.modules, 1)
}

func TestApp_StagesRunInOrder(t *testing.T) {
	app := NewApp()
	var calls []string
	record := func(name string) func() {
		return func() { calls = append(calls, name) }
	}
	cmd := app.Commands()
	cmd.UseSystem(System(record("render")).InStage(Render))
	cmd.UseSystem(System(record("update")))
	cmd.UseSystem(System(record("prelude")).InStage(Prelude))
	cmd.UseSystem(System(record("finale")).InStage(Finale))

	app.Tick(time.Millisecond)
	assert.Equal(t, []string{"prelude", "update", "render", "finale"}, calls)
}

func TestApp_UseStage(t *testing.T) {
	app := NewApp()
	custom := Stage{Name: "Simulate"}
	app.UseStage(custom, AfterStage(Update))

	var calls []string
	app.UseSystem(System(func() { calls = append(calls, "simulate") }).InStage(custom))
	app.UseSystem(System(func() { calls = append(calls, "post") }).InStage(PostUpdate))
	app.UseSystem(System(func() { calls = append(calls, "update") }).InStage(Update))
	app.Tick(0)
	assert.Equal(t, []string{"update", "simulate", "post"}, calls)

	assert.PanicsWithValue(t, "Stage Missing not found", func() {
		app.UseStage(Stage{Name: "Other"}, BeforeStage(Stage{Name: "Missing"}))
	})
	assert.PanicsWithValue(t, "Stage Missing doesn't exist", func() {
		app.UseSystem(System(func() {}).InStage(Stage{Name: "Missing"}))
	})
}

func TestApp_SystemDependencyInjection(t *testing.T) {
	app := NewApp()
	app.UseModules(TimeModule{})
	app.AddResource(NewMockResource1("injected"))

	var gotName string
	var gotApp *App
	var gotDt time.Duration
	app.UseSystem(System(func(a *App, cmd *Commands, r *MockResource1, tm *Time) {
		gotApp = a
		gotName = r.name
		gotDt = tm.Dt
		assert.NotNil(t, cmd)
	}))
	app.Tick(20 * time.Millisecond)

	assert.Same(t, app, gotApp)
	assert.Equal(t, "injected", gotName)
	assert.Equal(t, 20*time.Millisecond, gotDt)

	app.UseSystem(System(func(*MockResource2) {}))
	assert.Panics(t, func() { app.Tick(0) })
}

func TestApp_TickAdvancesTime(t *testing.T) {
	app := NewApp().UseModules(TimeModule{})
	tm := Resource[Time](app)
	start := tm.Time

	app.Tick(100 * time.Millisecond)
	app.Tick(50 * time.Millisecond)

	assert.Equal(t, uint64(2), tm.Frame)
	assert.Equal(t, 150*time.Millisecond, tm.Elapsed)
	assert.Equal(t, start.Add(150*time.Millisecond), tm.Time)
	assert.InDelta(t, 0.05, tm.DeltaSeconds(), 1e-6)
	assert.InDelta(t, 0.15, tm.Seconds(), 1e-6)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app := NewApp().UseModules(TimeModule{})
	ctx, cancel := context.WithCancel(context.Background())

	ticks := 0
	app.UseSystem(System(func(a *App) {
		ticks++
		assert.Equal(t, ctx, a.Context())
		if ticks == 3 {
			cancel()
		}
	}))

	err := app.Run(ctx, 200)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, ticks)
	assert.Equal(t, context.Background(), app.Context())

	assert.Error(t, app.Run(context.Background(), 0))
}

func TestLogger(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWriterLogger("sdf", false, &out, &errOut)

	l.Debugf("hidden %d", 1)
	assert.Empty(t, out.String())

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("shown %d", 2)
	l.Infof("info")
	l.Warnf("warn")
	l.Errorf("boom")

	assert.Contains(t, out.String(), "[sdf] DEBUG: shown 2")
	assert.Contains(t, out.String(), "[sdf] INFO: info")
	assert.True(t, strings.Contains(errOut.String(), "[sdf] WARN: warn"))
	assert.Contains(t, errOut.String(), "[sdf] ERROR: boom")
}

func TestApp_LoggerFallback(t *testing.T) {
	app := NewApp()
	assert.NotNil(t, app.Logger())
	assert.False(t, app.Logger().DebugEnabled())

	var nilApp *App
	assert.NotNil(t, nilApp.Logger())

	app.UseModules(LoggingModule{Prefix: "test", Debug: true})
	assert.True(t, app.Logger().DebugEnabled())
}
