package volumetric

import (
	"time"
)

// Time is the simulated clock. App.Tick advances it by the tick's dt, so two
// runs with the same ticks see the same times.
type Time struct {
	Time    time.Time
	Dt      time.Duration
	Elapsed time.Duration
	Frame   uint64
}

func (t *Time) advance(dt time.Duration) {
	t.Dt = dt
	t.Time = t.Time.Add(dt)
	t.Elapsed += dt
	t.Frame++
}

// DeltaSeconds is Dt in seconds.
func (t *Time) DeltaSeconds() float32 {
	return float32(t.Dt.Seconds())
}

func (t *Time) Seconds() float32 {
	return float32(t.Elapsed.Seconds())
}

type TimeModule struct {
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{
		Time: time.Now(),
		Dt:   0,
	})
}
