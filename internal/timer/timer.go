package timer

import (
	"sync/atomic"
	"time"
)

// DateLayout is how dates are rendered in the Date header. It's always GMT.
const DateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// Time contains the unix-time in milliseconds updated every [Resolution] milliseconds
var Time = new(atomic.Int64)

var date atomic.Pointer[string]

func Now() time.Time {
	millis := Time.Load()
	return time.Unix(millis/1000, (millis%1000)*1e6)
}

// Date returns the current time, already formatted for the Date header. It's updated
// together with the Time, so formatting happens once per tick instead of once per
// response.
func Date() string {
	return *date.Load()
}

// FormatDate renders the time as the Date header value.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Resolution is the frequency at which time is updated. Default 500ms are
// precise enough for setting I/O deadlines
const Resolution = 500 * time.Millisecond

func update() {
	now := time.Now()
	Time.Store(now.UnixMilli())
	formatted := FormatDate(now)
	date.Store(&formatted)
}

func init() {
	// there is no guarantee that the goroutine will be started immediately. If it won't,
	// some rapid usage of the timer will result in zero-time, which isn't great actually
	update()

	go func() {
		for {
			time.Sleep(Resolution)
			update()
		}
	}()
}
