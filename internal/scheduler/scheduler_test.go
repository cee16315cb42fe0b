package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const weekdaySchedule = "0 0 * * 1-5"

func TestParseSchedule_WeekdayTrigger(t *testing.T) {
	t.Parallel()

	schedule, err := ParseSchedule(weekdaySchedule)
	require.NoError(t, err)

	t.Run("fires at midnight Monday through Friday", func(t *testing.T) {
		t.Parallel()

		weekdays := []time.Time{
			time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), // Monday
			time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), // Friday
		}
		for _, want := range weekdays {
			got := schedule.Next(want.Add(-time.Minute))
			assert.Equal(t, want, got, "expected fire at %s", want.Weekday())
		}
	})

	t.Run("skips Saturday and Sunday", func(t *testing.T) {
		t.Parallel()

		// After Friday 23:59 the next fire is Monday 00:00
		fridayNight := time.Date(2026, 8, 28, 23, 59, 0, 0, time.UTC)
		monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, monday, schedule.Next(fridayNight))

		saturday := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, monday, schedule.Next(saturday))

		sunday := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, monday, schedule.Next(sunday))
	})

	t.Run("fires once per weekday", func(t *testing.T) {
		t.Parallel()

		monday := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
		tuesday := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, tuesday, schedule.Next(monday))
	})
}

func TestParseSchedule_Invalid(t *testing.T) {
	t.Parallel()

	tests := []string{
		"",
		"not a cron",
		"0 0 * *",       // too few fields
		"0 0 * * 1-5 *", // seconds field not accepted
		"61 0 * * 1-5",  // minute out of range
	}
	for _, spec := range tests {
		_, err := ParseSchedule(spec)
		assert.Error(t, err, "spec %q", spec)
	}
}

func TestScheduler_Register(t *testing.T) {
	t.Parallel()

	t.Run("accepts a valid schedule", func(t *testing.T) {
		t.Parallel()

		s := New()
		require.NoError(t, s.Register("digest", weekdaySchedule, func() {}))
	})

	t.Run("rejects a malformed schedule", func(t *testing.T) {
		t.Parallel()

		s := New()
		err := s.Register("digest", "bogus", func() {})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid cron schedule")
	})

	t.Run("start and stop are clean", func(t *testing.T) {
		t.Parallel()

		s := New()
		require.NoError(t, s.Register("tick", "* * * * *", func() {}))
		s.Start()
		<-s.Stop().Done()
	})
}
