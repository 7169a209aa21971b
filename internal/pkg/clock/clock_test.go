package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToday(t *testing.T) {
	t.Run("truncates to UTC midnight", func(t *testing.T) {
		var c Clock = func() time.Time {
			return time.Date(2024, 6, 1, 23, 45, 12, 500, time.UTC)
		}
		assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), c.Today())
	})

	t.Run("converts other zones to UTC before truncating", func(t *testing.T) {
		loc := time.FixedZone("UTC+7", 7*60*60)
		var c Clock = func() time.Time {
			// 02:00 on June 2nd in UTC+7 is still June 1st in UTC.
			return time.Date(2024, 6, 2, 2, 0, 0, 0, loc)
		}
		assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), c.Today())
	})
}

func TestSystem(t *testing.T) {
	before := time.Now()
	got := Clock(System)()
	after := time.Now()

	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}
