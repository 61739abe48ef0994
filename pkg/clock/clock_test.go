package clock

import (
	"testing"
	"time"
)

func TestFixedOffsetClock_Now(t *testing.T) {
	jst := time.FixedZone("UTC+9", 9*3600)
	c := NewFixedOffset(jst)

	now := c.Now()
	if now.Location() != jst {
		t.Errorf("期望时区 %v，实际 %v", jst, now.Location())
	}

	_, offset := now.Zone()
	if offset != 9*3600 {
		t.Errorf("期望偏移 %d 秒，实际 %d", 9*3600, offset)
	}
}

func TestFixedOffsetClock_Location(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	c := NewFixedOffset(loc)
	if c.Location() != loc {
		t.Errorf("Location 应返回构造时传入的时区")
	}
}
