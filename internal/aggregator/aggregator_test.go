package aggregator

import "testing"

func TestMod(t *testing.T) {
	cases := []struct {
		a, b, want int64
	}{
		{2000, 60, 20},
		{1940, 60, 20},
		{3600, 60, 0},
		{86400, 3600, 0},
		{-20, 60, 40},
	}
	for _, c := range cases {
		if got := mod(c.a, c.b); got != c.want {
			t.Errorf("mod(%d,%d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestBoundaryDetection(t *testing.T) {
	// t mod 60 < SAMPLE_INTERVAL(2) fires the minute boundary.
	boundaryTs := []int64{1800, 3600, 60}
	for _, ts := range boundaryTs {
		if mod(ts, 60) >= sampleInterval {
			t.Errorf("t=%d expected to be a minute boundary (t mod 60 = %d)", ts, mod(ts, 60))
		}
	}
	nonBoundary := []int64{1802, 1830, 59}
	for _, ts := range nonBoundary {
		if mod(ts, 60) < sampleInterval {
			t.Errorf("t=%d expected NOT to be a minute boundary (t mod 60 = %d)", ts, mod(ts, 60))
		}
	}
}

func TestHourAndDayBoundaryNesting(t *testing.T) {
	boundary := int64(86400) // a day boundary is also an hour boundary
	if mod(boundary/60, 60) != 0 {
		t.Errorf("86400 should be an hour boundary")
	}
	if mod(boundary/3600, 24) != 0 {
		t.Errorf("86400 should be a day boundary")
	}

	hourOnly := int64(3600) // an hour boundary that is not a day boundary
	if mod(hourOnly/60, 60) != 0 {
		t.Errorf("3600 should be an hour boundary")
	}
	if mod(hourOnly/3600, 24) == 0 {
		t.Errorf("3600 should not be a day boundary")
	}
}
