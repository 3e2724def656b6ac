// Package timeutil compares times of day
package timeutil

import (
	"fmt"
	"time"
)

// DefaultLayout is the layout for times of day, e.g. "8:30AM"
const DefaultLayout = "3:04PM"

// CompareResult is the outcome of a comparison
type CompareResult int

// all possible compare results
const (
	Less    CompareResult = -1
	Equal   CompareResult = 0
	Greater CompareResult = 1
)

func (c CompareResult) String() string {
	switch c {
	case Less:
		return "less"
	case Equal:
		return "equal"
	case Greater:
		return "greater"
	}
	return fmt.Sprintf("CompareResult(%d)", int(c))
}

// CompareTimes compares two times of day in DefaultLayout
func CompareTimes(time1, time2 string) (CompareResult, error) {
	return CompareTimesWithLayout(DefaultLayout, time1, time2)
}

// CompareTimesWithLayout compares the hour and minute of two times parsed with
// layout. Seconds and dates are ignored.
func CompareTimesWithLayout(layout, time1, time2 string) (CompareResult, error) {
	t1, err := time.Parse(layout, time1)
	if err != nil {
		return Equal, fmt.Errorf("cannot parse time %q: %w", time1, err)
	}
	t2, err := time.Parse(layout, time2)
	if err != nil {
		return Equal, fmt.Errorf("cannot parse time %q: %w", time2, err)
	}
	m1 := t1.Hour()*60 + t1.Minute()
	m2 := t2.Hour()*60 + t2.Minute()
	switch {
	case m1 < m2:
		return Less, nil
	case m1 > m2:
		return Greater, nil
	}
	return Equal, nil
}
