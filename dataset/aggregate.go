package dataset

import (
	"fmt"
	"time"

	"github.com/gridsim/pvdispatch/core/model"
)

// Aggregate combines aligned site series into one by summing load and solar
// per interval. All series must share timestamps and length; the tariff of
// the first series applies, so sites on different schedules cannot be merged.
func Aggregate(sites ...model.Series) (model.Series, error) {
	if len(sites) == 0 {
		return nil, fmt.Errorf("no series to aggregate")
	}
	first := sites[0]
	out := make(model.Series, len(first))
	copy(out, first)
	for s := 1; s < len(sites); s++ {
		if len(sites[s]) != len(first) {
			return nil, fmt.Errorf("series %d has %d intervals, want %d", s, len(sites[s]), len(first))
		}
		for i, iv := range sites[s] {
			if !iv.Start.Equal(out[i].Start) {
				return nil, fmt.Errorf("series %d interval %d: timestamp %s does not match %s",
					s, i, iv.Start.Format(time.RFC3339), out[i].Start.Format(time.RFC3339))
			}
			out[i].LoadKW += iv.LoadKW
			out[i].SolarKW += iv.SolarKW
		}
	}
	return out, nil
}
