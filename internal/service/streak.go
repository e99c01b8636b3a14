package service

import (
	"time"

	"tonequest/internal/models"
)

// ComputeStreaks derives the current and longest daily streaks from a
// user's completion dates. Dates must be midnight-normalized and sorted
// newest first, the order the repository returns them in.
//
// The current streak counts consecutive days ending today or yesterday;
// a run that ended earlier has been broken and counts as zero. Playing
// several games on one day still advances a streak by one.
func ComputeStreaks(dates []time.Time, today time.Time) models.Streak {
	if len(dates) == 0 {
		return models.Streak{}
	}

	today = truncateToDay(today)
	yesterday := today.AddDate(0, 0, -1)

	// Longest: walk runs of consecutive days
	longest := 1
	run := 1
	for i := 1; i < len(dates); i++ {
		prev := truncateToDay(dates[i-1])
		cur := truncateToDay(dates[i])
		if prev.Sub(cur) == 24*time.Hour {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}

	// Current: the newest run, but only if it is still alive
	current := 0
	newest := truncateToDay(dates[0])
	if newest.Equal(today) || newest.Equal(yesterday) {
		current = 1
		for i := 1; i < len(dates); i++ {
			prev := truncateToDay(dates[i-1])
			cur := truncateToDay(dates[i])
			if prev.Sub(cur) != 24*time.Hour {
				break
			}
			current++
		}
	}

	return models.Streak{Current: current, Longest: longest}
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
