// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election derives an election's status from its schedule and
validates schedules before they are stored.

# Status

Status is never stored. It is recomputed on every read:

	status := election.Classify(e.StartDate, e.EndDate, time.Now())

Precedence: now before start is upcoming, now after end is completed,
anything else (including either exact boundary) is active. Ending an
election early sets its end date to now, which classifies as completed
from then on.

# Validation

	election.ValidateNew(req)          // title, schedule, candidate names
	election.ApplyUpdate(e, req)       // merged schedule must still be valid
*/
package election
