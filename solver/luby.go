package solver

// How many conflicts the first Luby term allows before a restart.
const restartFactor = 512

// luby returns the ith term of the Luby series, i numbered from 1:
// 1, 1, 2, 1, 1, 2, 4, 1, 1, 2, 1, 1, 2, 4, 8, ...
func luby(i uint) uint {
	k := uint(1)
	for (1<<k)-1 < i {
		k++
	}
	for i != (1<<k)-1 {
		i = i - (1 << (k - 1)) + 1
		k = 1
		for (1<<k)-1 < i {
			k++
		}
	}
	return 1 << (k - 1)
}

// restartSched schedules restarts on a Luby sequence scaled by
// restartFactor. The schedule depends only on how many restarts already
// happened, never on the formula being solved.
type restartSched struct {
	idx       uint  // 1-based index in the Luby series
	conflicts int64 // conflicts since the last restart
	threshold int64 // conflicts allowed before the next restart
}

func newRestartSched() restartSched {
	return restartSched{idx: 1, threshold: restartFactor}
}

func (r *restartSched) addConflict() {
	r.conflicts++
}

func (r *restartSched) shouldRestart() bool {
	return r.conflicts >= r.threshold
}

// nextRestart moves to the next Luby term and resets the conflict count.
func (r *restartSched) nextRestart() {
	r.idx++
	r.conflicts = 0
	r.threshold = int64(luby(r.idx)) * restartFactor
}
