package solver

import "testing"

func TestLuby(t *testing.T) {
	vals := []uint{1, 1, 2, 1, 1, 2, 4, 1, 1, 2, 1, 1, 2, 4, 8, 1, 1, 2, 1, 1, 2, 4}
	for i, val := range vals {
		if luby(uint(i)+1) != val {
			t.Errorf("invalid luby term luby(%d): expected %d, got %d", i+1, val, luby(uint(i)+1))
		}
	}
}

func TestRestartSched(t *testing.T) {
	r := newRestartSched()
	periods := []int64{1, 1, 2, 1, 1, 2, 4}
	for term, period := range periods {
		allowed := period * restartFactor
		for i := int64(0); i < allowed-1; i++ {
			r.addConflict()
			if r.shouldRestart() {
				t.Fatalf("early restart in term %d after %d conflicts", term, i+1)
			}
		}
		r.addConflict()
		if !r.shouldRestart() {
			t.Fatalf("no restart in term %d after %d conflicts", term, allowed)
		}
		r.nextRestart()
		if r.shouldRestart() {
			t.Fatalf("conflict count not reset after restart %d", term)
		}
	}
}
