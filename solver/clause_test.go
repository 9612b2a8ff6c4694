package solver

import "testing"

func TestClauseMeta(t *testing.T) {
	c := NewClause([]Lit{IntToLit(1), IntToLit(-2), IntToLit(3)})
	if c.Learned() {
		t.Error("original clause reported as learned")
	}
	c.lock()
	if c.isLocked() {
		t.Error("original clauses are never considered locked")
	}
	learned := NewLearnedClause([]Lit{IntToLit(-1), IntToLit(2)})
	if !learned.Learned() {
		t.Error("learned clause not reported as learned")
	}
	learned.setLbd(2)
	if learned.lbd() != 2 {
		t.Errorf("invalid lbd: expected 2, got %d", learned.lbd())
	}
	learned.incLbd()
	if learned.lbd() != 3 {
		t.Errorf("invalid lbd after increment: expected 3, got %d", learned.lbd())
	}
	if !learned.Learned() {
		t.Error("lbd update clobbered the learned flag")
	}
	learned.lock()
	if !learned.isLocked() {
		t.Error("learned clause not locked after lock()")
	}
	if learned.lbd() != 3 {
		t.Errorf("lock clobbered the lbd: expected 3, got %d", learned.lbd())
	}
	learned.unlock()
	if learned.isLocked() {
		t.Error("learned clause still locked after unlock()")
	}
}

func TestClauseLits(t *testing.T) {
	c := NewClause([]Lit{IntToLit(1), IntToLit(-2), IntToLit(3), IntToLit(4)})
	if c.Len() != 4 {
		t.Fatalf("invalid length: expected 4, got %d", c.Len())
	}
	if c.First() != IntToLit(1) || c.Second() != IntToLit(-2) {
		t.Errorf("invalid first lits: got %d and %d", c.First().Int(), c.Second().Int())
	}
	c.swap(0, 2)
	if c.First() != IntToLit(3) || c.Get(2) != IntToLit(1) {
		t.Errorf("invalid lits after swap: got %d and %d", c.First().Int(), c.Get(2).Int())
	}
	c.Shrink(2)
	if c.Len() != 2 {
		t.Errorf("invalid length after shrink: expected 2, got %d", c.Len())
	}
	if cnf := c.CNF(); cnf != "3 -2 0" {
		t.Errorf("invalid CNF representation: expected %q, got %q", "3 -2 0", cnf)
	}
}

func TestLitConversions(t *testing.T) {
	for _, val := range []int{1, -1, 2, -2, 7, -7} {
		l := IntToLit(val)
		if int(l.Int()) != val {
			t.Errorf("roundtrip failed for %d: got %d", val, l.Int())
		}
		if l.IsPositive() != (val > 0) {
			t.Errorf("invalid polarity for %d", val)
		}
		if l.Negation().Var() != l.Var() {
			t.Errorf("negation changed the var of %d", val)
		}
		if l.Negation().IsPositive() == l.IsPositive() {
			t.Errorf("negation kept the polarity of %d", val)
		}
	}
	if IntToLit(3).Var() != IntToVar(3) {
		t.Error("IntToLit and IntToVar disagree on var 3")
	}
}
