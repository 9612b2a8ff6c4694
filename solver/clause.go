package solver

import (
	"fmt"
	"strings"
)

// A Clause is a disjunction of literals.
// Original and learned clauses share this single representation;
// the learned flag is part of the meta word, not a separate type.
type Clause struct {
	lits []Lit
	// meta packs three pieces of information:
	// bit 31: learned flag,
	// bit 30: locked flag (the clause is the reason for a propagation),
	// bits 0-29: the LBD score, for learned clauses.
	meta     uint32
	activity float32
}

const (
	learnedMask uint32 = 1 << 31
	lockedMask  uint32 = 1 << 30
	flagsMask   uint32 = learnedMask | lockedMask
)

// NewClause returns an original clause over the given lits.
// The slice is owned by the clause afterwards.
func NewClause(lits []Lit) *Clause {
	return &Clause{lits: lits}
}

// NewLearnedClause returns a clause marked as learned.
func NewLearnedClause(lits []Lit) *Clause {
	return &Clause{lits: lits, meta: learnedMask}
}

// Learned is true iff c was deduced during search rather than given as input.
func (c *Clause) Learned() bool {
	return c.meta&learnedMask == learnedMask
}

func (c *Clause) lock() {
	c.meta |= lockedMask
}

func (c *Clause) unlock() {
	c.meta &= ^lockedMask
}

func (c *Clause) isLocked() bool {
	return c.meta&flagsMask == flagsMask
}

func (c *Clause) lbd() int {
	return int(c.meta & ^flagsMask)
}

func (c *Clause) setLbd(lbd int) {
	c.meta = (c.meta & flagsMask) | uint32(lbd)
}

func (c *Clause) incLbd() {
	c.meta++
}

// Len returns the number of lits in the clause.
func (c *Clause) Len() int {
	return len(c.lits)
}

// First returns the first lit of the clause.
func (c *Clause) First() Lit {
	return c.lits[0]
}

// Second returns the second lit of the clause.
func (c *Clause) Second() Lit {
	return c.lits[1]
}

// Get returns the ith lit of the clause.
func (c *Clause) Get(i int) Lit {
	return c.lits[i]
}

// Set sets the ith lit of the clause.
func (c *Clause) Set(i int, l Lit) {
	c.lits[i] = l
}

// swap exchanges the ith and jth lits of the clause.
func (c *Clause) swap(i, j int) {
	c.lits[i], c.lits[j] = c.lits[j], c.lits[i]
}

// Shrink truncates the clause to its first newLen lits.
func (c *Clause) Shrink(newLen int) {
	c.lits = c.lits[:newLen]
}

// CNF returns the clause as a DIMACS line, without the trailing newline.
func (c *Clause) CNF() string {
	var sb strings.Builder
	for _, lit := range c.lits {
		fmt.Fprintf(&sb, "%d ", lit.Int())
	}
	sb.WriteByte('0')
	return sb.String()
}
