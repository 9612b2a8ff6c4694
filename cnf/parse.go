package cnf

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/verdict-sat/verdict/solver"
)

// An Instance is a parsed problem together with its variable names.
// Names is indexed by variable, in order of first appearance in the input.
// Clauses holds the clauses as read, as signed 1-based indices into Names,
// before any simplification; Verify checks models against it.
type Instance struct {
	Pb      *solver.Problem
	Names   []string
	Clauses [][]int
}

// A ParseError describes invalid input text and the line it was found on.
type ParseError struct {
	Line int
	Err  string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err)
}

// Parse reads a problem in the named clause format: one clause per line,
// literals separated by whitespace, an identifier denoting a positive literal
// and the same identifier prefixed with "!" its negation.
// An empty line terminates the input; whatever follows is ignored, and EOF
// terminates it as well. A line that holds whitespace but no literal is the
// empty clause, making the problem trivially unsatisfiable.
func Parse(r io.Reader) (*Instance, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	var inst Instance
	idx := map[string]int{}
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" {
			break
		}
		fields := strings.Fields(text)
		clause := make([]int, 0, len(fields))
		for _, tok := range fields {
			l, err := inst.internLit(tok, idx)
			if err != nil {
				return nil, ParseError{Line: line, Err: err.Error()}
			}
			clause = append(clause, l)
		}
		inst.Clauses = append(inst.Clauses, clause)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "unterminated input")
	}
	inst.Pb = solver.ParseSliceNb(inst.Clauses, len(inst.Names))
	return &inst, nil
}

// internLit translates a literal token into a signed variable index,
// registering the variable name on first appearance.
func (inst *Instance) internLit(tok string, idx map[string]int) (int, error) {
	name := tok
	neg := false
	if name[0] == '!' {
		neg = true
		name = name[1:]
	}
	if name == "" {
		return 0, fmt.Errorf("bare %q is not a literal", tok)
	}
	if strings.ContainsRune(name, '!') {
		return 0, fmt.Errorf("invalid literal %q", tok)
	}
	v, ok := idx[name]
	if !ok {
		inst.Names = append(inst.Names, name)
		v = len(inst.Names)
		idx[name] = v
	}
	if neg {
		return -v, nil
	}
	return v, nil
}
