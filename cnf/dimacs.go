package cnf

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/verdict-sat/verdict/solver"
)

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

type dimacsParser struct {
	r    *bufio.Reader
	line int
}

func (p *dimacsParser) readByte() (byte, error) {
	b, err := p.r.ReadByte()
	if b == '\n' {
		p.line++
	}
	return b, err
}

// readInt reads an int from the input.
// 'b' is the last read byte. It can be a space, a '-' or a digit.
// All spaces before the int value are ignored.
// Returns io.EOF when the input ends before any digit is seen.
func (p *dimacsParser) readInt(b *byte) (res int, err error) {
	for err == nil && isSpace(*b) {
		*b, err = p.readByte()
	}
	if err == io.EOF {
		return 0, io.EOF
	}
	if err != nil {
		return 0, errors.Wrap(err, "could not read literal")
	}
	neg := 1
	if *b == '-' {
		neg = -1
		if *b, err = p.readByte(); err != nil {
			return 0, ParseError{Line: p.line, Err: `dangling "-" in clause`}
		}
	}
	for err == nil {
		if *b < '0' || *b > '9' {
			return 0, ParseError{Line: p.line, Err: "unexpected character " + strconv.Quote(string(*b)) + " in clause"}
		}
		res = 10*res + int(*b-'0')
		*b, err = p.readByte()
		if err == nil && isSpace(*b) {
			break
		}
	}
	if err == io.EOF {
		*b = ' ' // the last digit was consumed, do not parse it again
		err = nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "could not read literal")
	}
	return res * neg, nil
}

func (p *dimacsParser) header() (nbVars, nbClauses int, err error) {
	text, err := p.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return 0, 0, errors.Wrap(err, "could not read header")
	}
	p.line++
	fields := strings.Fields(text)
	if len(fields) < 3 || fields[0] != "cnf" {
		return 0, 0, ParseError{Line: p.line - 1, Err: "invalid header " + strconv.Quote("p"+strings.TrimRight(text, "\n"))}
	}
	if nbVars, err = strconv.Atoi(fields[1]); err != nil {
		return 0, 0, ParseError{Line: p.line - 1, Err: "header variable count " + strconv.Quote(fields[1]) + " is not an int"}
	}
	if nbClauses, err = strconv.Atoi(fields[2]); err != nil {
		return 0, 0, ParseError{Line: p.line - 1, Err: "header clause count " + strconv.Quote(fields[2]) + " is not an int"}
	}
	return nbVars, nbClauses, nil
}

// ParseDimacs reads a problem in DIMACS CNF format: a "p cnf <vars> <clauses>"
// header, "c" comment lines and zero-terminated clauses of nonzero literals.
// Variable names are the DIMACS indices themselves, so the resulting instance
// prints like any other.
func ParseDimacs(f io.Reader) (*Instance, error) {
	p := dimacsParser{r: bufio.NewReader(f), line: 1}
	var (
		nbVars  int
		clauses [][]int
		hdr     bool
	)
	b, err := p.readByte()
	for err == nil {
		switch {
		case b == 'c':
			for err == nil && b != '\n' {
				b, err = p.readByte()
			}
		case b == 'p':
			if hdr {
				return nil, ParseError{Line: p.line, Err: "duplicate header"}
			}
			var nbClauses int
			if nbVars, nbClauses, err = p.header(); err != nil {
				return nil, err
			}
			hdr = true
			clauses = make([][]int, 0, nbClauses)
		case isSpace(b):
		default:
			if !hdr {
				return nil, ParseError{Line: p.line, Err: "clause found before header"}
			}
			clause := make([]int, 0, 3)
			for {
				val, err := p.readInt(&b)
				if err == io.EOF {
					if len(clause) != 0 {
						return nil, ParseError{Line: p.line, Err: "unterminated clause at end of input"}
					}
					break
				}
				if err != nil {
					return nil, err
				}
				if val == 0 {
					clauses = append(clauses, clause)
					break
				}
				if val > nbVars || -val > nbVars {
					return nil, ParseError{Line: p.line, Err: "literal " + strconv.Itoa(val) + " out of range for " + strconv.Itoa(nbVars) + " variables"}
				}
				clause = append(clause, val)
			}
		}
		b, err = p.readByte()
	}
	if err != io.EOF {
		return nil, errors.Wrap(err, "unterminated input")
	}
	if !hdr {
		return nil, ParseError{Line: p.line, Err: "no header found"}
	}
	inst := Instance{
		Pb:      solver.ParseSliceNb(clauses, nbVars),
		Names:   make([]string, nbVars),
		Clauses: clauses,
	}
	for i := range inst.Names {
		inst.Names[i] = strconv.Itoa(i + 1)
	}
	return &inst, nil
}
