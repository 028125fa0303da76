// Package dimacs reads the DIMACS CNF subset (`p cnf <vars> <clauses>`
// plus clause lines terminated by 0) used by the cmd/mcsat CLI; the core
// package's end-to-end tests build their clauses directly and do not use
// it. Grounded on gophersat's
// solver/parser.go (ParseCNF), trimmed to the CNF-only subset this
// repo's Boolean theory needs: no PBS or cardinality-constraint
// extensions, since SPEC_FULL.md's scope has no analogue for them.
package dimacs

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Problem is a parsed CNF instance: NumVars Boolean variables (1-indexed
// in the file, 0-indexed here) and a set of clauses, each a list of
// signed literals (positive n means variable n-1 true, negative n means
// negated).
type Problem struct {
	NumVars int
	Clauses [][]int
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// readInt reads a (possibly negative) int from r. b holds the last byte
// read, which may be whitespace, '-' or a digit; leading whitespace is
// skipped. Returns io.EOF if the stream ends before any digit is found.
func readInt(b *byte, r *bufio.Reader) (int, error) {
	var err error
	for err == nil && isSpace(*b) {
		*b, err = r.ReadByte()
	}
	if err == io.EOF {
		return 0, io.EOF
	}
	if err != nil {
		return 0, errors.Wrap(err, "dimacs: reading int")
	}

	neg := 1
	if *b == '-' {
		neg = -1
		*b, err = r.ReadByte()
		if err != nil {
			return 0, errors.Wrap(err, "dimacs: reading negative int")
		}
	}

	res := 0
	for err == nil {
		if *b < '0' || *b > '9' {
			return 0, errors.Errorf("dimacs: %q is not a digit", *b)
		}
		res = 10*res + int(*b-'0')
		*b, err = r.ReadByte()
		if isSpace(*b) {
			break
		}
	}
	return res * neg, err
}

// parseHeader reads the remainder of the "p cnf <vars> <clauses>" line;
// the leading 'p' byte has already been consumed by the caller, so the
// fields here are ["cnf", vars, clauses].
func parseHeader(r *bufio.Reader) (numVars, numClauses int, err error) {
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return 0, 0, errors.Wrap(err, "dimacs: reading header")
	}
	fields := strings.Fields(line)
	if len(fields) < 3 || fields[0] != "cnf" {
		return 0, 0, errors.Errorf("dimacs: invalid header %q", line)
	}
	numVars, perr := strconv.Atoi(fields[1])
	if perr != nil {
		return 0, 0, errors.Wrapf(perr, "dimacs: num-vars field %q", fields[1])
	}
	numClauses, perr = strconv.Atoi(fields[2])
	if perr != nil {
		return 0, 0, errors.Wrapf(perr, "dimacs: num-clauses field %q", fields[2])
	}
	return numVars, numClauses, nil
}

// Parse reads a DIMACS CNF file from r.
func Parse(r io.Reader) (*Problem, error) {
	br := bufio.NewReader(r)
	var pb Problem

	b, err := br.ReadByte()
	for err == nil {
		switch {
		case b == 'c':
			for err == nil && b != '\n' {
				b, err = br.ReadByte()
			}
		case b == 'p':
			var numClauses int
			pb.NumVars, numClauses, err = parseHeader(br)
			if err != nil {
				return nil, err
			}
			pb.Clauses = make([][]int, 0, numClauses)
		case isSpace(b):
			// ignore stray whitespace between clauses
		default:
			var lits []int
			for {
				val, rerr := readInt(&b, br)
				if rerr == io.EOF {
					if len(lits) != 0 {
						return nil, errors.New("dimacs: unterminated clause at EOF")
					}
					err = io.EOF
					break
				}
				if rerr != nil {
					return nil, rerr
				}
				if val == 0 {
					pb.Clauses = append(pb.Clauses, lits)
					break
				}
				if val > pb.NumVars || -val > pb.NumVars {
					return nil, errors.Errorf("dimacs: literal %d out of range for %d vars", val, pb.NumVars)
				}
				lits = append(lits, val)
			}
		}
		if err == io.EOF {
			break
		}
		b, err = br.ReadByte()
	}
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "dimacs: reading problem")
	}
	return &pb, nil
}
