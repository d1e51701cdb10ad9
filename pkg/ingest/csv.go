// Package ingest loads edge lists, partitions and member lists from local
// files, S3 objects and Postgres.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-subgraph/pkg/algorithms"
	"github.com/dd0wney/cluso-subgraph/pkg/graph"
)

// MemberHeader is the header row of member files.
var MemberHeader = []string{"name", "community", "in-degree"}

// ErrMalformedRow is returned for rows that cannot be interpreted.
var ErrMalformedRow = errors.New("malformed row")

// CSVOptions describes delimited input.
type CSVOptions struct {
	Delimiter rune
	Header    bool // skip the first row
}

// DefaultCSVOptions reads comma-separated rows without a header.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{Delimiter: ','}
}

func (o CSVOptions) reader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	if o.Delimiter != 0 {
		cr.Comma = o.Delimiter
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return cr
}

// eachRow calls fn for every data row with its 1-based line number.
func eachRow(r io.Reader, opts CSVOptions, minFields int, fn func(line int, rec []string) error) error {
	cr := opts.reader(r)
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if row == 0 && opts.Header {
			continue
		}
		line, _ := cr.FieldPos(0)
		if len(rec) < minFields {
			return fmt.Errorf("line %d: %w: want at least %d fields, got %d", line, ErrMalformedRow, minFields, len(rec))
		}
		if err := fn(line, rec); err != nil {
			return err
		}
	}
}

// ReadEdges reads source,target rows. Extra columns are ignored.
func ReadEdges(r io.Reader, opts CSVOptions) (graph.EdgeList, error) {
	var edges graph.EdgeList
	err := eachRow(r, opts, 2, func(line int, rec []string) error {
		src, dst := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
		if src == "" || dst == "" {
			return fmt.Errorf("line %d: %w: empty endpoint", line, ErrMalformedRow)
		}
		edges = append(edges, graph.Edge{Source: src, Target: dst})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return edges, nil
}

// ReadPartition reads node,community rows. Member files, whose third
// column is the in-degree, are accepted too.
func ReadPartition(r io.Reader, opts CSVOptions, modularity float64) (*graph.Partition, error) {
	members, err := readAssignments(r, opts)
	if err != nil {
		return nil, err
	}
	return graph.NewPartition(members, modularity)
}

func readAssignments(r io.Reader, opts CSVOptions) ([]graph.Assignment, error) {
	var out []graph.Assignment
	err := eachRow(r, opts, 2, func(line int, rec []string) error {
		if isMemberHeader(rec) {
			return nil
		}
		out = append(out, graph.Assignment{
			Node:      strings.TrimSpace(rec[0]),
			Community: graph.CommunityID(strings.TrimSpace(rec[1])),
		})
		return nil
	})
	return out, err
}

// ReadMembers reads name,community,in-degree rows as written by
// report.WriteMembers. A leading header row is skipped.
func ReadMembers(r io.Reader, opts CSVOptions) ([]algorithms.Member, error) {
	var out []algorithms.Member
	err := eachRow(r, opts, 3, func(line int, rec []string) error {
		if isMemberHeader(rec) {
			return nil
		}
		prominence, err := strconv.Atoi(strings.TrimSpace(rec[2]))
		if err != nil {
			return fmt.Errorf("line %d: %w: in-degree %q", line, ErrMalformedRow, rec[2])
		}
		out = append(out, algorithms.Member{
			Node:       strings.TrimSpace(rec[0]),
			Community:  graph.CommunityID(strings.TrimSpace(rec[1])),
			Prominence: prominence,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func isMemberHeader(rec []string) bool {
	return len(rec) >= 2 &&
		strings.EqualFold(strings.TrimSpace(rec[0]), MemberHeader[0]) &&
		strings.EqualFold(strings.TrimSpace(rec[1]), MemberHeader[1])
}
