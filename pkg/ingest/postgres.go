package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-subgraph/pkg/graph"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultEdgeQuery selects edges from a two-column table.
const DefaultEdgeQuery = "SELECT source, target FROM edges"

// PGEdgeSource reads edges with a query returning (source, target) rows.
type PGEdgeSource struct {
	pool  *pgxpool.Pool
	query string
}

// NewPGEdgeSource connects to databaseURL and verifies the connection.
func NewPGEdgeSource(ctx context.Context, databaseURL, query string) (*PGEdgeSource, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// One bulk read per snapshot
	config.MaxConns = 2
	config.MaxConnIdleTime = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	if query == "" {
		query = DefaultEdgeQuery
	}
	return &PGEdgeSource{pool: pool, query: query}, nil
}

// Edges runs the query and returns every row as an edge.
func (s *PGEdgeSource) Edges(ctx context.Context) (graph.EdgeList, error) {
	rows, err := s.pool.Query(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("edge query failed: %w", err)
	}
	return scanEdges(rows)
}

// Close closes the connection pool.
func (s *PGEdgeSource) Close() {
	s.pool.Close()
}

func scanEdges(rows pgx.Rows) (graph.EdgeList, error) {
	defer rows.Close()

	var edges graph.EdgeList
	for rows.Next() {
		var e graph.Edge
		if err := rows.Scan(&e.Source, &e.Target); err != nil {
			return nil, fmt.Errorf("failed to scan edge row %d: %w", len(edges)+1, err)
		}
		if e.Source == "" || e.Target == "" {
			return nil, fmt.Errorf("edge row %d: %w: empty endpoint", len(edges)+1, ErrMalformedRow)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("edge query failed: %w", err)
	}
	return edges, nil
}
