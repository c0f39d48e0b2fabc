// Package graphdb wraps the Neo4j Bolt driver with the session and transaction
// lifecycle the mapping layer needs: a session per call, write calls going through
// ExecuteWrite, reads through ExecuteRead, and long-lived streaming reads that hold
// one pooled connection until the caller drains or closes them.
//
// This package owns nothing about the knowledge-graph data model; it is the thin
// collaborator the mapping package dispatches compiled Cypher text and parameter
// maps to.
package graphdb

import (
	"context"
	"fmt"

	"github.com/evalgo-org/kgraph/common"
	"github.com/evalgo-org/kgraph/config"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sirupsen/logrus"
)

// Config holds the parameters required to dial Neo4j. It is an explicit struct,
// not something the driver reads from the environment: no
// environment variables are part of the core. Outer layers populate this (for
// instance from config.GraphConfig) and pass it in.
type Config struct {
	URI      string
	Username string
	Password string
	Realm    string
	Database string // empty uses the server default database

	// Logger receives the compiled query text and parameter map at Debug level
	// for every statement. Production callers set the level above Debug to
	// suppress this. A nil Logger disables the channel entirely.
	Logger *logrus.Logger
}

// Driver wraps a neo4j.DriverWithContext and the debug-logging policy around it.
type Driver struct {
	inner    neo4j.DriverWithContext
	database string
	log      *logrus.Logger
}

// ConfigFromEnv adapts a config.GraphConfig (typically built by an outer
// layer via config.LoadGraphConfig, which reads the environment) into the
// Config this package accepts. The core itself never touches os.Getenv; this
// is the one seam where an outer caller's environment-derived settings cross
// into the driver.
func ConfigFromEnv(gc config.GraphConfig, logger *logrus.Logger) Config {
	return Config{
		URI:      gc.URI,
		Username: gc.Username,
		Password: gc.Password,
		Logger:   logger,
	}
}

// NewDriver creates a new Driver and verifies connectivity immediately, matching
// a fail-fast connectivity check rather than a lazy first use.
func NewDriver(ctx context.Context, cfg Config) (*Driver, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, cfg.Realm))
	if err != nil {
		return nil, fmt.Errorf("graphdb: create driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("graphdb: connect: %w", err)
	}

	return &Driver{inner: driver, database: cfg.Database, log: cfg.Logger}, nil
}

// Close releases the underlying connection pool.
func (d *Driver) Close(ctx context.Context) error {
	return d.inner.Close(ctx)
}

func (d *Driver) sessionConfig(mode neo4j.AccessMode) neo4j.SessionConfig {
	return neo4j.SessionConfig{AccessMode: mode, DatabaseName: d.database}
}

// DefaultLogger returns the package-wide structured logger from the common
// package, pre-configured with its error/stdout-stderr output split. Callers
// assembling a Config use this when they want the debug statement channel on
// but have no dedicated logger of their own.
func DefaultLogger() *logrus.Logger { return common.Logger }

func (d *Driver) logStatement(cypher string, params map[string]any) {
	if d.log == nil {
		return
	}
	correlationID := common.NewCorrelationID("stmt")
	d.log.WithFields(logrus.Fields{"params": params, "correlation_id": correlationID}).Debug(cypher)
}

// Statement is a single compiled Cypher statement with its bound parameters, the
// unit every mapping-layer operation dispatches in exactly one round trip.
type Statement struct {
	Cypher string
	Params map[string]any
}

// WriteTx runs stmt inside a single managed write transaction and collects every
// returned record. Multi-clause mutations (retire-then-insert) are expressed as
// one compiled statement so the whole mutation is one transaction.
func (d *Driver) WriteTx(ctx context.Context, stmt Statement) ([]*neo4j.Record, error) {
	d.logStatement(stmt.Cypher, stmt.Params)

	session := d.inner.NewSession(ctx, d.sessionConfig(neo4j.AccessModeWrite))
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, stmt.Cypher, stmt.Params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("graphdb: write: %w", err)
	}

	records, _ := result.([]*neo4j.Record)
	return records, nil
}

// ReadTx runs stmt inside a single managed read transaction and collects every
// returned record. Use Stream for queries whose result set should not be fully
// materialized up front.
func (d *Driver) ReadTx(ctx context.Context, stmt Statement) ([]*neo4j.Record, error) {
	d.logStatement(stmt.Cypher, stmt.Params)

	session := d.inner.NewSession(ctx, d.sessionConfig(neo4j.AccessModeRead))
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, stmt.Cypher, stmt.Params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("graphdb: read: %w", err)
	}

	records, _ := result.([]*neo4j.Record)
	return records, nil
}

// ResultStream is a cursor over a read query's rows. It holds one pooled
// connection open until Close (or Next returning false) releases it.
type ResultStream struct {
	session neo4j.SessionWithContext
	tx      neo4j.ExplicitTransaction
	result  neo4j.ResultWithContext
	closed  bool
}

// Stream runs stmt in an explicit (non-managed) read transaction and returns a
// cursor the caller drives row by row, for find-many operations specified as
// "a lazy stream of records".
func (d *Driver) Stream(ctx context.Context, stmt Statement) (*ResultStream, error) {
	d.logStatement(stmt.Cypher, stmt.Params)

	session := d.inner.NewSession(ctx, d.sessionConfig(neo4j.AccessModeRead))

	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		session.Close(ctx)
		return nil, fmt.Errorf("graphdb: begin stream: %w", err)
	}

	result, err := tx.Run(ctx, stmt.Cypher, stmt.Params)
	if err != nil {
		tx.Close(ctx)
		session.Close(ctx)
		return nil, fmt.Errorf("graphdb: stream query: %w", err)
	}

	return &ResultStream{session: session, tx: tx, result: result}, nil
}

// Next advances the cursor, returning false when the stream is exhausted or
// errored (inspect Err after a false return to tell the two apart).
func (s *ResultStream) Next(ctx context.Context) bool {
	if s.closed {
		return false
	}
	return s.result.Next(ctx)
}

// Record returns the current row. Only valid after Next returns true.
func (s *ResultStream) Record() *neo4j.Record {
	return s.result.Record()
}

// Err returns the error, if any, that ended the stream.
func (s *ResultStream) Err() error {
	return s.result.Err()
}

// Close commits the underlying transaction and releases the pooled connection.
// Safe to call multiple times.
func (s *ResultStream) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.tx.Commit(ctx); err != nil {
		s.tx.Close(ctx)
		s.session.Close(ctx)
		return fmt.Errorf("graphdb: close stream: %w", err)
	}
	return s.session.Close(ctx)
}
