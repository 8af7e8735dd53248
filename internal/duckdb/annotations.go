package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/hmmannot/internal/masterfile"
)

// GeneHit is one indexed annotation matched by gene name.
type GeneHit struct {
	Path      string
	Contig    string
	Kind      masterfile.Kind
	GeneName  string
	Direction string
	Start     int64 // 0 when the record has no start
	End       int64 // 0 when the record has no end
}

// WriteDocument replaces the indexed copy of the document identified by fp.
// fp.Hash must be set. Records without a handle are given one. The documents
// row is written last, so a failed write never looks indexed.
func (s *Store) WriteDocument(fp FileFingerprint, doc *masterfile.Document) error {
	if fp.Hash == "" {
		return errors.New("write document: fingerprint has no content hash")
	}
	if err := s.DeleteDocument(fp.Hash); err != nil {
		return err
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	for _, c := range doc.Contigs {
		c.AssignHandles()
	}

	if err := appendRows(conn, "contigs", func(a *goduckdb.Appender) error {
		for i, c := range doc.Contigs {
			if err := a.AppendRow(fp.Hash, int64(i), c.Name, c.NameComments,
				int64(c.GeneticCode), int64(c.SequenceLength)); err != nil {
				return fmt.Errorf("append contig: %w", err)
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if err := appendRows(conn, "annotations", func(a *goduckdb.Appender) error {
		for i, c := range doc.Contigs {
			for _, r := range c.Annotations {
				if err := a.AppendRow(
					fp.Hash, int64(i), c.Name, int64(r.ID),
					string(r.Kind), r.GeneName, r.Direction.String(), r.Point,
					r.Start.HasPos, int64(r.Start.Pos), r.End.HasPos, int64(r.End.Pos),
					r.Start.Line, r.End.Line,
				); err != nil {
					return fmt.Errorf("append annotation: %w", err)
				}
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if _, err := conn.ExecContext(context.Background(), `INSERT INTO documents VALUES (?, ?, ?, ?, ?, ?)`,
		fp.Hash, fp.Path, fp.Size, fp.ModTime,
		int64(len(doc.Contigs)), int64(doc.RecordCount())); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// appendRows batch-inserts into table using the Appender API.
func appendRows(conn *sql.Conn, table string, fill func(*goduckdb.Appender) error) error {
	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create %s appender: %w", table, err)
	}
	defer appender.Close()

	if err := fill(appender); err != nil {
		return err
	}
	return appender.Flush()
}

// DeleteDocument removes every row stored for hash.
func (s *Store) DeleteDocument(hash string) error {
	for _, table := range []string{"annotations", "contigs", "documents"} {
		if _, err := s.db.Exec("DELETE FROM "+table+" WHERE hash=?", hash); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// HasDocument reports whether content with the given hash is indexed.
func (s *Store) HasDocument(hash string) (bool, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT count(*) FROM documents WHERE hash=?`, hash).Scan(&n); err != nil {
		return false, fmt.Errorf("query document: %w", err)
	}
	return n > 0, nil
}

// Indexed returns the fingerprint last indexed for path.
func (s *Store) Indexed(path string) (FileFingerprint, bool, error) {
	fp := FileFingerprint{Path: path}
	err := s.db.QueryRow(`SELECT hash, size, mod_time FROM documents
		WHERE path=? ORDER BY mod_time DESC LIMIT 1`, path).
		Scan(&fp.Hash, &fp.Size, &fp.ModTime)
	if errors.Is(err, sql.ErrNoRows) {
		return FileFingerprint{}, false, nil
	}
	if err != nil {
		return FileFingerprint{}, false, fmt.Errorf("query indexed file: %w", err)
	}
	return fp, true, nil
}

// LookupGene returns every indexed annotation whose gene name matches name,
// ignoring case.
func (s *Store) LookupGene(name string) ([]GeneHit, error) {
	rows, err := s.db.Query(`SELECT
		d.path, a.contig, a.kind, a.gene_name, a.direction,
		a.has_start, a.start_pos, a.has_end, a.end_pos
		FROM annotations a JOIN documents d ON a.hash = d.hash
		WHERE lower(a.gene_name) = lower(?)
		ORDER BY d.path, a.contig_index, a.record_id`, name)
	if err != nil {
		return nil, fmt.Errorf("query by gene: %w", err)
	}
	defer rows.Close()

	var hits []GeneHit
	for rows.Next() {
		var h GeneHit
		var kind string
		var hasStart, hasEnd bool
		if err := rows.Scan(&h.Path, &h.Contig, &kind, &h.GeneName, &h.Direction,
			&hasStart, &h.Start, &hasEnd, &h.End); err != nil {
			return nil, fmt.Errorf("scan gene hit: %w", err)
		}
		h.Kind = masterfile.Kind(kind)
		if !hasStart {
			h.Start = 0
		}
		if !hasEnd {
			h.End = 0
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gene hits: %w", err)
	}
	return hits, nil
}

// CountByKind returns the number of indexed records per kind for one document.
func (s *Store) CountByKind(hash string) (map[masterfile.Kind]int, error) {
	rows, err := s.db.Query(`SELECT kind, count(*) FROM annotations
		WHERE hash=? GROUP BY kind`, hash)
	if err != nil {
		return nil, fmt.Errorf("count by kind: %w", err)
	}
	defer rows.Close()

	counts := make(map[masterfile.Kind]int)
	for rows.Next() {
		var kind string
		var n int64
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan kind count: %w", err)
		}
		counts[masterfile.Kind(kind)] = int(n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kind counts: %w", err)
	}
	return counts, nil
}
