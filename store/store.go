// Package store keeps a SQLite log of packets heard by the monitor.
// Each process run is a session with its own ID so that flights can be
// told apart in one database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"downlink/packet"
)

const schema = `
	CREATE TABLE IF NOT EXISTS packets (
		packet_id         INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id        TEXT NOT NULL,
		received_ns       BIGINT NOT NULL,
		heard_from        TEXT,
		callsign          TEXT NOT NULL,
		seq               INTEGER NOT NULL,
		source            TEXT NOT NULL,
		blocks            INTEGER NOT NULL,
		raw               BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_packets_session ON packets (session_id, packet_id);
`

// Record is one stored packet.
type Record struct {
	ID         int64
	Session    string
	ReceivedAt time.Time
	From       string // AX.25 source, if any
	Callsign   string
	Seq        uint16
	Source     string
	Blocks     int
	Raw        []byte
}

// Store appends received packets to a database.
type Store struct {
	db      *sql.DB
	session string
}

// Open opens or creates the database at path and starts a new session.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer; avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, session: uuid.New().String()}, nil
}

// Session returns the ID that Insert tags packets with.
func (s *Store) Session() string { return s.session }

// Insert stores a decoded packet and returns its row ID. raw is copied.
func (s *Store) Insert(ctx context.Context, at time.Time, from string, p *packet.Packet, raw []byte) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO packets (
			session_id, received_ns, heard_from, callsign,
			seq, source, blocks, raw
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.session,
		at.UnixNano(),
		from,
		p.Callsign(),
		int(p.Seq()),
		p.Header.Source().String(),
		len(p.Blocks),
		append([]byte(nil), raw...),
	)
	if err != nil {
		return 0, fmt.Errorf("insert packet: %w", err)
	}
	return res.LastInsertId()
}

// ListBySession returns the packets of one session in arrival order.
func (s *Store) ListBySession(ctx context.Context, session string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT packet_id, session_id, received_ns, heard_from, callsign,
		       seq, source, blocks, raw
		FROM packets
		WHERE session_id = ?
		ORDER BY packet_id
	`, session)
	if err != nil {
		return nil, fmt.Errorf("list packets: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r    Record
			ns   int64
			from sql.NullString
			seq  int
		)
		if err := rows.Scan(&r.ID, &r.Session, &ns, &from, &r.Callsign, &seq, &r.Source, &r.Blocks, &r.Raw); err != nil {
			return nil, fmt.Errorf("scan packet: %w", err)
		}
		r.ReceivedAt = time.Unix(0, ns)
		r.From = from.String
		r.Seq = uint16(seq)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Sessions lists every session ID, oldest first.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id FROM packets
		GROUP BY session_id
		ORDER BY MIN(packet_id)
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
