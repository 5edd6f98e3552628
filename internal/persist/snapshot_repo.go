package persist

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/embergo/ember/internal/core/ecs"
)

// SnapshotRepo stores scene snapshots. A snapshot identical to the latest
// one stored for its scene is skipped.
type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Digest is a blake2b-256 hash over the snapshot's actors and their
// components, in order. Scene and frame are not part of it.
func Digest(s ecs.Snapshot) [blake2b.Size256]byte {
	h, _ := blake2b.New256(nil) // only fails for keys over 64 bytes
	var n [8]byte
	writeString := func(v string) {
		binary.LittleEndian.PutUint64(n[:], uint64(len(v)))
		h.Write(n[:])
		h.Write([]byte(v))
	}
	for _, a := range s.Actors {
		binary.LittleEndian.PutUint64(n[:], uint64(a.ID))
		h.Write(n[:])
		writeString(a.Name)
		binary.LittleEndian.PutUint64(n[:], uint64(len(a.Components)))
		h.Write(n[:])
		for _, c := range a.Components {
			writeString(c.Key)
			writeString(c.Type)
		}
	}
	var out [blake2b.Size256]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Save writes s unless it matches the latest snapshot of the same scene.
// It reports whether a row was written.
func (r *SnapshotRepo) Save(ctx context.Context, s ecs.Snapshot) (bool, error) {
	digest := Digest(s)

	var latest []byte
	err := r.db.Pool.QueryRow(ctx,
		`SELECT digest FROM scene_snapshots WHERE scene = $1 ORDER BY id DESC LIMIT 1`,
		s.Scene,
	).Scan(&latest)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("snapshot latest: %w", err)
	}
	if bytes.Equal(latest, digest[:]) {
		return false, nil
	}

	err = r.db.InTx(ctx, func(tx pgx.Tx) error {
		var id int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO scene_snapshots (scene, frame, digest, actor_count)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			s.Scene, int64(s.Frame), digest[:], len(s.Actors),
		).Scan(&id); err != nil {
			return fmt.Errorf("snapshot insert: %w", err)
		}
		for i, a := range s.Actors {
			comps := a.Components
			if comps == nil {
				comps = []ecs.ComponentSnapshot{}
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO snapshot_actors (snapshot_id, position, actor_id, name, components)
				 VALUES ($1, $2, $3, $4, $5)`,
				id, i, int64(a.ID), a.Name, comps,
			); err != nil {
				return fmt.Errorf("snapshot actor insert: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("save snapshot %s: %w", s.Scene, err)
	}
	return true, nil
}

// SaveSnapshot satisfies the world's snapshot sink.
func (r *SnapshotRepo) SaveSnapshot(ctx context.Context, s ecs.Snapshot) error {
	saved, err := r.Save(ctx, s)
	if err != nil {
		return err
	}
	r.db.log.Debug("scene snapshot",
		zap.String("scene", s.Scene),
		zap.Uint64("frame", s.Frame),
		zap.Int("actors", len(s.Actors)),
		zap.Bool("saved", saved),
	)
	return nil
}
