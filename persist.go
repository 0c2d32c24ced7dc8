package goSession

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goSession/snapshot"
	"github.com/MrEthical07/goSession/storage"
)

type loadOutcome int

const (
	loadMiss loadOutcome = iota
	loadHit
	loadCorrupt
	loadUnavailable
)

// persister is the only code that talks to the storage adapter.
type persister struct {
	adapter storage.Adapter
	cfg     PersistenceConfig
}

func newPersister(adapter storage.Adapter, cfg PersistenceConfig) *persister {
	return &persister{adapter: adapter, cfg: cfg}
}

func (p *persister) options() storage.SetOptions {
	return storage.SetOptions{
		TTL:      p.cfg.Expiration,
		Path:     p.cfg.Path,
		Domain:   p.cfg.Domain,
		Secure:   p.cfg.Secure,
		HTTPOnly: p.cfg.HTTPOnly,
		SameSite: p.cfg.SameSite,
	}
}

// load reads the snapshot. Any outcome other than loadHit yields the zero State.
func (p *persister) load(ctx context.Context) (State, loadOutcome, error) {
	data, err := p.adapter.Get(ctx, p.cfg.Key)
	if errors.Is(err, storage.ErrNotFound) {
		return State{}, loadMiss, nil
	}
	if errors.Is(err, storage.ErrCorrupt) {
		return State{}, loadCorrupt, err
	}
	if err != nil {
		return State{}, loadUnavailable, err
	}

	st, err := snapshot.Decode(data)
	if errors.Is(err, snapshot.ErrEmpty) {
		return State{}, loadMiss, nil
	}
	if err != nil {
		return State{}, loadCorrupt, err
	}
	return st, loadHit, nil
}

func (p *persister) save(ctx context.Context, st State) error {
	data, err := snapshot.Encode(st)
	if err != nil {
		return err
	}
	if len(data) > p.cfg.MaxSnapshotBytes {
		return fmt.Errorf("%w: %d > %d bytes", ErrSnapshotTooLarge, len(data), p.cfg.MaxSnapshotBytes)
	}
	return p.adapter.Set(ctx, p.cfg.Key, data, p.options())
}

func (p *persister) clear(ctx context.Context) error {
	return p.adapter.Remove(ctx, p.cfg.Key)
}
