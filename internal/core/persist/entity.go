// Package persist implements the identity-preserving persistence layer for entities that are
// written to and read back from disk.
//
// Every entity is bound to one persistent path. Within a process, reading the same path twice
// yields the same live instance as long as the file on disk has not changed.
package persist

import (
	"github.com/vmihailenco/msgpack/v5"
	"go.trai.ch/cleardep/internal/core/domain"
)

// Entity is implemented by types embedding Base that define how their content is encoded.
type Entity interface {
	// Init resets the entity to its blank state.
	Init()
	// ReadEntity decodes the entity's content. Nested entities are loaded through l.
	ReadEntity(l *Loader, dec *msgpack.Decoder) error
	// WriteEntity encodes the entity's content.
	WriteEntity(enc *msgpack.Encoder) error

	base() *Base
}

// Base carries the persistent identity of an entity. It is meant to be embedded.
type Base struct {
	cache     *Cache
	stamper   domain.Stamper
	path      string
	stamp     domain.Stamp
	persisted bool
}

func (b *Base) base() *Base { return b }

// PersistentPath returns the path the entity is bound to.
func (b *Base) PersistentPath() string { return b.path }

// PersistentStamp returns the stamp of the persisted file recorded at the last read or write.
func (b *Base) PersistentStamp() domain.Stamp { return b.stamp }

// IsPersisted reports whether the entity was read from or written to its path.
func (b *Base) IsPersisted() bool { return b.persisted }

// Stamper returns the stamper the entity was created with.
func (b *Base) Stamper() domain.Stamper { return b.stamper }

// Cache returns the cache that owns the entity.
func (b *Base) Cache() *Cache { return b.cache }

// HasPersistentVersionChanged reports whether the file backing a persisted entity has a
// different stamp than the one recorded when it was last read or written.
func (b *Base) HasPersistentVersionChanged() bool {
	return b.persisted && b.path != "" && b.stamper.StampOf(b.path) != b.stamp
}

func (b *Base) bind(c *Cache, stamper domain.Stamper, path string) {
	b.cache = c
	b.stamper = stamper
	b.path = path
}

func (b *Base) markPersisted(path string) {
	b.path = path
	b.stamp = b.stamper.StampOf(path)
	b.persisted = true
}
