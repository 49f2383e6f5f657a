package persist

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
	"go.trai.ch/cleardep/internal/core/domain"
	"go.trai.ch/zerr"
)

// FormatVersion is written in front of every persisted entity. Files with another version are
// treated as unreadable.
const FormatVersion uint16 = 1

// Loader is a load session. Entities decoded during one session are published to the cache
// together once the outermost entity has been decoded, which allows entities to refer to each
// other cyclically.
type Loader struct {
	cache   *Cache
	stamper domain.Stamper
	pending map[string]any
	publish []func()
}

// Stamper returns the stamper of the session.
func (l *Loader) Stamper() domain.Stamper { return l.stamper }

// Create returns the entity at path, re-initialized, or a new blank entity bound to path when
// nothing readable is stored there. Read failures are never reported.
func Create[E any, P interface {
	*E
	Entity
}](c *Cache, stamper domain.Stamper, path string) P {
	e, err := Read[E, P](c, stamper, path)
	if err != nil {
		e = blank[E, P](c, path)
	}
	if e == nil {
		e = P(new(E))
		e.base().bind(c, stamper, path)
		store(c, path, (*E)(e))
	}
	e.Init()
	return e
}

// Read returns the live entity for path if its file has not changed, or decodes it from disk.
// It returns an error wrapping domain.ErrEntityNotFound when the file does not exist, even if a
// blank entity created for path is live.
func Read[E any, P interface {
	*E
	Entity
}](c *Cache, stamper domain.Stamper, path string) (P, error) {
	if e := fresh[E, P](c, path); e != nil {
		return e, nil
	}

	v, err, _ := c.loads.Do(path, func() (any, error) {
		c.loadMu.Lock()
		defer c.loadMu.Unlock()

		l := &Loader{cache: c, stamper: stamper, pending: make(map[string]any)}
		e, err := Load[E, P](l, path)
		if err != nil {
			return nil, err
		}
		for _, publish := range l.publish {
			publish()
		}
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	e, ok := v.(P)
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrEntityTypeMismatch, "concurrent read"), "path", path)
	}
	return e, nil
}

// Load resolves path within the session l. Entities already decoded in the session are
// returned as is.
func Load[E any, P interface {
	*E
	Entity
}](l *Loader, path string) (P, error) {
	if pending, ok := l.pending[path]; ok {
		e, ok := pending.(P)
		if !ok {
			return nil, zerr.With(zerr.Wrap(domain.ErrEntityTypeMismatch, "load"), "path", path)
		}
		return e, nil
	}
	if e := fresh[E, P](l.cache, path); e != nil {
		return e, nil
	}

	f, err := os.Open(path) //nolint:gosec // path is a persistent path chosen by the caller
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrEntityNotFound, "load"), "path", path)
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to open persisted entity"), "path", path)
	}
	defer func() {
		_ = f.Close()
	}()

	dec := msgpack.NewDecoder(bufio.NewReader(f))
	version, err := dec.DecodeUint16()
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to decode format version"), "path", path)
	}
	if version != FormatVersion {
		err = zerr.With(zerr.Wrap(domain.ErrSchemaMismatch, "load"), "path", path)
		return nil, zerr.With(err, "version", version)
	}

	e := P(new(E))
	e.base().bind(l.cache, l.stamper, path)
	l.pending[path] = e
	l.publish = append(l.publish, func() { store(l.cache, path, (*E)(e)) })

	if err := e.ReadEntity(l, dec); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to decode persisted entity"), "path", path)
	}
	e.base().markPersisted(path)
	return e, nil
}

// Write persists e at path. The entity is cached under path before the file is written, then
// the file is replaced atomically and the resulting stamp is recorded.
func Write[E any, P interface {
	*E
	Entity
}](e P, path string) error {
	b := e.base()
	if b.cache == nil {
		b.cache = Default
	}
	b.path = path
	store(b.cache, path, (*E)(e))

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", dir)
	}
	f, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create temp file"), "path", dir)
	}
	tmp := f.Name()
	defer func() {
		_ = os.Remove(tmp)
	}()

	w := bufio.NewWriter(f)
	enc := msgpack.NewEncoder(w)
	if err := enc.EncodeUint16(FormatVersion); err != nil {
		_ = f.Close()
		return zerr.With(zerr.Wrap(err, "failed to encode format version"), "path", path)
	}
	if err := e.WriteEntity(enc); err != nil {
		_ = f.Close()
		return zerr.With(zerr.Wrap(err, "failed to encode entity"), "path", path)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return zerr.With(zerr.Wrap(err, "failed to flush entity"), "path", path)
	}
	if err := f.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to close temp file"), "path", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to replace persisted entity"), "path", path)
	}

	b.markPersisted(path)
	return nil
}

func fresh[E any, P interface {
	*E
	Entity
}](c *Cache, path string) P {
	cached := lookup[E](c, path)
	if cached == nil {
		return nil
	}
	e := P(cached)
	if !e.base().IsPersisted() || e.base().HasPersistentVersionChanged() {
		return nil
	}
	return e
}

// blank returns the live entity created for path that was never read or written.
func blank[E any, P interface {
	*E
	Entity
}](c *Cache, path string) P {
	cached := lookup[E](c, path)
	if cached == nil {
		return nil
	}
	e := P(cached)
	if e.base().IsPersisted() {
		return nil
	}
	return e
}
