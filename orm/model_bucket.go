package orm

import (
	"bytes"
	"reflect"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/codec"
	"github.com/iov-one/mig/errors"
)

// ModelBucket is implemented by buckets that operates on Models rather than
// Objects.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	// If given model type cannot be used to contain stored entity,
	// ErrInvalidType is returned.
	One(db mig.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given primary key value exists. It
	// returns ErrNotFound if no entity can be found.
	Has(db mig.ReadOnlyKVStore, key []byte) error

	// Put saves given model in the database. Before inserting into
	// database, model is validated using its Validate method.
	// If the key is nil or zero length then a sequence generator is used
	// to create a unique key value.
	// Using a key that already exists in the database cause the value to
	// be overwritten.
	Put(db mig.KVStore, key []byte, m Model) ([]byte, error)

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db mig.KVStore, key []byte) error

	// PrefixScan returns an iterator over all models with a primary key
	// starting with given prefix.
	PrefixScan(db mig.ReadOnlyKVStore, prefix []byte, reverse bool) (ModelIterator, error)

	// Bucket returns the raw bucket this model bucket writes to.
	Bucket() Bucket
}

// ModelIterator loads models from a bucket one at a time.
type ModelIterator interface {
	// LoadNext loads the next model into dest and returns its primary
	// key. It returns ErrIteratorDone when there are no more models.
	LoadNext(dest Model) ([]byte, error)

	// Release releases the Iterator.
	Release()
}

// NewModelBucket returns a ModelBucket instance. Given model instance is
// used to check the type of every model stored or loaded.
func NewModelBucket(name string, m Model, opts ...ModelBucketOption) ModelBucket {
	b := NewBucket(name)
	mb := &modelBucket{
		b:     b,
		idSeq: b.Sequence(SeqID),
		model: reflect.TypeOf(m),
	}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

// ModelBucketOption is implemented by any function that can configure
// ModelBucket during creation.
type ModelBucketOption func(mb *modelBucket)

// WithIDSequence configures the bucket to use the given sequence instance
// for generating ID.
func WithIDSequence(s Sequence) ModelBucketOption {
	return func(mb *modelBucket) {
		mb.idSeq = s
	}
}

type modelBucket struct {
	b     Bucket
	idSeq Sequence
	model reflect.Type
}

func (mb *modelBucket) One(db mig.ReadOnlyKVStore, key []byte, dest Model) error {
	if err := mb.checkType(dest); err != nil {
		return err
	}
	raw, err := db.Get(mb.b.DBKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot get from the database")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	if err := codec.Unmarshal(raw, dest); err != nil {
		return errors.Wrapf(err, "cannot unmarshal %T", dest)
	}
	return nil
}

func (mb *modelBucket) Has(db mig.ReadOnlyKVStore, key []byte) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrNotFound, "empty key")
	}
	ok, err := db.Has(mb.b.DBKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot query the database")
	}
	if !ok {
		return errors.ErrNotFound
	}
	return nil
}

func (mb *modelBucket) Put(db mig.KVStore, key []byte, m Model) ([]byte, error) {
	if err := mb.checkType(m); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model")
	}
	if len(key) == 0 {
		var err error
		key, err = mb.idSeq.NextVal(db)
		if err != nil {
			return nil, errors.Wrap(err, "ID sequence")
		}
	}
	raw, err := codec.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "cannot serialize model")
	}
	if err := db.Set(mb.b.DBKey(key), raw); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return key, nil
}

func (mb *modelBucket) Delete(db mig.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	if err := db.Delete(mb.b.DBKey(key)); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

func (mb *modelBucket) PrefixScan(db mig.ReadOnlyKVStore, prefix []byte, reverse bool) (ModelIterator, error) {
	it, err := mb.b.Scan(db, prefix, reverse)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create iterator")
	}
	return &modelIterator{it: it, prefix: mb.b.DBKey(nil), mb: mb}, nil
}

func (mb *modelBucket) Bucket() Bucket {
	return mb.b
}

func (mb *modelBucket) checkType(m Model) error {
	if t := reflect.TypeOf(m); t != mb.model {
		return errors.Wrapf(errors.ErrInvalidType, "%s cannot be stored in %s bucket", t, mb.b.name)
	}
	return nil
}

var _ ModelBucket = (*modelBucket)(nil)

type modelIterator struct {
	it     mig.Iterator
	prefix []byte
	mb     *modelBucket
}

func (i *modelIterator) LoadNext(dest Model) ([]byte, error) {
	if err := i.mb.checkType(dest); err != nil {
		return nil, err
	}
	key, value, err := i.it.Next()
	if err != nil {
		return nil, err
	}
	// since we use raw kvstore here, we must remove the bucket prefix manually
	if !bytes.HasPrefix(key, i.prefix) {
		return nil, errors.Wrapf(errors.ErrDatabase, "key with unexpected prefix: %X", key)
	}
	if err := codec.Unmarshal(value, dest); err != nil {
		return nil, errors.Wrapf(err, "unmarshaling into %T", dest)
	}
	return key[len(i.prefix):], nil
}

func (i *modelIterator) Release() {
	i.it.Release()
}
