package value

import (
	"bytes"
	"iter"
	"slices"
)

// Dictionary maps byte string keys to values. Entries are kept sorted by
// raw key bytes, so iteration always yields the canonical order.
type Dictionary struct {
	entries []entry
}

type entry struct {
	key   []byte
	value Value
}

func NewDictionary() *Dictionary {
	return &Dictionary{}
}

func (dictionary *Dictionary) search(key []byte) (int, bool) {
	return slices.BinarySearchFunc(dictionary.entries, key, func(e entry, key []byte) int {
		return bytes.Compare(e.key, key)
	})
}

// Set inserts or replaces the value under key and reports whether a
// previous value was replaced.
func (dictionary *Dictionary) Set(key []byte, value Value) bool {
	index, found := dictionary.search(key)
	if found {
		dictionary.entries[index].value = value
		return true
	}

	keyCopy := bytes.Clone(key)
	if keyCopy == nil {
		keyCopy = []byte{}
	}

	dictionary.entries = slices.Insert(dictionary.entries, index, entry{key: keyCopy, value: value})

	return false
}

func (dictionary *Dictionary) Get(key []byte) (Value, bool) {
	if dictionary == nil {
		return nil, false
	}

	index, found := dictionary.search(key)
	if !found {
		return nil, false
	}

	return dictionary.entries[index].value, true
}

func (dictionary *Dictionary) Has(key []byte) bool {
	_, found := dictionary.Get(key)
	return found
}

func (dictionary *Dictionary) Len() int {
	if dictionary == nil {
		return 0
	}

	return len(dictionary.entries)
}

// Keys returns the keys in ascending byte order.
func (dictionary *Dictionary) Keys() [][]byte {
	keys := make([][]byte, 0, dictionary.Len())
	for key := range dictionary.All() {
		keys = append(keys, key)
	}

	return keys
}

// All iterates over the entries in ascending key order. Keys must not be
// modified by the caller.
func (dictionary *Dictionary) All() iter.Seq2[[]byte, Value] {
	return func(yield func([]byte, Value) bool) {
		if dictionary == nil {
			return
		}

		for _, e := range dictionary.entries {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}
