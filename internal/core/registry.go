package core

import (
	"fmt"
	"sort"
	"sync"
)

// CanonicalVocabulary is the key of the built-in vocabulary that uses the
// canonical field names.
const CanonicalVocabulary = "canonical"

// Vocabulary names the exported JSON keys for each canonical field.
type Vocabulary struct {
	Key   string           // Unique identifier: "it"
	Label string           // Display name: "Italiano"
	Keys  map[Field]string // Exported key per field; missing fields use the canonical name
}

// KeyFor returns the exported key for a field.
func (v Vocabulary) KeyFor(f Field) string {
	if k, ok := v.Keys[f]; ok && k != "" {
		return k
	}
	return string(f)
}

var (
	vocabularies = map[string]Vocabulary{
		CanonicalVocabulary: {Key: CanonicalVocabulary, Label: "Canonical"},
	}
	vocabulariesMu sync.RWMutex
)

// RegisterVocabulary adds a vocabulary to the registry.
// Panics if a vocabulary with the same key is already registered.
func RegisterVocabulary(v Vocabulary) {
	vocabulariesMu.Lock()
	defer vocabulariesMu.Unlock()

	if _, exists := vocabularies[v.Key]; exists {
		panic(fmt.Sprintf("vocabulary already registered: %s", v.Key))
	}
	vocabularies[v.Key] = v
}

// GetVocabulary returns a vocabulary by key. An empty key selects the
// canonical vocabulary.
func GetVocabulary(key string) (Vocabulary, bool) {
	if key == "" {
		key = CanonicalVocabulary
	}

	vocabulariesMu.RLock()
	defer vocabulariesMu.RUnlock()

	v, ok := vocabularies[key]
	return v, ok
}

// Vocabularies returns all registered vocabularies sorted by key, with the
// canonical vocabulary first.
func Vocabularies() []Vocabulary {
	vocabulariesMu.RLock()
	defer vocabulariesMu.RUnlock()

	result := make([]Vocabulary, 0, len(vocabularies))
	for _, v := range vocabularies {
		result = append(result, v)
	}

	sort.Slice(result, func(i, j int) bool {
		if (result[i].Key == CanonicalVocabulary) != (result[j].Key == CanonicalVocabulary) {
			return result[i].Key == CanonicalVocabulary
		}
		return result[i].Key < result[j].Key
	})

	return result
}
