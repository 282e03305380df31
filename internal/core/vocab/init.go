// Package vocab registers the export vocabularies with the core registry.
// Import this package to make them available by key.
package vocab

// Each vocabulary file uses init() to register itself.
