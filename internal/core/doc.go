// Package core provides the business logic for the parts inventory.
//
// It owns the data normalization and serialization subsystem and is
// independent of any transport. The web server and the CLI both drive it
// through [Service].
//
// # Import Pipeline
//
// An import turns heterogeneous files into one canonical record set:
//
//  1. [ReadSource] reads the body under a size limit, drops a UTF-8 BOM and
//     decodes non-UTF-8 input as Windows-1252.
//  2. [DetectFormat] routes the bytes to JSON or delimited text.
//  3. Delimited text: [DetectDelimiter] picks ',' ';' or tab from the first
//     line and [ParseTabular] splits rows with RFC-4180-style quoting.
//  4. Headers and object keys are matched through the alias table, case and
//     accent insensitive, so "Quantità", "qty" and "Menge" all land on
//     quantity.
//  5. Field coercion never fails: missing text becomes "", quantities that do
//     not parse become 0 and missing ids are minted.
//
// Import replaces the inventory by default; [ImportMerge] upserts by id.
//
// # Export
//
// [EncodeCSV] writes the fixed canonical header and quotes only when needed.
// [EncodeJSON] writes an indented array whose keys come from a registered
// [Vocabulary]; the vocab subpackage adds Italian and German key sets.
//
// # Error Handling
//
// Technical errors are mapped to coded user messages with [MapError]:
//
//   - JSON001-JSON002: malformed or wrongly shaped JSON
//   - FILE001-FILE003: size, read and missing-file errors
//   - VAL001-VAL002: edit validation
//   - REC001, IMP001-IMP002, VOC001, STO001: lookup, import, export, storage
package core
