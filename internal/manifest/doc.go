// Package manifest models H5P library manifests (library.json): library
// identities, uber names, dependency lists, parsing and JSON Schema
// validation against the schema embedded from schema/library.schema.json.
package manifest
