// Package registry is the npm side of the mirror. It translates H5P library
// manifests into package.json descriptors, writes the registry credentials
// file and publishes package directories with the npm CLI.
package registry
