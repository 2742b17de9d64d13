// Package cli defines the Cobra command tree for the h5pmirror CLI. Each file
// registers one top-level command with the root command. Commands build the
// concrete hub, storage and npm adapters from the loaded settings and
// delegate the work to internal packages.
package cli
