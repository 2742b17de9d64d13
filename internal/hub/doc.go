// Package hub talks to the H5P Hub: it fetches and caches the content-type
// list, downloads .h5p packages and installs the libraries they contain into
// local storage. Session adapts all of this to mirror.Session.
package hub
