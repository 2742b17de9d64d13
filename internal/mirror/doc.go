// Package mirror drives the discover → install → publish loop that copies
// H5P Hub content types into the npm registry.
//
// The loop only talks to narrow capabilities (Session, Storage, Publisher,
// CredentialWriter) so it can run against fakes; the concrete hub, storage
// and npm adapters live in their own packages.
package mirror
