// Package config loads mirror settings from the environment, .env files and
// an optional ~/.h5pmirror/config.yaml. The registry credentials are read
// from the same unprefixed variables the mirror has always used
// (NPM_AUTH_TOKEN, NPM_USER, DRY_RUN); everything else is namespaced under
// the H5PMIRROR_ prefix.
package config
