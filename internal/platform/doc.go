// Package platform provides cross-platform filesystem helpers for files the
// mirror writes outside its working directory, such as registry credentials.
// On Windows, Unix permission bits are not applied.
package platform
