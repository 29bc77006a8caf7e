// Package tokenstore persists the Spotify refresh token between runs.
//
// The only backend is [FileStore]: a single JSON document of the form
//
//	{"refresh_token": "<token>"}
//
// written atomically (temp file + rename) with 0600 permissions. A missing file
// means no token has been stored yet and is not an error. A file that exists but
// cannot be read or decoded is.
package tokenstore
