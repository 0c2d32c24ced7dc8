// Package confload loads a goSession.Config from a YAML file, the environment and
// explicit overrides, in increasing order of precedence, on top of
// goSession.DefaultConfig.
//
// Environment variables use the GOSESSION_ prefix followed by the section and the
// key, for example GOSESSION_PERSISTENCE_MAX_SNAPSHOT_BYTES=2048.
package confload
