// Package storage reads and writes the JSON and YAML data files that feed the
// calculation pipeline. CUE files are read but never written.
//
// Files are addressed by dotted key: "crane.initial" resolves to
// <base>/crane/initial.json, .yaml, .yml or .cue, tried in that order. Every
// format is decoded through its JSON form, so struct json tags drive YAML and
// CUE files as well.
package storage
