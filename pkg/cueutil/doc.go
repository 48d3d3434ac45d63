// SPDX-License-Identifier: MPL-2.0

// Package cueutil holds the CUE parsing flow shared by the configuration file
// and the workcache database:
//
//  1. Compile the embedded schema
//  2. Compile the document and unify it with the schema definition
//  3. Validate and decode into a Go value
//
// Errors carry the file name and a JSON-style path to the offending field.
//
//	//go:embed database_schema.cue
//	var schema []byte
//
//	res, err := cueutil.ParseAndDecode[document](schema, data, "#Database",
//	    cueutil.WithFilename(path))
package cueutil
