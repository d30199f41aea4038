// Package hcl provides the concrete HCL implementation of config.Loader.
// It is responsible for file discovery, parsing, and the translation of the
// gohcl schema into the format-agnostic program and analysis model.
package hcl
