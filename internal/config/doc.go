// Package config defines the format-agnostic configuration model for the
// verifier: the program under analysis and the analysis options that tune
// exploration and refinement. It also declares the Loader interface.
//
// The `config.Model` is the single source of truth for the `cfa` builder and
// the `cegar` driver. Concrete loaders, such as the HCL one, live in separate
// packages.
package config
