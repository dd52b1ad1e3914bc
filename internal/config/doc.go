// Package config defines the format-agnostic build manifest for the
// application, along with the Loader interface for reading it from a
// concrete configuration format.
//
// The `config.Manifest` is the single source of truth for the `pipeline`
// package. The HCL implementation lives in the `hcl` package.
package config
