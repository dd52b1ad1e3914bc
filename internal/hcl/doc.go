// Package hcl provides the concrete HCL implementation of the config.Loader
// interface. It is responsible for finding and parsing manifest files,
// evaluating their expressions against the process environment, and
// translating the decoded blocks into the format-agnostic config.Manifest.
package hcl
