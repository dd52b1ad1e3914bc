// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the build lifecycle (load the manifest,
// resolve the toolchain, run the pipeline, optionally watch for changes),
// decoupled from any specific entrypoint like a CLI.
package app
