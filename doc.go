// Package conf implements a hierarchical key/value configuration store.
//
// Variables are addressed by fully qualified dotted names ("ui.theme.color")
// resolved against a tree of sections. The Configuration facade provides
// string and typed access to variables, fires change notifications through
// the notify package, and serializes the tree through the Builder protocol,
// which decouples the tree representation from any concrete wire format.
//
// A built-in XML format is used when no reader or writer factory is
// configured; the format package provides TOML and YAML implementations.
package conf
