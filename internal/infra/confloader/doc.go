// Package confloader loads layered configuration with koanf.
//
// A Loader merges sources in priority order, highest last:
//
//  1. Struct defaults already present on the target
//  2. A YAML configuration file
//  3. APIKEY_* environment variables
//  4. Literal maps (flag overrides)
//
// The merged tree unmarshals into structs via koanf tags.
package confloader
