// Package config provides configuration structures and utilities for
// linkvalidator. It defines the probe policy, content store, report
// rendering and server settings, and loads them from defaults, the
// .linkvalidator YAML file, the environment and CLI flags, in that order.
package config
