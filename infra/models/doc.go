// Package models provides the built-in forecast model kinds. Importing it
// registers "linear", "forest" and "mlp" with the forecast package.
package models
