// Package diag runs the setup checks behind the bookcheck command: the .env
// file, configuration, the ollama binary and model, the model server, the
// Open Library API, and a generation smoke test.
package diag
