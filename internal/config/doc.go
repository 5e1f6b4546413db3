// Package config loads bookclub configuration.
//
// Sources are applied in order, each overriding the one before:
//
//  1. built-in defaults
//  2. the TOML file (~/.config/bookclub/config.toml unless a path is given)
//  3. a .env file in the working directory, read with godotenv
//  4. the process environment
//
// A missing TOML or .env file is not an error. The .env file is read into a
// map and never written into the process environment.
//
// Example config.toml:
//
//	ollama_url = "http://localhost:11434/api/generate"
//	ollama_model = "phi3:mini"
//	open_library_url = "https://openlibrary.org"
//	search_limit = 20
//	description_workers = 4
//	theme = "Paper"
//	log_dir = "~/.local/state/bookclub"
//
// Matching environment variables are OLLAMA_URL, OLLAMA_MODEL,
// OPEN_LIBRARY_URL, BOOKCLUB_SEARCH_LIMIT, BOOKCLUB_DESCRIPTION_WORKERS,
// BOOKCLUB_THEME, and BOOKCLUB_LOG_DIR. Paths expand a leading "~".
package config
