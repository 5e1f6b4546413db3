package diag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/five82/bookclub/internal/config"
	"github.com/five82/bookclub/internal/httpx"
	"github.com/five82/bookclub/internal/library"
	"github.com/five82/bookclub/internal/ollama"
)

// TestPrompt is the generation smoke-test prompt.
const TestPrompt = "Hello, this is a test. Respond with 'Test successful!'"

// Check names, in the order Run reports them.
const (
	CheckEnvFile      = "Environment File"
	CheckConfig       = "Configuration"
	CheckInstallation = "Ollama Installation"
	CheckModels       = "Ollama Models"
	CheckService      = "Ollama Service"
	CheckLibrary      = "Open Library API"
	CheckGeneration   = "Ollama Model Test"
)

// ModelServer is the part of *ollama.Client the checks use.
type ModelServer interface {
	Model() string
	Tags(ctx context.Context) ([]ollama.Model, error)
	Generate(ctx context.Context, prompt string) (string, error)
}

// MetadataService is the part of *library.Client the checks use.
type MetadataService interface {
	BaseURL() string
	Ping(ctx context.Context) error
}

// Options wires the checks to their dependencies.
type Options struct {
	EnvFile   string
	Config    config.Config
	ConfigErr error
	Runner    Runner
	Server    ModelServer
	Library   MetadataService
}

// Run executes every check. The generation test only runs when the service
// check passed.
func Run(ctx context.Context, opts Options) Report {
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	model := opts.Config.OllamaModel
	if opts.Server != nil {
		model = opts.Server.Model()
	}

	checks := []Check{
		checkEnvFile(opts.EnvFile),
		checkConfig(opts.Config, opts.ConfigErr),
		checkInstallation(ctx, opts.Runner),
		checkModels(ctx, opts.Runner, model),
		checkService(ctx, opts.Server),
		checkLibrary(ctx, opts.Library),
	}
	if checks[4].Status == StatusPass {
		checks = append(checks, checkGeneration(ctx, opts.Server, TestPrompt))
	}
	return Report{Checks: checks, Model: model}
}

// Quick runs only a short generation request and returns its outcome with
// the start of the reply.
func Quick(ctx context.Context, server ModelServer) Check {
	if server == nil {
		return fail(CheckGeneration, "no model server configured")
	}
	reply, err := server.Generate(ctx, "Hello")
	if err != nil {
		return fail(CheckGeneration, generationError(err))
	}
	return pass(CheckGeneration, "Response: "+truncate(reply, 100))
}

func checkEnvFile(path string) Check {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return warn(CheckEnvFile, fmt.Sprintf("%s not found; defaults and the process environment apply", path))
		}
		return fail(CheckEnvFile, fmt.Sprintf("cannot read %s: %v", path, err))
	}
	return pass(CheckEnvFile, path+" exists")
}

func checkConfig(cfg config.Config, err error) Check {
	if err != nil {
		return fail(CheckConfig, err.Error())
	}
	return pass(CheckConfig, fmt.Sprintf("%s=%s, %s=%s", config.EnvOllamaModel, cfg.OllamaModel, config.EnvOllamaURL, cfg.OllamaURL))
}

func checkInstallation(ctx context.Context, runner Runner) Check {
	out, err := runner.Run(ctx, "ollama", "--version")
	switch {
	case err == nil:
		return pass(CheckInstallation, "Version: "+firstLine(out))
	case errors.Is(err, exec.ErrNotFound):
		return fail(CheckInstallation, "Ollama not found in PATH. Install from https://ollama.ai")
	case errors.Is(err, context.DeadlineExceeded):
		return fail(CheckInstallation, "Command timed out")
	default:
		return fail(CheckInstallation, "Ollama command failed")
	}
}

func checkModels(ctx context.Context, runner Runner, model string) Check {
	name := model + " Model"
	out, err := runner.Run(ctx, "ollama", "list")
	if err != nil {
		return fail(CheckModels, "Could not list models")
	}
	if listed(out, model) {
		return pass(CheckModels, name+" available")
	}
	return fail(CheckModels, "Run: ollama pull "+model)
}

// listed reports whether `ollama list` output names model or its family.
func listed(out, model string) bool {
	out = strings.ToLower(out)
	model = strings.ToLower(strings.TrimSpace(model))
	if model == "" {
		return false
	}
	if strings.Contains(out, model) {
		return true
	}
	family, _, _ := strings.Cut(model, ":")
	return strings.Contains(out, family)
}

func checkService(ctx context.Context, server ModelServer) Check {
	if server == nil {
		return fail(CheckService, "no model server configured")
	}
	_, err := server.Tags(ctx)
	var se *ollama.StatusError
	switch {
	case err == nil:
		return pass(CheckService, "Service is running and responding")
	case httpx.IsConnectionRefused(err):
		return fail(CheckService, "Service not running. Run: ollama serve")
	case httpx.IsTimeout(err):
		return fail(CheckService, "Service timeout")
	case errors.As(err, &se):
		return fail(CheckService, fmt.Sprintf("Service returned status %d", se.Code))
	default:
		return fail(CheckService, "Error: "+err.Error())
	}
}

func checkLibrary(ctx context.Context, books MetadataService) Check {
	if books == nil {
		return fail(CheckLibrary, "no metadata client configured")
	}
	err := books.Ping(ctx)
	var nb *library.NoBooksError
	switch {
	case err == nil:
		return pass(CheckLibrary, "API responding at "+books.BaseURL())
	case errors.As(err, &nb):
		return fail(CheckLibrary, "API responding but returned no results")
	default:
		return fail(CheckLibrary, "Error: "+err.Error())
	}
}

func checkGeneration(ctx context.Context, server ModelServer, prompt string) Check {
	if _, err := server.Generate(ctx, prompt); err != nil {
		return fail(CheckGeneration, generationError(err))
	}
	return pass(CheckGeneration, "Model can generate responses")
}

func generationError(err error) string {
	var se *ollama.StatusError
	var te *ollama.TimeoutError
	switch {
	case errors.Is(err, ollama.ErrEmptyResponse):
		return "No response in model output"
	case errors.Is(err, ollama.ErrConnectionRefused):
		return "Cannot connect to Ollama. Make sure 'ollama serve' is running"
	case errors.As(err, &te):
		return fmt.Sprintf("Ollama timed out after %d seconds. Try restarting the Ollama service", int(te.After.Seconds()))
	case errors.As(err, &se):
		return fmt.Sprintf("API returned status %d", se.Code)
	default:
		return "Error: " + err.Error()
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
