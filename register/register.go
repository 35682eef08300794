package register

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gofrs/flock"
)

// ServeCommand is the subcommand the registered entry launches.
const ServeCommand = "serve"

const (
	projectConfigName = ".mcp.json"
	userConfigName    = ".claude.json"
)

// ErrUsage is returned when the register arguments are malformed.
var ErrUsage = errors.New("invalid register arguments")

type mcpServerEntry struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// request is a parsed "register" invocation.
type request struct {
	scope     string   // "project" or "user"
	directory string   // project directory, "." unless given
	serveArgs []string // flags forwarded to "storycheck serve"
}

// Run executes the register subcommand.
// serverName is the MCP server name (e.g. "storycheck").
// args is everything after "register".
func Run(serverName string, args []string, out io.Writer) error {
	req, err := parseArgs(args)
	if err != nil {
		printUsage(out)
		return err
	}

	binaryPath, err := executablePath()
	if err != nil {
		return err
	}

	configPath, err := req.configPath()
	if err != nil {
		return err
	}

	if err := writeConfig(configPath, serverName, buildEntry(binaryPath, req.serveArgs)); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(out, "Registered %q in %s (runs %s %s)\n", serverName, configPath, filepath.Base(binaryPath), ServeCommand)
	return nil
}

func printUsage(out io.Writer) {
	binaryName := filepath.Base(os.Args[0])
	fmt.Fprintf(out, "Usage:\n")
	fmt.Fprintf(out, "  %s register project [directory]            # writes <directory>/%s (default: .)\n", binaryName, projectConfigName)
	fmt.Fprintf(out, "  %s register user                           # writes ~/%s\n", binaryName, userConfigName)
	fmt.Fprintf(out, "  %s register project . -- --root web/src    # forward flags to %s\n", binaryName, ServeCommand)
	fmt.Fprintf(out, "  %s register user -- --skip-default-dirs    # forward flags to %s\n", binaryName, ServeCommand)
}

// DeriveServerName names the MCP entry after the binary, without a .exe or
// -mcp suffix. An unusable name falls back to "storycheck".
func DeriveServerName(binaryPath string) string {
	name := filepath.Base(binaryPath)
	name = strings.TrimSuffix(name, ".exe")
	name = strings.TrimSuffix(name, "-mcp")
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "storycheck"
	}
	return name
}

// parseArgs splits "project|user [directory] [-- serve flags]".
// Only the project scope takes a directory.
func parseArgs(args []string) (request, error) {
	if len(args) == 0 {
		return request{}, ErrUsage
	}

	req := request{scope: args[0], directory: "."}
	if req.scope != "project" && req.scope != "user" {
		return request{}, fmt.Errorf("%w: unknown scope %q (must be \"project\" or \"user\")", ErrUsage, req.scope)
	}

	rest := args[1:]
	var positional []string
	for i, arg := range rest {
		if arg == "--" {
			req.serveArgs = rest[i+1:]
			break
		}
		positional = append(positional, arg)
	}

	switch {
	case req.scope == "user" && len(positional) > 0:
		return request{}, fmt.Errorf("%w: user scope takes no directory, got %q", ErrUsage, positional[0])
	case len(positional) > 1:
		return request{}, fmt.Errorf("%w: unexpected argument %q", ErrUsage, positional[1])
	case len(positional) == 1:
		req.directory = positional[0]
	}
	return req, nil
}

// configPath is <directory>/.mcp.json for project scope and ~/.claude.json for user scope.
func (r request) configPath() (string, error) {
	if r.scope == "user" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locating home directory: %w", err)
		}
		return filepath.Join(home, userConfigName), nil
	}

	dir, err := filepath.Abs(r.directory)
	if err != nil {
		return "", fmt.Errorf("resolving project directory %s: %w", r.directory, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("project directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project directory %s is not a directory", dir)
	}
	return filepath.Join(dir, projectConfigName), nil
}

// executablePath returns the running binary with symlinks resolved, so the
// entry keeps working when the binary was started through a link.
func executablePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating storycheck binary: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolving storycheck binary %s: %w", exe, err)
	}
	return resolved, nil
}

// buildEntry launches "<binary> serve [serveArgs...]", wrapped in cmd /C on Windows.
func buildEntry(binaryPath string, serveArgs []string) mcpServerEntry {
	args := append([]string{ServeCommand}, serveArgs...)
	if runtime.GOOS == "windows" {
		return mcpServerEntry{
			Command: "cmd",
			Args:    append([]string{"/C", binaryPath}, args...),
		}
	}
	return mcpServerEntry{
		Command: binaryPath,
		Args:    args,
	}
}

// mergeEntry sets mcpServers[serverName] in an existing config document and
// keeps every other key. Empty input starts a new document.
func mergeEntry(data []byte, serverName string, entry mcpServerEntry) ([]byte, error) {
	doc := map[string]any{}
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing existing config: %w", err)
		}
	}

	servers := map[string]any{}
	if raw, ok := doc["mcpServers"]; ok && raw != nil {
		existing, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("mcpServers is %T, not an object", raw)
		}
		servers = existing
	}
	servers[serverName] = entry
	doc["mcpServers"] = servers

	output, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return append(output, '\n'), nil
}

// writeConfig merges entry into configPath while holding an exclusive lock
// on configPath + ".lock".
func writeConfig(configPath string, serverName string, entry mcpServerEntry) error {
	lock := flock.New(configPath + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking %s: %w", configPath, err)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(configPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", configPath, err)
	}

	output, err := mergeEntry(data, serverName, entry)
	if err != nil {
		return fmt.Errorf("%s: %w", configPath, err)
	}
	return replaceFile(configPath, output)
}

// replaceFile writes data to a temp file next to path and renames it over path.
func replaceFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".storycheck-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
