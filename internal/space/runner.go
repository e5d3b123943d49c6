// Package space invokes the external agent-swarm system. Everything behind
// this boundary (the ledger schema, the provisioning behavior, the swarm
// itself) is opaque to the gateway; stdout is passed through untouched.
package space

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	provisionTimeout = 2 * time.Minute
	queryTimeout     = 15 * time.Second
)

// Runner shells out to the external system's entrypoints under binDir.
type Runner struct {
	binDir string
}

// NewRunner creates a Runner for the entrypoints in binDir.
func NewRunner(binDir string) *Runner {
	return &Runner{binDir: binDir}
}

// Provision creates a customer project in the external system and returns
// the new project id printed on stdout.
func (r *Runner) Provision(ctx context.Context, name, repoPath, githubLogin, repoURL, template string) (string, error) {
	out, err := r.run(ctx, provisionTimeout, "provision.py", name, repoPath, githubLogin, repoURL, template)
	if err != nil {
		return "", errors.Wrap(err, "provision failed")
	}
	projectID := strings.TrimSpace(string(out))
	if projectID == "" {
		return "", errors.New("provision returned no project id")
	}
	return projectID, nil
}

// Ledger fetches the project's ledger items as the JSON array the external
// system emits.
func (r *Runner) Ledger(ctx context.Context, projectID string, limit int) (json.RawMessage, error) {
	out, err := r.run(ctx, queryTimeout, "ledger.py", projectID, strconv.Itoa(limit))
	if err != nil {
		return nil, errors.Wrap(err, "ledger query failed")
	}
	trimmed := bytes.TrimSpace(out)
	if !json.Valid(trimmed) {
		return nil, errors.New("ledger returned invalid JSON")
	}
	return json.RawMessage(trimmed), nil
}

// CloseTask marks a ledger task done.
func (r *Runner) CloseTask(ctx context.Context, taskID string) error {
	_, err := r.run(ctx, queryTimeout, "close_task.py", taskID)
	return errors.Wrap(err, "close task failed")
}

func (r *Runner) run(ctx context.Context, timeout time.Duration, script string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, filepath.Join(r.binDir, script), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, errors.Wrapf(err, "%s: %s", script, msg)
		}
		return nil, errors.Wrapf(err, "%s", script)
	}
	return stdout.Bytes(), nil
}
