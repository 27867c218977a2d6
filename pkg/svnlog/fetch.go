package svnlog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/Sumatoshi-tech/revstats/pkg/revision"
)

// ErrSvnFailed is returned when the svn client exits unsuccessfully.
var ErrSvnFailed = errors.New("svnlog: svn client failed")

// DefaultBinary is the svn client looked up on PATH.
const DefaultBinary = "svn"

// Fetch runs `svn log -v --xml url` and parses its output while the client
// is still writing it. Cancelling ctx kills the client.
func Fetch(ctx context.Context, binary, url string) ([]revision.Record, error) {
	if binary == "" {
		binary = DefaultBinary
	}

	cmd := exec.CommandContext(ctx, binary, "log", "-v", "--xml", url) //nolint:gosec // binary and url are user configuration.

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSvnFailed, err)
	}

	if err = cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start %s: %w", ErrSvnFailed, binary, err)
	}

	records, parseErr := Parse(stdout)
	if parseErr != nil {
		// Let the client finish writing so Wait can return.
		_, _ = io.Copy(io.Discard, stdout)
	}

	waitErr := cmd.Wait()
	if waitErr != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%w: %w", ErrSvnFailed, waitErr)
		}

		return nil, fmt.Errorf("%w: %w: %s", ErrSvnFailed, waitErr, msg)
	}

	if parseErr != nil {
		return nil, parseErr
	}

	return records, nil
}
