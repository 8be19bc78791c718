package pyfmt

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

func runYapf(ctx context.Context, command, style, src string) (string, error) {
	cmd := exec.CommandContext(ctx, command, "--style="+style)
	cmd.Stdin = strings.NewReader(src)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", command, err, msg)
		}
		return "", fmt.Errorf("%s: %w", command, err)
	}
	return stdout.String(), nil
}
