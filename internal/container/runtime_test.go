// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedExecutor answers from a set of working command lines and records
// every call it sees as "bin arg...".
type scriptedExecutor struct {
	onPath map[string]bool
	works  map[string]bool
	piped  func(stdin io.Reader, stdout io.Writer) error
	calls  []string
}

func (s *scriptedExecutor) LookPath(file string) (string, error) {
	if s.onPath[file] {
		return "/usr/bin/" + file, nil
	}
	return "", exec.ErrNotFound
}

func (s *scriptedExecutor) RunSilent(_ context.Context, name string, args ...string) error {
	line := strings.Join(append([]string{name}, args...), " ")
	s.calls = append(s.calls, line)
	if s.works[line] {
		return nil
	}
	return errors.New("exit status 1")
}

func (s *scriptedExecutor) RunPiped(_ context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	s.calls = append(s.calls, strings.Join(append([]string{name}, args...), " "))
	if s.piped == nil {
		return nil
	}
	return s.piped(stdin, stdout)
}

func TestDetectRuntimePrefersDocker(t *testing.T) {
	ex := &scriptedExecutor{
		onPath: map[string]bool{"docker": true, "podman": true},
		works:  map[string]bool{"docker info": true, "podman info": true},
	}
	rt, err := detectRuntime(context.Background(), ex)
	require.NoError(t, err)
	assert.Equal(t, "docker", rt.Name())
	assert.Equal(t, []string{"docker info"}, ex.calls)
}

func TestDetectRuntimeFallsBackToPodman(t *testing.T) {
	// A docker binary whose daemon is down counts as unavailable.
	ex := &scriptedExecutor{
		onPath: map[string]bool{"docker": true, "podman": true},
		works:  map[string]bool{"podman info": true},
	}
	rt, err := detectRuntime(context.Background(), ex)
	require.NoError(t, err)
	assert.Equal(t, "podman", rt.Name())
}

func TestDetectRuntimeNone(t *testing.T) {
	_, err := detectRuntime(context.Background(), &scriptedExecutor{})
	assert.ErrorContains(t, err, "no container runtime available")
}

func TestImageExists(t *testing.T) {
	const image = "markitdown:latest"

	docker := newDockerRuntime(&scriptedExecutor{works: map[string]bool{"docker image inspect " + image: true}})
	assert.NoError(t, docker.ImageExists(context.Background(), image))

	podman := newPodmanRuntime(&scriptedExecutor{works: map[string]bool{"podman image exists " + image: true}})
	assert.NoError(t, podman.ImageExists(context.Background(), image))

	missing := newPodmanRuntime(&scriptedExecutor{})
	err := missing.ImageExists(context.Background(), image)
	assert.ErrorContains(t, err, "image markitdown:latest not found in podman")
}

func TestRunPipesThroughIsolatedContainer(t *testing.T) {
	ex := &scriptedExecutor{
		piped: func(stdin io.Reader, stdout io.Writer) error {
			data, err := io.ReadAll(stdin)
			if err != nil {
				return err
			}
			_, err = io.WriteString(stdout, "# "+string(data))
			return err
		},
	}
	var out bytes.Buffer
	err := newDockerRuntime(ex).Run(context.Background(), "markitdown:latest", strings.NewReader("%PDF"), &out)
	require.NoError(t, err)
	assert.Equal(t, "# %PDF", out.String())
	assert.Equal(t, []string{"docker run --rm -i --network none markitdown:latest"}, ex.calls)
}

func TestRunWrapsFailure(t *testing.T) {
	ex := &scriptedExecutor{piped: func(io.Reader, io.Writer) error { return errors.New("exit status 2") }}
	err := newPodmanRuntime(ex).Run(context.Background(), "markitdown:latest", strings.NewReader(""), io.Discard)
	assert.ErrorContains(t, err, "running podman container markitdown:latest: exit status 2")
}

func TestOSExecutorRunPiped(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	ex := OSExecutor{}

	t.Run("stdin to stdout", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, ex.RunPiped(context.Background(), "sh", []string{"-c", "cat"}, strings.NewReader("body"), &out))
		assert.Equal(t, "body", out.String())
	})

	t.Run("stderr folded into error", func(t *testing.T) {
		err := ex.RunPiped(context.Background(), "sh", []string{"-c", "echo broken pdf >&2; exit 3"}, nil, io.Discard)
		assert.ErrorContains(t, err, "broken pdf")
	})

	t.Run("context deadline", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		err := ex.RunPiped(ctx, "sh", []string{"-c", "sleep 5"}, nil, io.Discard)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestTrimStderr(t *testing.T) {
	assert.Equal(t, "oops", trimStderr("  oops \n"))
	assert.Len(t, trimStderr(strings.Repeat("x", maxStderr+10)), maxStderr+3)
}
