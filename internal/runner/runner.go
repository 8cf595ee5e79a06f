// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mufeed Ali

// Package runner executes external commands on a target host, either the
// local machine or a configured remote reached over SSH. The batch commands
// build their exiftool invocations on top of it.
package runner

import (
	"bytes"
	"fmt"
	"os/exec"
	"syscall"

	"photobatch/internal/config"
	"photobatch/internal/ssh"
	"photobatch/internal/util"

	gossh "golang.org/x/crypto/ssh"
)

var sshManager *ssh.Manager

// InitSSHManager sets the package-level SSH manager instance.
func InitSSHManager(manager *ssh.Manager) {
	if sshManager != nil {
		return
	}
	sshManager = manager
}

// Target defines where a command runs (local or a specific remote).
type Target struct {
	IsRemote   bool
	HostConfig *config.SSHHost // Only set if IsRemote is true
	ServerName string          // "local" or the remote host name
}

// LocalTarget returns the target for the local machine.
func LocalTarget() Target {
	return Target{ServerName: "local"}
}

// RemoteTarget returns the target for a configured remote host.
func RemoteTarget(host *config.SSHHost) Target {
	return Target{IsRemote: true, HostConfig: host, ServerName: host.Name}
}

// Output runs the command on the target and returns its combined
// stdout+stderr. A non-zero exit is returned as an error that includes the
// exit status; the captured output is returned alongside it for context.
func Output(target Target, command string, args []string) ([]byte, error) {
	if target.IsRemote {
		return remoteOutput(target, command, args)
	}

	cmd := exec.Command(command, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	if err != nil {
		exitCode := -1
		if exitError, ok := err.(*exec.ExitError); ok {
			if status, ok := exitError.Sys().(syscall.WaitStatus); ok {
				exitCode = status.ExitStatus()
			}
		}
		if exitCode != -1 {
			return buf.Bytes(), fmt.Errorf("local %s exited with status %d: %w", command, exitCode, err)
		}
		return buf.Bytes(), fmt.Errorf("local %s failed: %w", command, err)
	}
	return buf.Bytes(), nil
}

// StdoutOutput runs the command on the target and returns stdout alone.
// Used for commands whose stdout is binary data (e.g. extracting an embedded
// JPEG preview), where mixing in stderr warnings would corrupt the payload.
func StdoutOutput(target Target, command string, args []string) ([]byte, error) {
	if target.IsRemote {
		cmdDesc := fmt.Sprintf("%s on host %s", command, target.ServerName)
		session, err := remoteSession(target, cmdDesc)
		if err != nil {
			return nil, err
		}
		defer session.Close()
		output, err := session.Output(util.QuoteCommand(command, args))
		if err != nil {
			return output, fmt.Errorf("%s failed: %w", cmdDesc, err)
		}
		return output, nil
	}

	cmd := exec.Command(command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), fmt.Errorf("local %s failed: %w (stderr: %s)", command, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}

// remoteSession opens an SSH session on the target's pooled client. The
// caller closes the session.
func remoteSession(target Target, cmdDesc string) (*gossh.Session, error) {
	if target.HostConfig == nil {
		return nil, fmt.Errorf("internal error: HostConfig is nil for remote host %s", target.ServerName)
	}
	if sshManager == nil {
		return nil, fmt.Errorf("ssh manager not initialized for %s", cmdDesc)
	}

	client, err := sshManager.GetClient(*target.HostConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to get ssh client for %s: %w", cmdDesc, err)
	}

	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create ssh session for %s: %w", cmdDesc, err)
	}
	return session, nil
}

func remoteOutput(target Target, command string, args []string) ([]byte, error) {
	cmdDesc := fmt.Sprintf("%s on host %s", command, target.ServerName)

	session, err := remoteSession(target, cmdDesc)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	output, err := session.CombinedOutput(util.QuoteCommand(command, args))
	if err != nil {
		exitCode := -1
		if exitErr, ok := err.(*gossh.ExitError); ok {
			exitCode = exitErr.ExitStatus()
		}
		if exitCode != -1 {
			return output, fmt.Errorf("%s exited with status %d: %w", cmdDesc, exitCode, err)
		}
		return output, fmt.Errorf("%s failed: %w", cmdDesc, err)
	}
	return output, nil
}
