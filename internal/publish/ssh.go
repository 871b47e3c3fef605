// Package publish uploads rendered pages to a web host over SSH,
// authenticating through the user's SSH agent.
package publish

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"os/user"
	"path"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// ConnectTimeout bounds SSH connection attempts.
const ConnectTimeout = 10 * time.Second

// Uploader abstracts the upload operation for testing.
type Uploader interface {
	// Upload writes content to remotePath on the configured host.
	Upload(remotePath string, content []byte) error
	// Close releases any resources held by the uploader.
	Close() error
}

// SSHUploader implements Uploader over an SSH-agent-authenticated
// connection.
type SSHUploader struct {
	host      string
	proxyJump string
	agentConn net.Conn // connection to SSH agent, closed in Close()
	signers   []ssh.Signer
	username  string
}

// NewSSHUploader creates an uploader for the given host, connecting
// via the SSH agent. proxyJump may be empty.
func NewSSHUploader(host, proxyJump string) (*SSHUploader, error) {
	authSock := os.Getenv("SSH_AUTH_SOCK")
	if authSock == "" {
		return nil, fmt.Errorf("SSH agent not running. Start with `eval $(ssh-agent)` and add keys with `ssh-add`")
	}

	conn, err := net.Dial("unix", authSock)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to SSH agent at %s: %w", authSock, err)
	}

	agentClient := agent.NewClient(conn)

	keys, err := agentClient.List()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("listing SSH agent keys: %w", err)
	}
	if len(keys) == 0 {
		conn.Close()
		return nil, fmt.Errorf("SSH agent has no keys. Add keys with `ssh-add`")
	}

	signers, err := agentClient.Signers()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("getting SSH agent signers: %w", err)
	}

	username := ""
	if u, err := user.Current(); err == nil {
		username = u.Username
	}

	return &SSHUploader{
		host:      host,
		proxyJump: proxyJump,
		agentConn: conn,
		signers:   signers,
		username:  username,
	}, nil
}

// Upload writes content to remotePath on the host, creating the parent
// directory if needed.
func (u *SSHUploader) Upload(remotePath string, content []byte) error {
	// InsecureIgnoreHostKey disables host key verification. This is
	// acceptable for publishing to one's own managed web host. For
	// untrusted networks, use a known_hosts file instead.
	clientConfig := &ssh.ClientConfig{
		User:            u.username,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(u.signers...)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         ConnectTimeout,
	}

	var client *ssh.Client
	var jumpClient *ssh.Client
	var err error

	if u.proxyJump != "" {
		client, jumpClient, err = u.dialViaProxy(clientConfig)
		if jumpClient != nil {
			defer jumpClient.Close()
		}
	} else {
		client, err = ssh.Dial("tcp", u.host+":22", clientConfig)
	}
	if err != nil {
		return u.wrapSSHError(err)
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("creating SSH session on %s: %w", u.host, err)
	}
	defer session.Close()

	session.Stdin = bytes.NewReader(content)
	cmd := fmt.Sprintf("mkdir -p %s && cat > %s",
		shellQuote(path.Dir(remotePath)), shellQuote(remotePath))
	if output, err := session.CombinedOutput(cmd); err != nil {
		return fmt.Errorf("writing %s on %s: %v (%s)",
			remotePath, u.host, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Close releases the SSH agent connection.
func (u *SSHUploader) Close() error {
	if u.agentConn != nil {
		return u.agentConn.Close()
	}
	return nil
}

// dialViaProxy connects to the host through the ProxyJump host.
// Returns both the target client and the jump client; caller must close both.
func (u *SSHUploader) dialViaProxy(config *ssh.ClientConfig) (client *ssh.Client, jumpClient *ssh.Client, err error) {
	// See comment in Upload about InsecureIgnoreHostKey.
	proxyConfig := &ssh.ClientConfig{
		User:            config.User,
		Auth:            config.Auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         config.Timeout,
	}

	jumpClient, err = ssh.Dial("tcp", u.proxyJump+":22", proxyConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot reach proxy %s: %w", u.proxyJump, err)
	}

	targetConn, err := jumpClient.Dial("tcp", u.host+":22")
	if err != nil {
		jumpClient.Close()
		return nil, nil, fmt.Errorf("cannot reach %s through proxy %s: %w", u.host, u.proxyJump, err)
	}

	ncc, chans, reqs, err := ssh.NewClientConn(targetConn, u.host+":22", config)
	if err != nil {
		targetConn.Close()
		jumpClient.Close()
		return nil, nil, fmt.Errorf("SSH handshake with %s failed: %w", u.host, err)
	}

	return ssh.NewClient(ncc, chans, reqs), jumpClient, nil
}

// wrapSSHError produces actionable error messages based on SSH error types.
func (u *SSHUploader) wrapSSHError(err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "no supported methods remain"):
		return fmt.Errorf("SSH authentication failed for %s. Check ~/.ssh/config and ensure your key is authorized", u.host)
	case strings.Contains(errStr, "i/o timeout") || strings.Contains(errStr, "connection timed out"):
		if u.proxyJump != "" && strings.Contains(errStr, u.proxyJump) {
			return fmt.Errorf("cannot reach proxy %s: connection timed out", u.proxyJump)
		}
		return fmt.Errorf("connection to %s timed out", u.host)
	case strings.Contains(errStr, "connection refused"):
		return fmt.Errorf("connection refused by %s (is SSH running on the server?)", u.host)
	default:
		return fmt.Errorf("SSH error connecting to %s: %w", u.host, err)
	}
}

// shellQuote single-quotes a path for the remote shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
