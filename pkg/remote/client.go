// Package remote fetches solver logs and scene images over SFTP.
package remote

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// DefaultTimeout bounds the SSH handshake.
const DefaultTimeout = 20 * time.Second

// Options configures a connection to the simulation host.
type Options struct {
	Host string
	Port int
	User string

	// Password enables password authentication when non-empty.
	// Otherwise KeyFile is used.
	Password string

	// KeyFile is the private key path for key authentication.
	// Supports a leading ~/ for the user's home directory.
	KeyFile string

	// Timeout bounds the TCP connect and SSH handshake.
	// Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Client is an SFTP session to the simulation host. Not safe for
// concurrent use; the monitor loop opens one per cycle.
type Client struct {
	conn *ssh.Client
	sftp *sftp.Client
}

// Dial connects and authenticates to the remote host. Authentication
// rejections wrap ErrAuth; every other failure wraps ErrConnect.
func Dial(opts Options) (*Client, error) {
	auth, err := authMethods(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuth, err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	cfg := &ssh.ClientConfig{
		User: opts.User,
		Auth: auth,
		// Solver hosts are short-lived cluster nodes; pinning host
		// keys would break on every reprovision.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // #nosec G106
		Timeout:         timeout,
	}

	addr := net.JoinHostPort(opts.Host, fmt.Sprintf("%d", opts.Port))
	conn, err := ssh.Dial("tcp", addr, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: dialing %s: %v", classifyDialError(err), addr, err)
	}

	sc, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: opening sftp session: %v", ErrConnect, err)
	}

	return &Client{conn: conn, sftp: sc}, nil
}

// authMethods builds the SSH auth chain: password when configured,
// otherwise the private key file.
func authMethods(opts Options) ([]ssh.AuthMethod, error) {
	if opts.Password != "" {
		return []ssh.AuthMethod{ssh.Password(opts.Password)}, nil
	}

	keyPath, err := expandHome(opts.KeyFile)
	if err != nil {
		return nil, err
	}
	keyData, err := os.ReadFile(keyPath) // #nosec G304 -- user-provided key path is expected
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(keyData)
	if err != nil {
		return nil, fmt.Errorf("parsing key file %s: %w", keyPath, err)
	}
	return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
}

// classifyDialError maps an ssh.Dial failure onto the sentinel taxonomy.
func classifyDialError(err error) error {
	if strings.Contains(err.Error(), "unable to authenticate") {
		return ErrAuth
	}
	return ErrConnect
}

// expandHome resolves a leading ~/ in a path.
func expandHome(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(p, "~"), "/")), nil
	}
	return p, nil
}

// FetchFile downloads remotePath to localPath, creating parent
// directories as needed.
func (c *Client) FetchFile(remotePath, localPath string) error {
	src, err := c.sftp.Open(remotePath)
	if err != nil {
		return fmt.Errorf("opening remote file %s: %w", remotePath, err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("creating local directory: %w", err)
	}
	dst, err := os.Create(localPath) // #nosec G304 -- cycle-scoped temp path
	if err != nil {
		return fmt.Errorf("creating local file %s: %w", localPath, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("downloading %s: %w", remotePath, err)
	}
	return dst.Close()
}

// LatestImage returns the remote path of the most recently modified
// image in dir. A missing directory or one without images returns
// fs.ErrNotExist so callers can render a placeholder instead.
func (c *Client) LatestImage(dir string) (string, error) {
	entries, err := c.sftp.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("listing %s: %w", dir, os.ErrNotExist)
	}
	return latestImage(dir, entries)
}

// Close tears down the SFTP session and the SSH connection.
func (c *Client) Close() error {
	var first error
	if c.sftp != nil {
		first = c.sftp.Close()
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
