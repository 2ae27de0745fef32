package remote

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/starry-os/starry-test-harness/internal/result"
)

const (
	defaultSSHUser = "root"
	defaultSSHPort = 22

	// DefaultConnectTimeout bounds TCP connect plus SSH handshake.
	DefaultConnectTimeout = 10 * time.Second
)

// targetRegexp splits "[user@]host[:port]".
var targetRegexp = regexp.MustCompile(`^([^@]+@)?([^@]+)$`)

// SSHOptions configures an SSH target.
type SSHOptions struct {
	User     string
	HostPort string // "host:port"

	// KeyFile is an optional path to an unencrypted private key.
	KeyFile string
	// KeyDir is searched for well-known key names when set.
	KeyDir string

	ConnectTimeout time.Duration
}

// ParseTarget fills User and HostPort in o from target, which has the form
// "[user@]host[:port]". The user defaults to root and the port to 22.
func ParseTarget(target string, o *SSHOptions) error {
	m := targetRegexp.FindStringSubmatch(target)
	if m == nil {
		return fmt.Errorf("couldn't parse %q as \"[user@]hostname[:port]\"", target)
	}

	o.User = defaultSSHUser
	if m[1] != "" {
		o.User = m[1][:len(m[1])-1]
	}

	if _, _, err := net.SplitHostPort(m[2]); err != nil {
		o.HostPort = net.JoinHostPort(m[2], strconv.Itoa(defaultSSHPort))
	} else {
		o.HostPort = m[2]
	}
	return nil
}

// SSHTarget runs commands over one SSH connection, redialing after the
// connection is lost.
type SSHTarget struct {
	opts   SSHOptions
	cfg    *ssh.ClientConfig
	logger *slog.Logger

	mu     sync.Mutex
	client *ssh.Client
}

// NewSSHTarget prepares a target; the connection is made by the first Run.
func NewSSHTarget(opts SSHOptions, logger *slog.Logger) (*SSHTarget, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.User == "" {
		opts.User = defaultSSHUser
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}

	auth, err := authMethods(opts, logger)
	if err != nil {
		return nil, err
	}

	return &SSHTarget{
		opts:   opts,
		logger: logger,
		cfg: &ssh.ClientConfig{
			User:    opts.User,
			Auth:    auth,
			Timeout: opts.ConnectTimeout,
			// Test images regenerate host keys on every build.
			HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		},
	}, nil
}

// authMethods collects the key file, well-known keys from KeyDir and, when
// no key is usable, an empty password (the default for debug images).
func authMethods(o SSHOptions, logger *slog.Logger) ([]ssh.AuthMethod, error) {
	var signers []ssh.Signer
	if o.KeyFile != "" {
		s, err := readPrivateKey(o.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key %s: %w", o.KeyFile, err)
		}
		signers = append(signers, s)
	}
	if o.KeyDir != "" {
		for _, fn := range []string{"id_ed25519", "id_ecdsa", "id_rsa"} {
			p := filepath.Join(o.KeyDir, fn)
			if p == o.KeyFile {
				continue
			} else if _, err := os.Stat(p); os.IsNotExist(err) {
				continue
			}
			if s, err := readPrivateKey(p); err == nil {
				signers = append(signers, s)
			} else {
				logger.Warn("ignoring unreadable private key", "path", p, "error", err)
			}
		}
	}

	methods := []ssh.AuthMethod{}
	if len(signers) > 0 {
		methods = append(methods, ssh.PublicKeys(signers...))
	}
	methods = append(methods, ssh.Password(""))
	return methods, nil
}

func readPrivateKey(path string) (ssh.Signer, error) {
	k, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ssh.ParsePrivateKey(k)
}

// connect returns the live client, dialing if there is none.
func (t *SSHTarget) connect(ctx context.Context) (*ssh.Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client != nil {
		return t.client, nil
	}

	d := net.Dialer{Timeout: t.opts.ConnectTimeout}
	conn, err := d.DialContext(ctx, "tcp", t.opts.HostPort)
	if err != nil {
		return nil, err
	}
	// NewClientConn ignores cfg.Timeout, so bound the handshake here.
	_ = conn.SetDeadline(time.Now().Add(t.opts.ConnectTimeout))
	c, chans, reqs, err := ssh.NewClientConn(conn, t.opts.HostPort, t.cfg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})
	t.client = ssh.NewClient(c, chans, reqs)
	t.logger.Debug("connected to target", "host", t.opts.HostPort, "user", t.opts.User)
	return t.client, nil
}

// drop forgets client so that the next Run redials.
func (t *SSHTarget) drop(client *ssh.Client) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == client {
		_ = t.client.Close()
		t.client = nil
	}
}

// Run implements Target.
func (t *SSHTarget) Run(ctx context.Context, command string, timeout time.Duration) (int, string) {
	client, err := t.connect(ctx)
	if err != nil {
		return StatusConnectFailed, fmt.Sprintf("Failed to connect to %s: %v", t.opts.HostPort, err)
	}

	session, err := client.NewSession()
	if err != nil {
		t.drop(client)
		return StatusConnectFailed, fmt.Sprintf("Failed to connect to %s: %v", t.opts.HostPort, err)
	}
	defer func() { _ = session.Close() }()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	if err := session.Start(command); err != nil {
		t.drop(client)
		return StatusConnectionLost, fmt.Sprintf("Connection lost: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- session.Wait() }()

	var timer <-chan time.Time
	if timeout > 0 {
		tm := time.NewTimer(timeout)
		defer tm.Stop()
		timer = tm.C
	}

	marker := result.TimeoutMarker(timeout)
	select {
	case err := <-done:
		output := stdout.String() + stderr.String()
		return t.exitStatus(client, err, output)
	case <-timer:
	case <-ctx.Done():
		marker = result.InterruptedMarker
	}

	_ = session.Signal(ssh.SIGKILL)
	_ = session.Close()
	<-done
	return StatusTimeout, appendLine(stdout.String()+stderr.String(), marker)
}

// appendLine appends line to output on a line of its own.
func appendLine(output, line string) string {
	if output == "" || strings.HasSuffix(output, "\n") {
		return output + line
	}
	return output + "\n" + line
}

func (t *SSHTarget) exitStatus(client *ssh.Client, err error, output string) (int, string) {
	var exitErr *ssh.ExitError
	switch {
	case err == nil:
		return 0, output
	case stderrors.As(err, &exitErr):
		return exitErr.ExitStatus(), output
	default:
		// *ssh.ExitMissingError or a transport error: the session ended
		// without an exit status because the target went away.
		t.drop(client)
		return StatusConnectionLost, appendLine(output, fmt.Sprintf("Connection lost: %v", err))
	}
}

// Close closes the connection, if any.
func (t *SSHTarget) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}
