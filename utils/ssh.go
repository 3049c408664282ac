package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const (
	StrictHostKeyVerification   = "strict"
	InsecureHostKeyVerification = "insecure"

	defaultSSHPort    = 22
	sshConnectTimeout = 30 * time.Second
)

// SSHConfig describes the bastion host the database is reached through
type SSHConfig struct {
	Host                    string `json:"host,omitempty" mapstructure:"host"`
	Port                    int    `json:"port,omitempty" mapstructure:"port"`
	Username                string `json:"username,omitempty" mapstructure:"username"`
	PrivateKey              string `json:"private_key,omitempty" mapstructure:"private_key"`
	Passphrase              string `json:"passphrase,omitempty" mapstructure:"passphrase"`
	Password                string `json:"password,omitempty" mapstructure:"password"`
	HostKeyVerificationMode string `json:"host_key_verification_mode,omitempty" mapstructure:"host_key_verification_mode"`
	KnownHostsFilePath      string `json:"known_hosts_file_path,omitempty" mapstructure:"known_hosts_file_path"`
}

// DialFunc opens a connection to addr, pgx and go-sql-driver both accept this shape
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Validate checks the bastion settings and fills the port and verification defaults
func (c *SSHConfig) Validate() error {
	switch {
	case c.Host == "":
		return errors.New("ssh host is required")
	case c.Port < 0 || c.Port > 65535:
		return errors.New("invalid ssh port number: must be between 1 and 65535")
	case c.Username == "":
		return errors.New("ssh username is required")
	case c.PrivateKey == "" && c.Password == "":
		return errors.New("private key or password is required")
	case c.HostKeyVerificationMode == StrictHostKeyVerification && c.KnownHostsFilePath == "":
		return errors.New("known_hosts file path is required for strict verification")
	}

	if c.Port == 0 {
		c.Port = defaultSSHPort
	}
	if c.HostKeyVerificationMode == "" {
		c.HostKeyVerificationMode = InsecureHostKeyVerification
	}
	return nil
}

// Connect opens the tunnel to the bastion host
func (c *SSHConfig) Connect() (*ssh.Client, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate ssh config: %s", err)
	}

	auth, err := c.authMethods()
	if err != nil {
		return nil, err
	}
	hostKeys, err := c.hostKeyCallback()
	if err != nil {
		return nil, err
	}

	bastion := net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	client, err := ssh.Dial("tcp", bastion, &ssh.ClientConfig{
		User:            c.Username,
		Auth:            auth,
		HostKeyCallback: hostKeys,
		Timeout:         sshConnectTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reach ssh bastion %s: %s", bastion, err)
	}
	return client, nil
}

func (c *SSHConfig) authMethods() ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod
	if c.Password != "" {
		methods = append(methods, ssh.Password(c.Password))
	}
	if c.PrivateKey != "" {
		signer, err := parseSigner(c.PrivateKey, c.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ssh private key: %s", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	return methods, nil
}

func (c *SSHConfig) hostKeyCallback() (ssh.HostKeyCallback, error) {
	switch c.HostKeyVerificationMode {
	case InsecureHostKeyVerification:
		return ssh.InsecureIgnoreHostKey(), nil // #nosec G106
	case StrictHostKeyVerification:
		if err := CheckIfFilesExists(c.KnownHostsFilePath); err != nil {
			return nil, fmt.Errorf("known_hosts file validation failed: %w", err)
		}
		callback, err := knownhosts.New(c.KnownHostsFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load known_hosts file: %w", err)
		}
		return callback, nil
	default:
		return nil, fmt.Errorf("unknown host key verification strategy: %s", c.HostKeyVerificationMode)
	}
}

// parseSigner reads a PEM encoded private key, encrypted keys need passphrase
func parseSigner(pemText, passphrase string) (ssh.Signer, error) {
	if passphrase != "" {
		return ssh.ParsePrivateKeyWithPassphrase([]byte(pemText), []byte(passphrase))
	}

	signer, err := ssh.ParsePrivateKey([]byte(pemText))
	var missing *ssh.PassphraseMissingError
	if errors.As(err, &missing) {
		return nil, errors.New("private key is encrypted, enter the passphrase")
	}
	return signer, err
}

// Dialer opens database connections through the tunnel of client
func Dialer(client *ssh.Client) DialFunc {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := client.DialContext(ctx, network, addr)
		if err != nil {
			return nil, fmt.Errorf("failed to dial %s through ssh: %s", addr, err)
		}
		return tunnelConn{conn}, nil
	}
}

// tunnelConn ignores deadlines: ssh channels reject them while the database
// drivers set them on every query
type tunnelConn struct {
	net.Conn
}

func (tunnelConn) SetDeadline(time.Time) error      { return nil }
func (tunnelConn) SetReadDeadline(time.Time) error  { return nil }
func (tunnelConn) SetWriteDeadline(time.Time) error { return nil }
