package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"configgate/internal/client"
	"configgate/internal/logging"
)

const (
	defaultServer = "http://localhost:8080"
	envPassword   = "CONFIGGATE_PASSWORD"
)

var version = "dev"
var commit = ""

func main() {
	logging.Init("configgatectl", nil)
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			fatalf("configgatectl: invalid username or password")
		}
		fatalf("configgatectl: %v", err)
	}
}

var fatalf = func(format string, args ...any) {
	slog.Error("fatal", "error", fmt.Sprintf(format, args...))
	os.Exit(1)
}
var newClient = func(server string, timeout time.Duration) *client.Client {
	opts := client.DefaultOptions()
	opts.Timeout = timeout
	opts.Logger = slog.Default()
	return client.New(server, opts)
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("command required")
	}
	switch args[0] {
	case "-h", "--help", "help":
		writeUsage(out)
		return nil
	case "--version", "version":
		v := version
		if strings.TrimSpace(commit) != "" {
			v = v + " (" + commit + ")"
		}
		_, _ = fmt.Fprintln(out, v)
		return nil
	case "login":
		return runLogin(args[1:], out)
	case "fetch":
		return runFetch(args[1:], out)
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func writeUsage(out io.Writer) {
	_, _ = fmt.Fprintln(out, "Usage: configgatectl <command> [flags]")
	_, _ = fmt.Fprintln(out, "")
	_, _ = fmt.Fprintln(out, "Commands:")
	_, _ = fmt.Fprintln(out, "  login   -server URL -username U [-password P]   print the access token")
	_, _ = fmt.Fprintln(out, "  fetch   -server URL (-token T | -username U [-password P]) [-out FILE]")
	_, _ = fmt.Fprintln(out, "  version")
	_, _ = fmt.Fprintln(out, "")
	_, _ = fmt.Fprintln(out, "The password may also be supplied through "+envPassword+".")
}

type commonFlags struct {
	server   *string
	username *string
	password *string
	timeout  *time.Duration
}

func registerCommon(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		server:   fs.String("server", defaultServer, "configgate base URL"),
		username: fs.String("username", "", "username"),
		password: fs.String("password", "", "password (default $"+envPassword+")"),
		timeout:  fs.Duration("timeout", 10*time.Second, "per-request timeout"),
	}
}

func (f commonFlags) credentials() (string, string, error) {
	if *f.username == "" {
		return "", "", errors.New("username required")
	}
	password := *f.password
	if password == "" {
		password = os.Getenv(envPassword)
	}
	if password == "" {
		return "", "", errors.New("password required")
	}
	return *f.username, password, nil
}

func runLogin(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(out)
	common := registerCommon(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	username, password, err := common.credentials()
	if err != nil {
		return err
	}
	ctx := context.Background()
	tokens, err := newClient(*common.server, *common.timeout).Login(ctx, username, password)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, tokens.AccessToken)
	return nil
}

func runFetch(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(out)
	common := registerCommon(fs)
	token := fs.String("token", "", "access token from a previous login")
	outPath := fs.String("out", "", "write the config to this file (mode 0600) instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ctx := context.Background()
	c := newClient(*common.server, *common.timeout)

	accessToken := *token
	if accessToken == "" {
		username, password, err := common.credentials()
		if err != nil {
			return err
		}
		tokens, err := c.Login(ctx, username, password)
		if err != nil {
			return err
		}
		accessToken = tokens.AccessToken
	}
	data, err := c.FetchConfig(ctx, accessToken)
	if err != nil {
		return err
	}
	if *outPath == "" {
		_, err := out.Write(data)
		return err
	}
	if err := writeFileAtomic(*outPath, data, 0o600); err != nil {
		return err
	}
	slog.Info("config written", "path", *outPath, "bytes", len(data))
	return nil
}

// writeFileAtomic replaces path with data so a reader never sees a partial
// file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
