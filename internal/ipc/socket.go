package ipc

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"
)

// SocketEnv overrides the socket path for both the daemon and clients.
const SocketEnv = "XFOCUS_SOCKET"

const socketName = "xfocus.sock"

// SocketPath returns where the daemon listens: $XFOCUS_SOCKET when set,
// otherwise xfocus.sock in the per-user runtime directory.
func SocketPath() (string, error) {
	if p := os.Getenv(SocketEnv); p != "" {
		if !filepath.IsAbs(p) {
			return "", fmt.Errorf("%s must be an absolute path, got %q", SocketEnv, p)
		}
		return p, nil
	}
	dir, err := runtimeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, socketName), nil
}

// runtimeDir prefers $XDG_RUNTIME_DIR, then /run/user/<uid>, then a private
// directory under the system temp dir.
func runtimeDir() (string, error) {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir, nil
	}

	uid := os.Getuid()
	if dir := filepath.Join("/run/user", strconv.Itoa(uid)); isDir(dir) {
		return dir, nil
	}

	dir := filepath.Join(os.TempDir(), "xfocus-"+strconv.Itoa(uid))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	if err := checkPrivateDir(dir, uid); err != nil {
		return "", err
	}
	return dir, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// checkPrivateDir rejects a temp directory that another user created or
// that other users can enter. The socket inside it accepts focus requests.
func checkPrivateDir(dir string, uid int) error {
	var st unix.Stat_t
	if err := unix.Lstat(dir, &st); err != nil {
		return fmt.Errorf("failed to stat runtime dir: %w", err)
	}
	if st.Mode&unix.S_IFMT != unix.S_IFDIR {
		return fmt.Errorf("runtime dir %s is not a directory", dir)
	}
	if int(st.Uid) != uid {
		return fmt.Errorf("runtime dir %s is owned by uid %d, not %d", dir, st.Uid, uid)
	}
	if perm := st.Mode & 0o777; perm&0o077 != 0 {
		return fmt.Errorf("runtime dir %s is open to other users (mode %#o)", dir, perm)
	}
	return nil
}
