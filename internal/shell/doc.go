// Package shell provides the zsh/bash integration for mt. A child process
// cannot change its parent's working directory, so the hook wraps `mt` in a
// shell function that hands the child a file (MT_EVAL_FILE) to write shell
// commands into, then sources that file once the child has exited.
package shell
